package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/marcus-crane/nowplaying/artwork"
	"github.com/marcus-crane/nowplaying/utils"
)

const (
	baseURL        = "https://musicbrainz.org"
	coverArtURL    = "https://coverartarchive.org"
	searchEndpoint = "/ws/2/release-group/"
)

var ErrNotFound = fmt.Errorf("not found on musicbrainz: %w", artwork.ErrNotFound)

// Client looks up release groups on MusicBrainz and fetches their front
// cover from the Cover Art Archive. No credentials are needed but a
// meaningful user agent is, which utils.NewHTTPClient provides.
type Client struct {
	BaseURL     string
	CoverArtURL string
	HTTPClient  *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:     baseURL,
		CoverArtURL: coverArtURL,
		HTTPClient:  utils.NewHTTPClient(),
	}
}

type searchResponse struct {
	Count         int            `json:"count"`
	ReleaseGroups []ReleaseGroup `json:"release-groups"`
}

type ReleaseGroup struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

type coverArtResponse struct {
	Images []CoverImage `json:"images"`
}

type CoverImage struct {
	Front      bool              `json:"front"`
	Image      string            `json:"image"`
	Thumbnails map[string]string `json:"thumbnails"`
}

func (c *Client) Name() string {
	return "musicbrainz"
}

// Lookup returns a front cover URL for the best matching release group.
func (c *Client) Lookup(ctx context.Context, artist, album string) (string, error) {
	group, err := c.searchReleaseGroup(ctx, artist, album)
	if err != nil {
		return "", err
	}
	return c.frontCover(ctx, group.ID)
}

func (c *Client) searchReleaseGroup(ctx context.Context, artist, album string) (ReleaseGroup, error) {
	params := url.Values{
		"query": {fmt.Sprintf("releasegroup:%s AND artist:%s", quote(album), quote(artist))},
		"fmt":   {"json"},
		"limit": {"1"},
	}
	body, status, err := c.get(ctx, c.BaseURL+searchEndpoint+"?"+params.Encode())
	if err != nil {
		return ReleaseGroup{}, fmt.Errorf("searching release groups: %w", err)
	}
	if status != http.StatusOK {
		return ReleaseGroup{}, fmt.Errorf("searching release groups: unexpected status code %d", status)
	}
	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return ReleaseGroup{}, fmt.Errorf("parsing release groups: %w", err)
	}
	if len(res.ReleaseGroups) == 0 || res.ReleaseGroups[0].ID == "" {
		return ReleaseGroup{}, ErrNotFound
	}
	return res.ReleaseGroups[0], nil
}

func (c *Client) frontCover(ctx context.Context, releaseGroupID string) (string, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("%s/release-group/%s", c.CoverArtURL, releaseGroupID))
	if err != nil {
		return "", fmt.Errorf("fetching cover art: %w", err)
	}
	if status == http.StatusNotFound {
		return "", ErrNotFound
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("fetching cover art: unexpected status code %d", status)
	}
	var res coverArtResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("parsing cover art: %w", err)
	}
	for _, img := range res.Images {
		if !img.Front {
			continue
		}
		// Full size images can be enormous so prefer a thumbnail
		for _, size := range []string{"500", "large", "250", "small"} {
			if thumb := img.Thumbnails[size]; thumb != "" {
				return thumb, nil
			}
		}
		if img.Image != "" {
			return img.Image, nil
		}
	}
	return "", ErrNotFound
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}
	return body, res.StatusCode, nil
}

// quote wraps a value as a Lucene phrase
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
