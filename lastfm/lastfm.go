package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/marcus-crane/nowplaying/artwork"
	"github.com/marcus-crane/nowplaying/utils"
)

const (
	baseURL = "https://ws.audioscrobbler.com/2.0/"
)

// Last.fm API error codes.
const (
	errCodeInvalidParams = 6
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

var (
	ErrNotFound      = fmt.Errorf("not found on last.fm: %w", artwork.ErrNotFound)
	ErrInvalidAPIKey = errors.New("invalid last.fm API key")
	ErrRateLimited   = errors.New("last.fm rate limit exceeded")
)

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: utils.NewHTTPClient(),
	}
}

type Image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type albumInfoResponse struct {
	Album struct {
		Name   string  `json:"name"`
		Artist string  `json:"artist"`
		Image  []Image `json:"image"`
	} `json:"album"`
}

type userInfoResponse struct {
	User struct {
		Name  string  `json:"name"`
		Image []Image `json:"image"`
	} `json:"user"`
}

type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// Name identifies this provider in logs
func (c *Client) Name() string {
	return "last.fm"
}

// Lookup returns the largest cover Last.fm has for an album.
func (c *Client) Lookup(ctx context.Context, artist, album string) (string, error) {
	params := url.Values{
		"method":  {"album.getinfo"},
		"artist":  {artist},
		"album":   {album},
		"format":  {"json"},
		"api_key": {c.APIKey},
	}
	body, err := c.doRequest(ctx, params)
	if err != nil {
		return "", fmt.Errorf("fetching album info: %w", err)
	}
	var res albumInfoResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("parsing album info: %w", err)
	}
	cover := LargestImage(res.Album.Image)
	if cover == "" {
		return "", ErrNotFound
	}
	return cover, nil
}

// UserAvatar fetches the profile picture shown as the small image in
// lastfmAvatar mode. It's only called once at startup.
func (c *Client) UserAvatar(ctx context.Context, username string) (string, error) {
	params := url.Values{
		"method":  {"user.getinfo"},
		"user":    {username},
		"format":  {"json"},
		"api_key": {c.APIKey},
	}
	body, err := c.doRequest(ctx, params)
	if err != nil {
		return "", fmt.Errorf("fetching user info: %w", err)
	}
	var res userInfoResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("parsing user info: %w", err)
	}
	avatar := LargestImage(res.User.Image)
	if avatar == "" {
		return "", ErrNotFound
	}
	return avatar, nil
}

var sizePreference = []string{"mega", "extralarge", "large", "medium", "small"}

// LargestImage picks the biggest non-empty image out of a Last.fm image
// list. Unknown sizes are only used if nothing else is available.
func LargestImage(images []Image) string {
	for _, size := range sizePreference {
		for _, img := range images {
			if img.Size == size && img.URL != "" {
				return img.URL
			}
		}
	}
	for _, img := range images {
		if img.URL != "" {
			return img.URL
		}
	}
	return ""
}

func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	// Errors come back as JSON with a code, sometimes with a 200
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeInvalidParams:
			return nil, ErrNotFound
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		case errCodeRateLimited:
			return nil, ErrRateLimited
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", res.StatusCode)
	}
	return body, nil
}
