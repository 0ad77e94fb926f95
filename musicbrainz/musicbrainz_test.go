package musicbrainz

import (
	"context"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
)

func TestLookup_Success(t *testing.T) {
	defer gock.Off()

	gock.New("https://musicbrainz.org").
		Get("/ws/2/release-group/").
		MatchParam("fmt", "json").
		MatchParam("query", `releasegroup:"Discovery" AND artist:"Daft Punk"`).
		Reply(200).
		JSON(map[string]any{
			"count": 1,
			"release-groups": []map[string]any{
				{"id": "48117b82-8b1c-3f5b-9a4e-0d5a8f1c2b3a", "title": "Discovery", "score": 100},
			},
		})

	gock.New("https://coverartarchive.org").
		Get("/release-group/48117b82-8b1c-3f5b-9a4e-0d5a8f1c2b3a").
		Reply(200).
		JSON(map[string]any{
			"images": []map[string]any{
				{"front": false, "image": "https://example.com/back.jpg"},
				{
					"front": true,
					"image": "https://example.com/front.jpg",
					"thumbnails": map[string]string{
						"250": "https://example.com/front-250.jpg",
						"500": "https://example.com/front-500.jpg",
					},
				},
			},
		})

	c := NewClient()
	got, err := c.Lookup(context.Background(), "Daft Punk", "Discovery")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/front-500.jpg", got)
	assert.True(t, gock.IsDone())
}

func TestLookup_NoReleaseGroup(t *testing.T) {
	defer gock.Off()

	gock.New("https://musicbrainz.org").
		Get("/ws/2/release-group/").
		Reply(200).
		JSON(map[string]any{"count": 0, "release-groups": []any{}})

	c := NewClient()
	_, err := c.Lookup(context.Background(), "Nobody", "Nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_NoCoverArt(t *testing.T) {
	defer gock.Off()

	gock.New("https://musicbrainz.org").
		Get("/ws/2/release-group/").
		Reply(200).
		JSON(map[string]any{"release-groups": []map[string]any{{"id": "abc"}}})
	gock.New("https://coverartarchive.org").
		Get("/release-group/abc").
		Reply(404)

	c := NewClient()
	_, err := c.Lookup(context.Background(), "Someone", "Something")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_SearchUnavailable(t *testing.T) {
	defer gock.Off()

	gock.New("https://musicbrainz.org").
		Get("/ws/2/release-group/").
		Reply(503)

	c := NewClient()
	_, err := c.Lookup(context.Background(), "Someone", "Something")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, quote("plain"))
	assert.Equal(t, `"say \"hi\""`, quote(`say "hi"`))
}
