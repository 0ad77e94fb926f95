package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/marcus-crane/nowplaying/artwork"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	ts := httptest.NewTLSServer(handler)
	t.Cleanup(ts.Close)
	c := NewClient("abc123")
	c.BaseURL = ts.URL
	c.HTTPClient = ts.Client()
	return c
}

func TestLookup_Success(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "album.getinfo", q.Get("method"))
		assert.Equal(t, "Radiohead", q.Get("artist"))
		assert.Equal(t, "OK Computer", q.Get("album"))
		assert.Equal(t, "abc123", q.Get("api_key"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"album":{"name":"OK Computer","artist":"Radiohead","image":[
			{"#text":"https://lastfm.freetls.fastly.net/i/u/34s/okc.png","size":"small"},
			{"#text":"https://lastfm.freetls.fastly.net/i/u/300x300/okc.png","size":"extralarge"},
			{"#text":"","size":"mega"}
		]}}`))
	})
	want := "https://lastfm.freetls.fastly.net/i/u/300x300/okc.png"
	got, err := c.Lookup(context.Background(), "Radiohead", "OK Computer")
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestLookup_AlbumNotFound(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error":6,"message":"Album not found"}`))
	})
	got, err := c.Lookup(context.Background(), "Nobody", "Nothing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, artwork.ErrNotFound)
	assert.Equal(t, "", got)
}

func TestLookup_NoImages(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"album":{"name":"x","artist":"y","image":[{"#text":"","size":"small"}]}}`))
	})
	_, err := c.Lookup(context.Background(), "y", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_InvalidKey(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":10,"message":"Invalid API key"}`))
	})
	_, err := c.Lookup(context.Background(), "y", "x")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestLookup_Handle500(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Lookup(context.Background(), "y", "x")
	assert.Error(t, err)
}

func TestUserAvatar(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user.getinfo", r.URL.Query().Get("method"))
		assert.Equal(t, "someone", r.URL.Query().Get("user"))
		w.Write([]byte(`{"user":{"name":"someone","image":[{"#text":"https://example.com/large.png","size":"large"}]}}`))
	})
	got, err := c.UserAvatar(context.Background(), "someone")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/large.png", got)
}

func TestLargestImage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", LargestImage(nil))
	assert.Equal(t, "b", LargestImage([]Image{{URL: "a", Size: "small"}, {URL: "b", Size: "mega"}}))
	assert.Equal(t, "odd", LargestImage([]Image{{URL: "odd", Size: "huge"}}))
}
