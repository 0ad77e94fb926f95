package utils

import (
	"net/http"
	"time"

	"github.com/marcus-crane/nowplaying/shared"
)

// UARoundtripper stamps our user agent on every request. MusicBrainz in
// particular will throttle anonymous clients quite aggressively.
type UARoundtripper struct {
	RT http.RoundTripper
}

func (uart *UARoundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := uart.RT
	if rt == nil {
		rt = http.DefaultTransport
	}
	req.Header.Set("User-Agent", shared.USER_AGENT)
	return rt.RoundTrip(req)
}

func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &UARoundtripper{},
		Timeout:   10 * time.Second,
	}
}
