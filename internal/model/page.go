package model

import "net/http"

// MaxContentBytes is the default ceiling on raw page size.
// Pages above this size are rejected as oversized without being parsed.
const MaxContentBytes = 5_000_000

// FetchedPage is the input contract consumed from the fetch layer.
// It is owned by the caller and treated as read-only by the filter.
type FetchedPage struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// EffectiveURL is the URL the response was actually served from,
	// after redirects. Relative links are resolved against it.
	// Empty means no redirect happened.
	EffectiveURL string `json:"effective_url,omitempty"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status"`

	// TransportError reports that the fetch layer failed to obtain a response.
	TransportError bool `json:"error,omitempty"`

	// ContentType is the Content-Type header value, used as a charset hint.
	ContentType string `json:"content_type,omitempty"`

	// Raw is the response body. It may be nil.
	Raw []byte `json:"-"`
}

// BaseURL returns the URL relative links on the page resolve against.
// The effective URL wins over the requested one.
func (p *FetchedPage) BaseURL() string {
	if p.EffectiveURL != "" {
		return p.EffectiveURL
	}
	return p.URL
}

// OK reports whether the fetch layer delivered a usable 200 response.
func (p *FetchedPage) OK() bool {
	return !p.TransportError && p.StatusCode == http.StatusOK
}
