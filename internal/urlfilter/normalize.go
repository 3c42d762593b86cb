package urlfilter

import (
	"cmp"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/idna"
)

// hostProfile is the IDNA lookup profile without the STD3 ASCII rules.
// Crawled hosts such as "my_lab.ics.uci.edu" resolve in practice even
// though underscores are not valid in a strict host name.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.StrictDomainName(false),
)

// defaultPorts maps each crawlable scheme to the port that is implied when
// none is given.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// droppedParams are query parameter names (compared case-insensitively)
// that only carry session or tracking state.
var droppedParams = []string{"c", "o"}

// Normalize returns the canonical form of raw:
//
//	scheme://host[:port]path[?query]
//
// The scheme and host are lower-cased, a default port is omitted, an empty
// path becomes "/", and the fragment and userinfo are dropped. The query is
// split on '&' and ';', parameters named "c" or "o" are removed, and the
// rest is sorted by name and value and re-encoded; "?" is omitted when no
// parameters remain. Normalize is idempotent.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}
	return canonical(u)
}

// canonical renders an already parsed URL in canonical form.
func canonical(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	defaultPort, ok := defaultPorts[scheme]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host, err := canonicalHost(u.Hostname())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString("://")
	if strings.Contains(host, ":") {
		sb.WriteString("[" + host + "]")
	} else {
		sb.WriteString(host)
	}
	if port := u.Port(); port != "" && port != defaultPort {
		sb.WriteString(":")
		sb.WriteString(port)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	sb.WriteString(path)

	if query := canonicalQuery(u.RawQuery); query != "" {
		sb.WriteString("?")
		sb.WriteString(query)
	}

	return sb.String(), nil
}

// canonicalHost lower-cases the host and converts internationalized names to
// their ASCII form. IP literals are kept as they are.
func canonicalHost(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return "", ErrInvalidHost
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidHost, host, err)
	}
	return ascii, nil
}

// queryParam is one decoded name/value pair. hasValue distinguishes "a"
// from "a=" so both survive a round trip unchanged.
type queryParam struct {
	key      string
	value    string
	hasValue bool
}

// canonicalQuery rewrites a raw query string into canonical form.
func canonicalQuery(rawQuery string) string {
	parts := strings.FieldsFunc(rawQuery, func(r rune) bool {
		return r == '&' || r == ';'
	})

	params := make([]queryParam, 0, len(parts))
	for _, part := range parts {
		key, value, hasValue := strings.Cut(part, "=")
		p := queryParam{key: unescape(key), value: unescape(value), hasValue: hasValue}
		if isDroppedParam(p.key) {
			continue
		}
		params = append(params, p)
	}

	slices.SortStableFunc(params, func(a, b queryParam) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.value, b.value)
	})

	encoded := make([]string, 0, len(params))
	for _, p := range params {
		s := url.QueryEscape(p.key)
		if p.hasValue {
			s += "=" + url.QueryEscape(p.value)
		}
		encoded = append(encoded, s)
	}
	return strings.Join(encoded, "&")
}

// unescape decodes a query component, keeping it literally when the
// escaping is broken.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

func isDroppedParam(key string) bool {
	for _, name := range droppedParams {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
