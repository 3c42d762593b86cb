package log

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// MaxValueLength caps logged string values. Longer values, such as a page
// body attached to an error, are cut and suffixed with the dropped size.
const MaxValueLength = 512

// sessionNames are attribute keys and URL parameter names masked on exact
// match. Most of them are what servers put in crawled links to track a
// visitor.
var sessionNames = map[string]bool{
	"sid":           true,
	"jsessionid":    true,
	"phpsessid":     true,
	"aspsessionid":  true,
	"cfid":          true,
	"cftoken":       true,
	"key":           true,
	"apikey":        true,
	"api_key":       true,
	"api-key":       true,
	"x-api-key":     true,
	"sig":           true,
	"signature":     true,
	"ticket":        true,
	"cookie":        true,
	"set-cookie":    true,
	"authorization": true,
	"pwd":           true,
}

// sensitiveFragments mask any name containing them. The bare "key" is only
// matched exactly above; as a fragment it would hit "primary_key".
var sensitiveFragments = []string{
	"password", "passwd", "secret", "token", "auth",
	"credential", "private", "session",
}

// secretValues match values that are secrets whatever their key.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// isSensitiveName reports whether values under name must be masked.
func isSensitiveName(name string) bool {
	name = strings.ToLower(name)
	if sessionNames[name] {
		return true
	}
	for _, f := range sensitiveFragments {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// isSensitiveValue reports whether value looks like a credential.
func isSensitiveValue(value string) bool {
	for _, re := range secretValues {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// redactString returns the loggable form of a string attribute value.
func redactString(s string) string {
	if isSensitiveValue(s) {
		return MaskValue
	}
	if masked, ok := SanitizeURL(s); ok {
		s = masked
	}
	if len(s) > MaxValueLength {
		s = fmt.Sprintf("%s...(+%d bytes)", truncateUTF8(s, MaxValueLength), len(s)-MaxValueLength)
	}
	return s
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

// SanitizeURL masks the secrets an absolute http or https URL can carry:
// a userinfo password, session path parameters such as
// ";jsessionid=...", and sensitive query parameter values. It reports
// false, leaving s alone, when s is not such a URL or holds nothing to
// mask.
//
// The query is rewritten textually so the order and encoding of the
// harmless parameters stay as logged.
func SanitizeURL(s string) (string, bool) {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return s, false
	}

	_, hasPassword := u.User.Password()
	pathMasked := maskPathParams(u)
	queryMasked := maskQuery(u)
	if !hasPassword && !pathMasked && !queryMasked {
		return s, false
	}

	out := u.String()
	if hasPassword {
		// url.UserPassword would percent-encode the mask.
		masked := url.User(u.User.Username()).String() + ":" + MaskValue
		out = strings.Replace(out, u.User.String()+"@", masked+"@", 1)
	}
	return out, true
}

// maskPathParams masks sensitive ";name=value" parameters in the path.
func maskPathParams(u *url.URL) bool {
	path := u.EscapedPath()
	if !strings.Contains(path, ";") {
		return false
	}
	changed := false
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		params := strings.Split(seg, ";")
		for j := 1; j < len(params); j++ {
			name, _, ok := strings.Cut(params[j], "=")
			if ok && isSensitiveName(name) {
				params[j] = name + "=" + MaskValue
				changed = true
			}
		}
		segments[i] = strings.Join(params, ";")
	}
	if changed {
		u.RawPath = strings.Join(segments, "/")
		u.Path, _ = url.PathUnescape(u.RawPath)
	}
	return changed
}

// maskQuery masks sensitive query parameter values, normalizing ";"
// separators to "&" when anything is masked.
func maskQuery(u *url.URL) bool {
	if u.RawQuery == "" {
		return false
	}
	changed := false
	parts := strings.FieldsFunc(u.RawQuery, func(r rune) bool { return r == '&' || r == ';' })
	for i, part := range parts {
		name, _, hasValue := strings.Cut(part, "=")
		decoded, err := url.QueryUnescape(name)
		if err != nil {
			decoded = name
		}
		if hasValue && isSensitiveName(decoded) {
			parts[i] = name + "=" + MaskValue
			changed = true
		}
	}
	if changed {
		u.RawQuery = strings.Join(parts, "&")
	}
	return changed
}
