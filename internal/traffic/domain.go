package traffic

import "strings"

// NormalizeDomain reduces user input such as "https://Example.com/path?q=1"
// to a bare host ("Example.com"). Nothing is validated; whatever remains is
// passed through.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	for _, scheme := range []string{"https://", "http://"} {
		if len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme) {
			s = s[len(scheme):]
			break
		}
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	return strings.TrimSpace(s)
}
