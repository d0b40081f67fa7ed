package traffic

import "strings"

// PlaceholderAPIKey is the key value shipped in example configuration. It is
// treated exactly like a missing key.
const PlaceholderAPIKey = "your_api_key_here"

// Mode selects where a lookup gets its data from.
type Mode int

const (
	ModeSynthetic Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "synthetic"
}

// Credentials identify the upstream provider account.
type Credentials struct {
	APIKey  string
	APIHost string
}

// ResolveMode returns ModeLive only when both credentials are present and the
// key is not the placeholder. It must be consulted before any network call.
func ResolveMode(c Credentials) Mode {
	key := strings.TrimSpace(c.APIKey)
	host := strings.TrimSpace(c.APIHost)
	if key == "" || host == "" || key == PlaceholderAPIKey {
		return ModeSynthetic
	}
	return ModeLive
}
