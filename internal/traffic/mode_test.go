package traffic

import "testing"

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  Mode
	}{
		{"no key", Credentials{APIKey: "", APIHost: "h"}, ModeSynthetic},
		{"no host", Credentials{APIKey: "real", APIHost: ""}, ModeSynthetic},
		{"nothing", Credentials{}, ModeSynthetic},
		{"placeholder key", Credentials{APIKey: PlaceholderAPIKey, APIHost: "h"}, ModeSynthetic},
		{"whitespace key", Credentials{APIKey: "  ", APIHost: "h"}, ModeSynthetic},
		{"configured", Credentials{APIKey: "real", APIHost: "h"}, ModeLive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveMode(tt.creds); got != tt.want {
				t.Errorf("ResolveMode(%+v) = %v, want %v", tt.creds, got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if ModeSynthetic.String() != "synthetic" {
		t.Errorf("ModeSynthetic = %q", ModeSynthetic.String())
	}
	if ModeLive.String() != "live" {
		t.Errorf("ModeLive = %q", ModeLive.String())
	}
}
