package utils

import (
	"net/http/httptest"
	"testing"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("RELAY_TEST_VAR", "set")

	if got := GetEnvWithDefault("RELAY_TEST_VAR", "fallback"); got != "set" {
		t.Errorf("GetEnvWithDefault() = %q, want %q", got, "set")
	}
	if got := GetEnvWithDefault("RELAY_TEST_VAR_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnvWithDefault() = %q, want %q", got, "fallback")
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty", token: "", want: ""},
		{name: "short fully masked", token: "abcd1234", want: "********"},
		{name: "long keeps edges", token: "abcd-secret-wxyz", want: "abcd********wxyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.token); got != tt.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "socket address without port",
			remoteAddr: "10.1.2.3:54321",
			want:       "10.1.2.3",
		},
		{
			name:       "forwarded header preferred",
			remoteAddr: "10.1.2.3:54321",
			forwarded:  "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "first forwarded entry wins",
			remoteAddr: "10.1.2.3:54321",
			forwarded:  "203.0.113.7, 198.51.100.2",
			want:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/chat", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientID(r); got != tt.want {
				t.Errorf("ClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}
