// Package utils provides small helpers shared across the relay: environment
// lookups, credential masking, client identification and rate limiting.
package utils

import (
	"net"
	"net/http"
	"os"
	"strings"
)

// GetEnvWithDefault retrieves an environment variable or returns a default
// value if not set.
func GetEnvWithDefault(name, defaultValue string) string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	return value
}

// MaskToken returns a redacted form of a credential that is safe to log.
// Short values are fully masked.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// ClientID derives a per-client identifier for rate limiting. It prefers the
// first entry of the X-Forwarded-For header, falling back to the socket
// address without its port.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
