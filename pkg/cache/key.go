package cache

import (
	"strings"
)

// Key identifies a cached snapshot.
type Key struct {
	// Scope names the kind of snapshot (e.g. "symbols").
	Scope string

	// Host is the site the snapshot was bootstrapped from.
	Host string
}

// String generates a deterministic cache key string.
// Format: cmc:scope:host
//
// Example:
//
//	cmc:symbols:coinmarketcap.com
func (k Key) String() string {
	parts := []string{"cmc"}

	if scope := strings.TrimSpace(k.Scope); scope != "" {
		parts = append(parts, scope)
	}
	if host := strings.TrimSpace(k.Host); host != "" {
		parts = append(parts, host)
	}

	return strings.Join(parts, ":")
}
