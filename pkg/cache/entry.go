package cache

import (
	"time"
)

// Snapshot is a cached copy of the symbol→slug correspondence table.
type Snapshot struct {
	// Correspondences maps ticker symbols to site slugs.
	Correspondences map[string]string `json:"correspondences"`

	// FetchedAt is when the table was bootstrapped from the live index.
	FetchedAt time.Time `json:"fetched_at"`

	// Expires is when the snapshot becomes stale.
	Expires time.Time `json:"expires"`
}

// IsExpired returns true if the snapshot has expired.
func (s *Snapshot) IsExpired() bool {
	return time.Now().After(s.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (s *Snapshot) TTL() time.Duration {
	ttl := time.Until(s.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
