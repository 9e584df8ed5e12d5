package cache

import (
	"testing"
	"time"
)

func TestSnapshotIsExpired(t *testing.T) {
	tests := []struct {
		name     string
		expires  time.Time
		expected bool
	}{
		{"future expiry", time.Now().Add(time.Hour), false},
		{"past expiry", time.Now().Add(-time.Hour), true},
		{"just expired", time.Now().Add(-time.Millisecond), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &Snapshot{Expires: tt.expires}
			if snap.IsExpired() != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", snap.IsExpired(), tt.expected)
			}
		})
	}
}

func TestSnapshotTTL(t *testing.T) {
	snap := &Snapshot{Expires: time.Now().Add(time.Hour)}

	ttl := snap.TTL()
	if ttl <= 59*time.Minute || ttl > time.Hour {
		t.Errorf("TTL() = %v, want about one hour", ttl)
	}

	expired := &Snapshot{Expires: time.Now().Add(-time.Minute)}
	if expired.TTL() != 0 {
		t.Errorf("TTL() = %v for expired snapshot, want 0", expired.TTL())
	}
}
