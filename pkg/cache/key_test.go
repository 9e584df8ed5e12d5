package cache

import (
	"testing"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{
			name:     "symbols scope",
			key:      Key{Scope: "symbols", Host: "coinmarketcap.com"},
			expected: "cmc:symbols:coinmarketcap.com",
		},
		{
			name:     "empty host",
			key:      Key{Scope: "symbols"},
			expected: "cmc:symbols",
		},
		{
			name:     "empty key",
			key:      Key{},
			expected: "cmc",
		},
		{
			name:     "whitespace trimmed",
			key:      Key{Scope: " symbols ", Host: " files.coinmarketcap.com "},
			expected: "cmc:symbols:files.coinmarketcap.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.key.String()
			if result != tt.expected {
				t.Errorf("String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestKeyString_Deterministic(t *testing.T) {
	key := Key{Scope: "symbols", Host: "coinmarketcap.com"}

	first := key.String()
	for i := 0; i < 10; i++ {
		if key.String() != first {
			t.Fatal("Key generation must be deterministic")
		}
	}
}
