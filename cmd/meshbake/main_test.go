package main

import "testing"

func TestMatchKey(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"", "characters/hero.toml", true},
		{"characters/*", "characters/hero.toml", true},
		{"*.toml", "characters/hero.toml", true},
		{"hero", "characters/hero.toml", true},
		{"props/*", "characters/hero.toml", false},
		{"villain", "characters/hero.toml", false},
	}

	for _, tt := range tests {
		if got := matchKey(tt.pattern, tt.key); got != tt.want {
			t.Errorf("matchKey(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
		}
	}
}
