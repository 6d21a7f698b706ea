package common

import "testing"

func TestClosestMatch(t *testing.T) {
	known := []string{"rain", "snow", "sandstorm"}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"rian", "rain", true},
		{"Snwo", "snow", true},
		{"sn", "snow", true},
		{"sandstrom", "sandstorm", true},
		{"thunder", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ClosestMatch(tt.in, known...)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ClosestMatch(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
