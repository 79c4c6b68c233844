package normalize

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1-0", "1-0"},
		{"1 - 0", "1-0"},
		{" 2 -  1 ", "2-1"},
		{"Any Other Home Win", "AnyOtherHomeWin"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Score(tt.in); got != tt.want {
			t.Errorf("Score(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReverseScore(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2-1", "1-2"},
		{"1-2", "2-1"},
		{"0-0", "0-0"},
		{"3-0", "0-3"},
		// Labels without a dash are returned unchanged.
		{"AnyOtherDraw", "AnyOtherDraw"},
	}
	for _, tt := range tests {
		if got := ReverseScore(tt.in); got != tt.want {
			t.Errorf("ReverseScore(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
