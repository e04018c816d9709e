package registry

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   \t\n ", ""},
		{".a", ".a"},
		{"  .a   .b  ", ".a .b"},
		{".a\n\t>\r\n.b", ".a > .b"},
		{"(min-width:\n  768px)", "(min-width: 768px)"},
		{"a b", "a b"},
	}

	for _, tt := range tests {
		got := Normalize(tt.in)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize is not idempotent for %q: %q then %q", tt.in, got, again)
		}
	}
}

func TestAtRuleHeader(t *testing.T) {
	tests := []struct {
		keyword, prelude, want string
	}{
		{"font-face", "", "@font-face"},
		{"font-face", "  ", "@font-face"},
		{"keyframes", " spin ", "@keyframes spin"},
		{"media", "screen and\n (min-width:  768px)", "@media screen and (min-width: 768px)"},
	}
	for _, tt := range tests {
		if got := AtRuleHeader(tt.keyword, tt.prelude); got != tt.want {
			t.Errorf("AtRuleHeader(%q, %q) = %q, want %q", tt.keyword, tt.prelude, got, tt.want)
		}
	}
}
