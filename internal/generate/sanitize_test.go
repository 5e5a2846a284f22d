package generate

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"bare fence", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"no fence", "  [1]  ", "[1]"},
		{"fence without newline", "```json[1]```", "[1]"},
		{"text around fence", "Hier is het:\n```json\n[]\n```", "Hier is het:\n[]"},
		{"empty", "", ""},
		{"stray backticks join", "````json``", ""},
		{"partial fence kept", "``{}", "``{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"```json\n[1]\n```",
		"plain text",
		"  \n```\n```json\n  ",
		"``````",
		"`` ``` `",
		"`````json\n{}",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
