package subtitle

import "testing"

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "crlf", input: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "lone cr", input: "a\rb", want: "a\nb"},
		{name: "already lf", input: "a\nb", want: "a\nb"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNewlines(tt.input); got != tt.want {
				t.Errorf("NormalizeNewlines(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsScript(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"[Script Info]\nTitle: x\n", true},
		{"\ufeff[script info]\n", true},
		{"  \n[Script Info]", true},
		{"1\n00:00:01,000 --> 00:00:02,000\nhi\n", false},
		{"WEBVTT\n", false},
	}

	for _, tt := range tests {
		if got := IsScript(tt.input); got != tt.want {
			t.Errorf("IsScript(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
