package subtitle

import (
	"strings"
	"testing"
	"time"
)

func TestParseForeignSRT(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	sub, err := ParseForeign(content)
	if err != nil {
		t.Fatalf("failed to parse SRT: %v", err)
	}

	if sub.Format != string(FormatSRT) {
		t.Errorf("expected format SRT, got %s", sub.Format)
	}
	if len(sub.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sub.Entries))
	}

	if sub.Entries[0].StartTime != 1*time.Second {
		t.Errorf("entry 0: expected start 1s, got %v", sub.Entries[0].StartTime)
	}
	if sub.Entries[0].EndTime != 4*time.Second {
		t.Errorf("entry 0: expected end 4s, got %v", sub.Entries[0].EndTime)
	}

	expectedText := "This is a test.\nWith multiple lines."
	if sub.Entries[1].Text != expectedText {
		t.Errorf("entry 1: expected %q, got %q", expectedText, sub.Entries[1].Text)
	}
}

func TestParseForeignVTT(t *testing.T) {
	content := `WEBVTT

NOTE this block is ignored
and so is this line

1
00:00:01.000 --> 00:00:04.000
Hello, world!

00:05.500 --> 00:08.200 align:start
Short timestamps.
`
	sub, err := ParseForeign(content)
	if err != nil {
		t.Fatalf("failed to parse VTT: %v", err)
	}

	if sub.Format != string(FormatVTT) {
		t.Errorf("expected format VTT, got %s", sub.Format)
	}
	if len(sub.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sub.Entries))
	}
	if sub.Entries[1].StartTime != 5500*time.Millisecond {
		t.Errorf("entry 1: expected start 5.5s, got %v", sub.Entries[1].StartTime)
	}
	if sub.Entries[1].Text != "Short timestamps." {
		t.Errorf("entry 1: expected 'Short timestamps.', got %q", sub.Entries[1].Text)
	}
}

func TestParseForeignEmpty(t *testing.T) {
	if _, err := ParseForeign("not a subtitle"); err == nil {
		t.Error("expected error for content without cues")
	}
}

func TestConvertToASS(t *testing.T) {
	content := "1\r\n00:00:01,000 --> 00:00:02,500\r\nTwo\r\nlines\r\n"

	out, err := ConvertToASS(content, ASSOptions{FontName: "Roboto"})
	if err != nil {
		t.Fatalf("ConvertToASS failed: %v", err)
	}

	if !strings.Contains(out, "Style: Default,Roboto,") {
		t.Error("font name not applied to the Default style")
	}
	if !strings.Contains(out, "Dialogue: 0,0:00:01.00,0:00:02.50,Default,,0,0,0,,Two\\Nlines") {
		t.Errorf("dialogue not rendered as expected, got: %s", out)
	}

	script, err := ParseScript(out)
	if err != nil {
		t.Fatalf("converted output should parse as a script: %v", err)
	}
	if len(script.Styles) != 1 {
		t.Errorf("expected a single style, got %v", script.Styles)
	}
}

func TestConvertToASSPassesScriptsThrough(t *testing.T) {
	out, err := ConvertToASS(twoStyleScript, ASSOptions{})
	if err != nil {
		t.Fatalf("ConvertToASS failed: %v", err)
	}
	if out != twoStyleScript {
		t.Error("ASS input should be returned unchanged")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"movie.en.srt", FormatSRT},
		{"https://cdn.example/sub.VTT?token=1", FormatVTT},
		{"signs.ssa", FormatASS},
		{"notes.txt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
