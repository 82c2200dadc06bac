package subtitle

import (
	"reflect"
	"strings"
	"testing"
)

const twoStyleScript = `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1
Style: Italic,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,1,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!
Dialogue: 1,0:00:05.50,0:00:08.20,Italic,Narrator,12,14,16,,{\pos(100,200)}This has positioning.
Dialogue: 0,0:00:10.00,0:00:12.50,Default,,0,0,0,,Line with\Nnewline.
`

func TestParseScript(t *testing.T) {
	script, err := ParseScript(twoStyleScript)
	if err != nil {
		t.Fatalf("failed to parse script: %v", err)
	}

	if len(script.Dialogues) != 3 {
		t.Fatalf("expected 3 dialogues, got %d", len(script.Dialogues))
	}

	first := script.Dialogues[0]
	if first.StartMs != 1000 || first.EndMs != 4000 {
		t.Errorf("dialogue 0: expected 1000-4000ms, got %d-%d", first.StartMs, first.EndMs)
	}
	if first.Text != "Hello, world!" {
		t.Errorf("dialogue 0: expected 'Hello, world!', got %q", first.Text)
	}

	second := script.Dialogues[1]
	if second.ReadOrder != 1 || second.Layer != 1 {
		t.Errorf("dialogue 1: expected read order 1 layer 1, got %d %d", second.ReadOrder, second.Layer)
	}
	if second.Style != "Italic" || second.Name != "Narrator" {
		t.Errorf("dialogue 1: expected Italic/Narrator, got %q/%q", second.Style, second.Name)
	}
	if second.MarginL != 12 || second.MarginR != 14 || second.MarginV != 16 {
		t.Errorf("dialogue 1: unexpected margins %d,%d,%d", second.MarginL, second.MarginR, second.MarginV)
	}
	if second.StartMs != 5500 || second.EndMs != 8200 {
		t.Errorf("dialogue 1: expected 5500-8200ms, got %d-%d", second.StartMs, second.EndMs)
	}

	if !strings.HasSuffix(script.Header, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n") {
		t.Errorf("header should end with the events Format line, got %q", script.Header)
	}
	if strings.Contains(script.Header, "Dialogue:") {
		t.Error("header must not contain dialogue lines")
	}

	if !reflect.DeepEqual(script.Styles, []string{"Default", "Italic"}) {
		t.Errorf("unexpected styles %v", script.Styles)
	}
}

func TestParseScriptCRLF(t *testing.T) {
	content := strings.ReplaceAll(twoStyleScript, "\n", "\r\n")

	script, err := ParseScript(content)
	if err != nil {
		t.Fatalf("failed to parse script: %v", err)
	}
	if len(script.Dialogues) != 3 {
		t.Fatalf("expected 3 dialogues, got %d", len(script.Dialogues))
	}
	if strings.Contains(script.Header, "\r") {
		t.Error("header should be normalized to LF")
	}
}

func TestParseScriptMissingFormat(t *testing.T) {
	_, err := ParseScript("[Script Info]\nTitle: x\n\n[Events]\n")
	if err == nil {
		t.Error("expected error for script without events Format line")
	}
}

func TestStyleNames(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{
			name:   "two styles",
			header: twoStyleScript,
			want:   []string{"Default", "Italic"},
		},
		{
			name:   "default header",
			header: DefaultHeader(),
			want:   []string{"Default"},
		},
		{
			name: "duplicates collapse",
			header: "[V4+ Styles]\nFormat: Name, Fontname\n" +
				"Style: Main,Arial\nStyle: Main,Arial\n",
			want: []string{"Main"},
		},
		{
			name: "name column not first",
			header: "[V4 Styles]\nFormat: Fontname, Name\n" +
				"Style: Arial,Sign\nStyle: Arial,Top\n",
			want: []string{"Sign", "Top"},
		},
		{
			name:   "no styles section",
			header: "[Script Info]\nTitle: x\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StyleNames(tt.header)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StyleNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitFields(t *testing.T) {
	got := splitFields("0,0:00:01.00,0:00:02.00,Default,,0,0,0,,a, b, c", 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 fields, got %d", len(got))
	}
	if got[9] != "a, b, c" {
		t.Errorf("text field should keep commas, got %q", got[9])
	}
}
