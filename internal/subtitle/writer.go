package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// header settings for generated ASS scripts
type ASSOptions struct {
	Title    string
	FontName string
	FontSize int
	PlayResX int
	PlayResY int
}

func (o ASSOptions) withDefaults() ASSOptions {
	if o.Title == "" {
		o.Title = "subtrack"
	}
	if o.FontName == "" {
		o.FontName = "Arial"
	}
	if o.FontSize <= 0 {
		o.FontSize = 52
	}
	if o.PlayResX <= 0 || o.PlayResY <= 0 {
		o.PlayResX, o.PlayResY = 1920, 1080
	}
	return o
}

// renders a subtitle as a single-style ASS script
func RenderASS(sub *Subtitle, opts ASSOptions) string {
	var sb strings.Builder
	writeHeader(&sb, opts.withDefaults())

	for _, entry := range sub.Entries {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			escapeASSText(entry.Text)))
	}

	return sb.String()
}

func writeHeader(sb *strings.Builder, opts ASSOptions) {
	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", opts.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString(fmt.Sprintf("PlayResX: %d\n", opts.PlayResX))
	sb.WriteString(fmt.Sprintf("PlayResY: %d\n", opts.PlayResY))
	sb.WriteString("ScaledBorderAndShadow: yes\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,20,1\n\n",
		opts.FontName, opts.FontSize))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

func formatASSTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\\N")
}
