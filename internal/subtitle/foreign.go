package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// matches both SRT (00:00:01,000) and VTT (00:01.000, 00:00:01.000) cue timings
var timingRegex = regexp.MustCompile(
	`(?:(\d{1,2}):)?(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(?:(\d{1,2}):)?(\d{2}):(\d{2})[,.](\d{3})`,
)

// parses SRT or WebVTT content, the format is sniffed from the content
func ParseForeign(content string) (*Subtitle, error) {
	format := FormatSRT
	trimmed := strings.TrimSpace(strings.TrimPrefix(content, "\ufeff"))
	if strings.HasPrefix(trimmed, "WEBVTT") {
		format = FormatVTT
	}

	scanner := bufio.NewScanner(newlineReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var entries []Entry
	var currentEntry *Entry
	var textLines []string
	lineNum := 0

	flush := func() {
		if currentEntry != nil && len(textLines) > 0 {
			currentEntry.Text = strings.Join(textLines, "\n")
			entries = append(entries, *currentEntry)
		}
		currentEntry = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmedLine := strings.TrimSpace(line)

		if format == FormatVTT && currentEntry == nil &&
			(strings.HasPrefix(trimmedLine, "WEBVTT") ||
				strings.HasPrefix(trimmedLine, "NOTE") ||
				strings.HasPrefix(trimmedLine, "STYLE") ||
				strings.HasPrefix(trimmedLine, "REGION")) {
			// skip the whole block
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmedLine == "" {
			flush()
			continue
		}

		if matches := timingRegex.FindStringSubmatch(line); matches != nil {
			flush()

			startTime, err := parseCueTimestamp(matches[1:5])
			if err != nil {
				return nil, fmt.Errorf(
					"invalid start timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			endTime, err := parseCueTimestamp(matches[5:9])
			if err != nil {
				return nil, fmt.Errorf(
					"invalid end timestamp at line %d: %w",
					lineNum,
					err,
				)
			}

			currentEntry = &Entry{
				Index:     len(entries) + 1,
				StartTime: startTime,
				EndTime:   endTime,
			}
			continue
		}

		// cue identifiers and SRT sequence numbers precede the timing line
		if currentEntry == nil {
			continue
		}

		textLines = append(textLines, line)
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s content: %w", format, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no cues found in %s content", format)
	}

	return &Subtitle{Entries: entries, Format: string(format)}, nil
}

func parseCueTimestamp(parts []string) (time.Duration, error) {
	hours := parts[0]
	if hours == "" {
		hours = "0"
	}
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(parts[3])
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// converts SRT or WebVTT content into an ASS script
func ConvertToASS(content string, opts ASSOptions) (string, error) {
	if IsScript(content) {
		return content, nil
	}

	sub, err := ParseForeign(content)
	if err != nil {
		return "", err
	}

	return RenderASS(sub, opts), nil
}
