package subtitle

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// parsed Dialogue line, timings in milliseconds
type Dialogue struct {
	ReadOrder int
	Layer     int
	StartMs   int64
	EndMs     int64
	Style     string
	Name      string
	MarginL   int
	MarginR   int
	MarginV   int
	Effect    string
	Text      string
}

// ASS/SSA script split into its header and dialogue events
type Script struct {
	// everything up to and including the [Events] Format line
	Header    string
	Styles    []string
	Dialogues []Dialogue
}

// splits an ASS/SSA script into header and dialogues
func ParseScript(content string) (*Script, error) {
	scanner := bufio.NewScanner(newlineReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	script := &Script{}
	var header []string
	var formatColumns []string
	inEventsSection := false
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmedLine := strings.TrimSpace(line)

		if isSectionLine(trimmedLine) {
			inEventsSection = sectionName(trimmedLine) == "events"
			if formatColumns == nil {
				header = append(header, line)
			}
			continue
		}

		if !inEventsSection {
			if formatColumns == nil {
				header = append(header, line)
			}
			continue
		}

		if strings.HasPrefix(trimmedLine, "Format:") {
			formatColumns = splitColumns(strings.TrimPrefix(trimmedLine, "Format:"))
			if columnIndex(formatColumns, "text") == -1 {
				return nil, fmt.Errorf("ASS script missing Text column in Format line")
			}
			header = append(header, line)
			continue
		}

		if strings.HasPrefix(trimmedLine, "Dialogue:") {
			if formatColumns == nil {
				return nil, fmt.Errorf("Dialogue before Format at line %d", lineNum)
			}
			dialogue, err := parseDialogue(trimmedLine, formatColumns)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to parse Dialogue at line %d: %w",
					lineNum,
					err,
				)
			}
			dialogue.ReadOrder = len(script.Dialogues)
			script.Dialogues = append(script.Dialogues, dialogue)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS script: %w", err)
	}

	if formatColumns == nil {
		return nil, fmt.Errorf("ASS script missing Format line in [Events] section")
	}

	script.Header = strings.Join(header, "\n") + "\n"
	script.Styles = StyleNames(script.Header)

	return script, nil
}

// distinct style names declared in the styles section of a header, in
// declaration order
func StyleNames(header string) []string {
	scanner := bufio.NewScanner(newlineReader(header))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var names []string
	seen := make(map[string]bool)
	inStyles := false
	nameIndex := 0

	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))

		if isSectionLine(trimmedLine) {
			section := sectionName(trimmedLine)
			inStyles = section == "v4+ styles" || section == "v4 styles"
			continue
		}
		if !inStyles {
			continue
		}

		switch {
		case strings.HasPrefix(trimmedLine, "Format:"):
			columns := splitColumns(strings.TrimPrefix(trimmedLine, "Format:"))
			if idx := columnIndex(columns, "name"); idx >= 0 {
				nameIndex = idx
			}
		case strings.HasPrefix(trimmedLine, "Style:"):
			fields := strings.Split(strings.TrimPrefix(trimmedLine, "Style:"), ",")
			if nameIndex >= len(fields) {
				continue
			}
			name := strings.TrimSpace(fields[nameIndex])
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}

// minimal header used when a text track carries none
func DefaultHeader() string {
	var sb strings.Builder
	writeHeader(&sb, ASSOptions{}.withDefaults())
	return sb.String()
}

func isSectionLine(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

func sectionName(line string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
}

func splitColumns(formatPart string) []string {
	columns := strings.Split(formatPart, ",")
	for i, col := range columns {
		columns[i] = strings.TrimSpace(col)
	}
	return columns
}

func columnIndex(columns []string, name string) int {
	for i, col := range columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

func parseDialogue(line string, columns []string) (Dialogue, error) {
	content := strings.TrimSpace(strings.TrimPrefix(line, "Dialogue:"))

	parts := splitFields(content, len(columns))
	if len(parts) < len(columns) {
		return Dialogue{}, fmt.Errorf(
			"expected %d fields, got %d",
			len(columns),
			len(parts),
		)
	}

	var d Dialogue
	for i, col := range columns {
		value := parts[i]
		if !strings.EqualFold(col, "text") {
			value = strings.TrimSpace(value)
		}

		switch strings.ToLower(col) {
		case "layer", "marked":
			d.Layer = atoiOrZero(strings.TrimPrefix(value, "Marked="))
		case "start":
			d.StartMs = parseTimestamp(value)
		case "end":
			d.EndMs = parseTimestamp(value)
		case "style":
			d.Style = value
		case "name", "actor":
			d.Name = value
		case "marginl":
			d.MarginL = atoiOrZero(value)
		case "marginr":
			d.MarginR = atoiOrZero(value)
		case "marginv":
			d.MarginV = atoiOrZero(value)
		case "effect":
			d.Effect = value
		case "text":
			d.Text = value
		}
	}

	return d, nil
}

// splits on the first numFields-1 commas; the last field keeps its commas
func splitFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}

	parts := make([]string, 0, numFields)
	remaining := content

	for i := 0; i < numFields-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			parts = append(parts, remaining)
			remaining = ""
			break
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}

	parts = append(parts, remaining)

	return parts
}

// h:mm:ss.cc to milliseconds, zero when malformed
func parseTimestamp(ts string) int64 {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}

	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0
	}

	seconds, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0
	}

	centis, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0
	}

	return int64(hours)*3600000 +
		int64(minutes)*60000 +
		int64(seconds)*1000 +
		int64(centis)*10
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
