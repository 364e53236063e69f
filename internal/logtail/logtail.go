package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

var textLevel = regexp.MustCompile(`(?:^|\s)level=("?)([a-z]+)("?)`)

// LineLevel extracts the logrus level from a text or JSON formatted line.
func LineLevel(line string) (logrus.Level, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var entry struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal([]byte(trimmed), &entry); err != nil || entry.Level == "" {
			return 0, false
		}
		lvl, err := logrus.ParseLevel(entry.Level)
		return lvl, err == nil
	}
	m := textLevel.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, false
	}
	lvl, err := logrus.ParseLevel(m[2])
	return lvl, err == nil
}

// Filter keeps lines at or above min severity. Lines without a recognizable
// level are continuation output and are kept.
func Filter(lines []string, min logrus.Level) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		lvl, ok := LineLevel(line)
		if ok && lvl > min {
			continue
		}
		out = append(out, line)
	}
	return out
}

var levelStyles = map[logrus.Level]lipgloss.Style{
	logrus.PanicLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	logrus.FatalLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	logrus.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	logrus.WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
	logrus.DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	logrus.TraceLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
}

// Colorize renders a line in its level's color. Info and unknown lines are
// returned unchanged.
func Colorize(line string) string {
	lvl, ok := LineLevel(line)
	if !ok {
		return line
	}
	style, ok := levelStyles[lvl]
	if !ok {
		return line
	}
	return style.Render(line)
}

// ColorizeLines applies Colorize to each line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Colorize(line)
	}
	return out
}
