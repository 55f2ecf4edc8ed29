// Package ingestion loads raw resume and job-posting text from local
// files or URLs and normalizes it before structuring.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// ReadTextFile loads a text file and returns its cleaned content.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	cleaned := CleanText(string(data))
	if cleaned == "" {
		return "", fmt.Errorf("file %s is empty after cleaning", path)
	}
	return cleaned, nil
}

// CleanText normalizes raw text while preserving its line structure:
// CRLF endings become LF, intra-line space runs collapse, and blank-line
// runs are capped at two.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := removeExcessiveBlankLines(strings.Join(cleaned, "\n"))
	return strings.TrimSpace(result)
}

// cleanLine normalizes one line, keeping bullet indentation intact.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// Bullet lines keep their indentation so section structure survives.
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "• ") {
		indent := len(line) - len(trimmed)
		return strings.Repeat(" ", indent) + spaceRun.ReplaceAllString(trimmed, " ")
	}

	return spaceRun.ReplaceAllString(trimmed, " ")
}

// removeExcessiveBlankLines caps consecutive blank lines at two.
func removeExcessiveBlankLines(content string) string {
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}
	return content
}
