// Package diff summarizes unified diff text into per-file statistics.
package diff

import (
	"regexp"
	"strings"
)

// FileStat describes one file touched by a diff.
type FileStat struct {
	Path      string `json:"path"`
	FileType  string `json:"fileType,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

var fileHeaderRe = regexp.MustCompile(`diff --git a/(.*) b/(.*)`)

// Summarize splits a unified diff into per-file statistics. Diff text
// without "diff --git" file headers, such as a bare hunk, is summarized as a
// single unnamed file so the counts are never lost.
func Summarize(diffText string) []FileStat {
	if strings.TrimSpace(diffText) == "" {
		return nil
	}

	sections := splitByFile(diffText)
	if len(sections) == 0 {
		sections = []string{diffText}
	}

	stats := make([]FileStat, 0, len(sections))
	for _, section := range sections {
		stat := FileStat{Path: filePath(section)}
		stat.FileType = fileType(stat.Path)
		stat.Additions, stat.Deletions = countChanges(section)
		stats = append(stats, stat)
	}
	return stats
}

// splitByFile cuts the diff at each "diff --git" header. Leading text before
// the first header is preamble and dropped.
func splitByFile(diffText string) []string {
	parts := strings.Split(diffText, "diff --git ")

	sections := make([]string, 0, len(parts))
	for i, part := range parts {
		if i == 0 {
			continue
		}
		sections = append(sections, "diff --git "+part)
	}
	return sections
}

func filePath(section string) string {
	matches := fileHeaderRe.FindStringSubmatch(section)
	if len(matches) < 3 {
		return ""
	}
	return matches[2]
}

func fileType(path string) string {
	dot := strings.LastIndex(path, ".")
	if dot <= 0 || dot == len(path)-1 {
		return ""
	}
	return path[dot+1:]
}

// countChanges counts added and removed lines, excluding the +++/--- file
// header lines.
func countChanges(section string) (additions, deletions int) {
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}
