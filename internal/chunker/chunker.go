// Package chunker splits extracted document text into fixed-size fragments.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Split cuts text into consecutive, non-overlapping windows of size
// characters (Unicode code points). The final window may be shorter.
// Windows consisting only of whitespace are omitted; kept windows preserve
// their original content. A non-positive size yields no fragments.
func Split(text string, size int) []string {
	if size <= 0 || text == "" {
		return nil
	}

	fragments := make([]string, 0, utf8.RuneCountInString(text)/size+1)
	start, count := 0, 0
	for i := range text {
		if count == size {
			fragments = appendWindow(fragments, text[start:i])
			start, count = i, 0
		}
		count++
	}
	return appendWindow(fragments, text[start:])
}

func appendWindow(fragments []string, window string) []string {
	if strings.TrimSpace(window) == "" {
		return fragments
	}
	return append(fragments, window)
}

// Count returns len(Split(text, size)) without retaining the fragments.
func Count(text string, size int) int {
	return len(Split(text, size))
}
