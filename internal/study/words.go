package study

import "strings"

// CountWords splits on any run of whitespace and ignores empty tokens
func CountWords(s string) int {
	return len(strings.Fields(s))
}
