package extractor

import "strings"

// FindBlockEnd returns the 0-based line on which the construct starting at
// line start ends.
//
// Depth rises on '{' and falls on '}'; the first line where depth returns to
// zero after being positive is the end. A start line without '{' that ends in
// ';' is its own end. Truncated input resolves to start+1, clamped to the
// last line.
func FindBlockEnd(lines []string, start int) int {
	if len(lines) == 0 {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return len(lines) - 1
	}

	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for _, c := range braceEvents(lines[i]) {
			if c == '{' {
				depth++
				opened = true
				continue
			}
			depth--
			if opened && depth <= 0 {
				return i
			}
		}
		if i == start && !opened && strings.HasSuffix(strings.TrimSpace(stripLineComment(lines[i])), ";") {
			return start
		}
	}

	end := start + 1
	if end > len(lines)-1 {
		end = len(lines) - 1
	}
	return end
}

// braceEvents returns the structural braces of a line in order, skipping
// those inside line comments, string literals and char literals.
func braceEvents(line string) []byte {
	var events []byte
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return events
			}
		case '"':
			i = skipQuoted(line, i) - 1
		case '\'':
			// '{' and '}' char literals
			if i+2 < len(line) && line[i+2] == '\'' {
				i += 2
			}
		case '{', '}':
			events = append(events, c)
		}
	}
	return events
}

// skipQuoted returns the index just past the string literal opened at i, or
// len(line) when it does not close on this line.
func skipQuoted(line string, i int) int {
	for j := i + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(line)
}

// stripLineComment removes a trailing // comment that is not inside a string.
func stripLineComment(line string) string {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			i = skipQuoted(line, i) - 1
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

// lineComment returns the text of a trailing // comment, without the slashes.
func lineComment(line string) string {
	code := stripLineComment(line)
	if len(code) == len(line) {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(line[len(code):], "/"))
}
