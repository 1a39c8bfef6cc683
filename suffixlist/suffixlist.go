// Package suffixlist reads public suffix lists in plain text.
//
// A list has one suffix per line. Surrounding whitespace is ignored and only
// the first whitespace-delimited token of a line is used, so anything after
// it acts as a trailing comment. Lines whose token starts with "#" or "//"
// are comments.
package suffixlist

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

const (
	// DefaultMaxLineLength is the default maximum line length in bytes.
	DefaultMaxLineLength = 256

	// DefaultMaxSuffixLength is the default maximum suffix length in bytes.
	DefaultMaxSuffixLength = 256
)

// Options controls how a list is parsed.
//
// Lines and suffixes longer than the limits are truncated, not rejected.
// Non-positive limits select the defaults.
type Options struct {
	MaxLineLength   int
	MaxSuffixLength int
}

func (o Options) limits() (maxLine, maxSuffix int) {
	maxLine, maxSuffix = o.MaxLineLength, o.MaxSuffixLength
	if maxLine <= 0 {
		maxLine = DefaultMaxLineLength
	}
	if maxSuffix <= 0 {
		maxSuffix = DefaultMaxSuffixLength
	}
	return
}

// Parse returns an iterator over the suffixes in text using default options.
func Parse(text string) iter.Seq[string] {
	return Options{}.Parse(text)
}

// Parse returns an iterator over the suffixes in text.
// The yielded strings share memory with text.
func (o Options) Parse(text string) iter.Seq[string] {
	maxLine, maxSuffix := o.limits()

	return func(yield func(string) bool) {
		var line string
		text := text

		for {
			line, text = nextNonEmptyLine(text)
			if len(line) == 0 {
				return
			}

			if len(line) > maxLine {
				line = line[:maxLine]
			}

			suffix := firstField(line)
			if suffix == "" || isComment(suffix) {
				continue
			}

			if len(suffix) > maxSuffix {
				suffix = suffix[:maxSuffix]
			}

			if !yield(suffix) {
				return
			}
		}
	}
}

// WriteText writes suffixes in the plain list format.
func WriteText(w io.Writer, suffixes []string) error {
	bw := bufio.NewWriter(w)
	for _, s := range suffixes {
		bw.WriteString(s)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func isComment(token string) bool {
	return token[0] == '#' || strings.HasPrefix(token, "//")
}

// nextNonEmptyLine returns the next non-empty line and the remaining text.
// LF and CRLF line endings are both accepted.
func nextNonEmptyLine(text string) (string, string) {
	for {
		lfIndex := strings.IndexByte(text, '\n')
		if lfIndex == -1 {
			return strings.TrimSuffix(text, "\r"), ""
		}
		line := text[:lfIndex]
		text = text[lfIndex+1:]
		line = strings.TrimSuffix(line, "\r")
		if len(line) == 0 {
			continue
		}
		return line, text
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\v', '\f', '\r':
		return true
	}
	return false
}

// firstField returns the first whitespace-delimited token of line.
func firstField(line string) string {
	start := 0
	for start < len(line) && isSpace(line[start]) {
		start++
	}
	end := start
	for end < len(line) && !isSpace(line[end]) {
		end++
	}
	return line[start:end]
}
