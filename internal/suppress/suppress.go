// Package suppress detects inline suppression markers.
//
// A diagnostic is suppressed when the rest of its line, from the diagnostic's
// offset to the next line terminator, contains the literal "NOLINT". Anything
// after the marker, including a parenthesized list of check names, is ignored:
// NOLINT(some-check) silences every check on that line.
package suppress

import "bytes"

// Marker is the literal searched for.
const Marker = "NOLINT"

var marker = []byte(Marker)

// Line returns text from off up to, not including, the next '\r' or '\n'.
// An off past the end yields nil.
func Line(text []byte, off uint32) []byte {
	if int(off) > len(text) {
		return nil
	}
	rest := text[off:]
	if i := bytes.IndexAny(rest, "\r\n"); i >= 0 {
		return rest[:i]
	}
	return rest
}

// Contains reports whether line holds the marker anywhere.
func Contains(line []byte) bool {
	return bytes.Contains(line, marker)
}

// Suppressed reports whether the line starting at off in text is suppressed.
func Suppressed(text []byte, off uint32) bool {
	return Contains(Line(text, off))
}
