package parser

import (
	"regexp"
	"strings"
)

var (
	controlCharsRe  = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Normalize repairs the common syntactic damage found in model output so the
// result has a chance of being valid JSON. It never fails; the input comes
// back unchanged when there is nothing to repair. Applied in order: trim,
// strip ASCII/Latin-1 control characters (illegal inside JSON string
// literals), drop trailing commas before a closing brace or bracket, and undo
// the double-encoding artifacts \\ and \'.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = controlCharsRe.ReplaceAllString(s, "")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\'`, `'`)
	return s
}
