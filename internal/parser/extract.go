package parser

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractFenced returns the interior of the first triple-backtick fence, with
// or without a json language tag. Input without a fence is returned unchanged.
func ExtractFenced(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ExtractPayload isolates the first balanced JSON object or array inside
// arbitrary surrounding prose. It walks forward from the first opening
// bracket counting nesting depth of that bracket type only, and returns the
// substring through the character where depth returns to zero.
//
// Two degrade paths are deliberate: no opening bracket at all returns the
// input unchanged so the downstream parse fails loudly, and a truncated
// payload whose depth never closes also returns the input unchanged rather
// than guessing a close point.
func ExtractPayload(s string) string {
	body := ExtractFenced(s)

	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return body
	}

	open := body[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	for i := start; i < len(body); i++ {
		switch body[i] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return body[start : i+1]
			}
		}
	}

	// Unbalanced input: more opens than closes.
	return body
}
