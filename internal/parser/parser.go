package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparseable signals that every parsing strategy was exhausted. Callers
// must recover by substituting fallback content; a blank question set is
// never propagated to the user-facing flow.
var ErrUnparseable = errors.New("no parsing strategy could extract questions")

// RawRecord is one question as it came out of the JSON layer, before
// validation gives it a guaranteed shape.
type RawRecord = map[string]interface{}

// ParsedResponse wraps the extracted records.
type ParsedResponse struct {
	Questions []RawRecord `json:"questions"`
}

var questionsKeyRe = regexp.MustCompile(`"questions"\s*:\s*\[`)

// Parse converts raw model output into records through an ordered fallback
// chain: a strict parse of the extracted payload first, then a looser
// pattern-based recovery of the questions array. Each strategy runs only if
// the previous one failed.
func Parse(raw string) (*ParsedResponse, error) {
	if res, err := parseStrict(raw); err == nil {
		return res, nil
	}
	if res, err := parseArrayPattern(raw); err == nil {
		return res, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnparseable, preview(raw))
}

// parseStrict is the primary strategy: fence extraction, bracket extraction,
// normalization, strict JSON parse.
func parseStrict(raw string) (*ParsedResponse, error) {
	payload := Normalize(ExtractPayload(raw))
	if payload == "" {
		return nil, errors.New("empty payload")
	}

	var value interface{}
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return nil, err
	}
	return coerce(value)
}

// parseArrayPattern is the secondary strategy: locate a "questions": [...]
// fragment by pattern, or failing that any top-level array, and parse just
// that slice of the text.
func parseArrayPattern(raw string) (*ParsedResponse, error) {
	if loc := questionsKeyRe.FindStringIndex(raw); loc != nil {
		fragment := ExtractPayload(raw[loc[1]-1:])
		var records []RawRecord
		if err := json.Unmarshal([]byte(Normalize(fragment)), &records); err == nil {
			return &ParsedResponse{Questions: records}, nil
		}
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, errors.New("no array fragment found")
	}
	fragment := Normalize(raw[start : end+1])

	var records []RawRecord
	if err := json.Unmarshal([]byte(fragment), &records); err != nil {
		return nil, err
	}
	return &ParsedResponse{Questions: records}, nil
}

// coerce maps the shapes a model actually produces onto the questions list:
// a bare array, an object with a questions key (array or single object), or
// a single question object.
func coerce(value interface{}) (*ParsedResponse, error) {
	switch v := value.(type) {
	case []interface{}:
		return &ParsedResponse{Questions: toRecords(v)}, nil
	case map[string]interface{}:
		if qs, ok := v["questions"]; ok {
			switch q := qs.(type) {
			case []interface{}:
				return &ParsedResponse{Questions: toRecords(q)}, nil
			case map[string]interface{}:
				return &ParsedResponse{Questions: []RawRecord{q}}, nil
			}
			return nil, errors.New("questions key has unusable type")
		}
		// A single record at the top level.
		return &ParsedResponse{Questions: []RawRecord{v}}, nil
	}
	return nil, errors.New("payload is neither object nor array")
}

func toRecords(items []interface{}) []RawRecord {
	records := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]interface{}); ok {
			records = append(records, rec)
		}
	}
	return records
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
