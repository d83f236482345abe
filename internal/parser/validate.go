package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"practice-service/internal/models"
)

// Placeholder values substituted for missing or blank fields.
const (
	PlaceholderTitle    = "Practice Question"
	PlaceholderContent  = "Describe your approach to solving this problem."
	PlaceholderCategory = "general"
	PlaceholderSolution = "No solution provided."
)

// Defaults supplies the caller's preferred type and difficulty, used before
// the hard-coded fallbacks (coding, 5).
type Defaults struct {
	Type       string
	Difficulty int
}

// ValidateQuestions normalizes raw parsed records into well-formed questions.
// It is a total function over anything JSON-shaped: no input makes it fail,
// missing and invalid fields are silently repaired with defaults.
func ValidateQuestions(records []RawRecord, defaults Defaults) []models.Question {
	now := time.Now()
	questions := make([]models.Question, 0, len(records))

	for i, rec := range records {
		q := models.Question{
			ID:           stringField(rec, "id"),
			Title:        stringField(rec, "title"),
			Content:      stringField(rec, "content"),
			Category:     stringField(rec, "category"),
			Subcategory:  stringField(rec, "subcategory"),
			Solution:     stringField(rec, "solution"),
			Type:         coerceType(rec["type"], defaults.Type),
			Difficulty:   coerceDifficulty(rec["difficulty"], defaults.Difficulty),
			Hints:        stringSlice(rec["hints"]),
			Tags:         stringSlice(rec["tags"]),
			Sections:     stringSlice(rec["sections"]),
			Examples:     stringSlice(rec["examples"]),
			Constraints:  stringSlice(rec["constraints"]),
			TimeEstimate: intField(rec, "timeEstimate", models.DefaultTimeEstimate),
			CreatedAt:    timeField(rec, "createdAt", now),
			UpdatedAt:    timeField(rec, "updatedAt", now),
		}

		if q.ID == "" {
			q.ID = fmt.Sprintf("q-%d-%d", now.UnixNano(), i)
		}
		if q.Title == "" {
			q.Title = PlaceholderTitle
		}
		if q.Content == "" {
			q.Content = PlaceholderContent
		}
		if q.Category == "" {
			q.Category = PlaceholderCategory
		}
		if q.Solution == "" {
			q.Solution = PlaceholderSolution
		}

		questions = append(questions, q)
	}

	return questions
}

func coerceType(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && models.ValidQuestionTypes[strings.TrimSpace(s)] {
		return strings.TrimSpace(s)
	}
	if models.ValidQuestionTypes[fallback] {
		return fallback
	}
	return models.TypeCoding
}

func coerceDifficulty(v interface{}, fallback int) int {
	switch d := v.(type) {
	case float64:
		return int(d)
	case int:
		return d
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil {
			return n
		}
	}
	if fallback > 0 {
		return fallback
	}
	return models.DefaultDifficulty
}

func stringField(rec RawRecord, key string) string {
	if s, ok := rec[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func intField(rec RawRecord, key string, fallback int) int {
	switch n := rec[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if v, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return v
		}
	}
	return fallback
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case map[string]interface{}:
			// Some models emit {"text": "..."} objects instead of strings.
			if text, ok := s["text"].(string); ok {
				out = append(out, text)
			}
		}
	}
	return out
}

func timeField(rec RawRecord, key string, fallback time.Time) time.Time {
	if s, ok := rec[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return fallback
}
