package parser

import "testing"

func TestExtractPayload(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{
			"bare object",
			`{"a": 1}`,
			`{"a": 1}`,
		},
		{
			"object with surrounding prose",
			`Here are your questions: {"a": 1} Hope that helps!`,
			`{"a": 1}`,
		},
		{
			"array with surrounding prose",
			`Sure! [1, 2, 3] done.`,
			`[1, 2, 3]`,
		},
		{
			"nested objects",
			`text {"a": {"b": {"c": 1}}} trailing`,
			`{"a": {"b": {"c": 1}}}`,
		},
		{
			"object containing arrays",
			`{"questions": [{"id": "1"}, {"id": "2"}]} extra`,
			`{"questions": [{"id": "1"}, {"id": "2"}]}`,
		},
		{
			"fenced with language tag",
			"Intro.\n```json\n{\"a\": 1}\n```\nOutro.",
			`{"a": 1}`,
		},
		{
			"fenced without language tag",
			"```\n[{\"id\": \"x\"}]\n```",
			`[{"id": "x"}]`,
		},
		{
			"no bracket at all",
			"just some prose",
			"just some prose",
		},
		{
			"unbalanced returns input unchanged",
			`{"a": {"b": 1}`,
			`{"a": {"b": 1}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := ExtractPayload(tc.in)
			if out != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, out)
			}
		})
	}
}
