package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"practice-service/internal/models"
	"practice-service/internal/parser"
)

type fakeClient struct {
	response string
	err      error
	lastUser string
}

func (f *fakeClient) Complete(_ context.Context, _, userMessage string) (string, error) {
	f.lastUser = userMessage
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestGenerateQuestionsParsesFencedResponse(t *testing.T) {
	client := &fakeClient{response: "Here you go:\n```json\n{\"questions\": [" +
		"{\"id\": \"gen-1\", \"title\": \"Reverse a linked list\", \"content\": \"Implement it in place.\", " +
		"\"type\": \"coding\", \"difficulty\": 4, \"category\": \"data-structures\", " +
		"\"hints\": [\"think about pointers\", \"track the previous node\", \"handle the head\"], " +
		"\"solution\": \"Iterate, rewiring next pointers.\", \"timeEstimate\": 20}," +
		"{\"id\": \"gen-2\", \"title\": \"Design a URL shortener\", \"content\": \"Sketch the system.\", " +
		"\"type\": \"system-design\", \"difficulty\": 6, \"category\": \"system-design\"}" +
		"]}\n```"}
	svc := NewGenerationService(client, nil)

	questions := svc.GenerateQuestions(context.Background(), "algorithms", 2, parser.Defaults{})

	if len(questions) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(questions))
	}
	if questions[0].ID != "gen-1" || questions[0].Title != "Reverse a linked list" {
		t.Errorf("first question = %q/%q, want gen-1/Reverse a linked list", questions[0].ID, questions[0].Title)
	}
	if questions[1].Type != models.TypeSystemDesign {
		t.Errorf("second question type = %q, want %q", questions[1].Type, models.TypeSystemDesign)
	}
	if !strings.Contains(client.lastUser, "algorithms") {
		t.Errorf("user message %q does not mention the topic", client.lastUser)
	}
}

func TestGenerateQuestionsFallsBackOnGarbage(t *testing.T) {
	client := &fakeClient{response: "I'm sorry, I can't produce JSON right now."}
	svc := NewGenerationService(client, nil)

	questions := svc.GenerateQuestions(context.Background(), "databases", 3, parser.Defaults{})

	if len(questions) != 1 {
		t.Fatalf("len(questions) = %d, want 1 fallback question", len(questions))
	}
	q := questions[0]
	if !strings.HasPrefix(q.ID, "q-fallback-") {
		t.Errorf("fallback id = %q, want q-fallback- prefix", q.ID)
	}
	if !strings.Contains(q.Title, "databases") {
		t.Errorf("fallback title = %q, want topic mention", q.Title)
	}
	if len(q.Hints) != 3 {
		t.Errorf("fallback hints = %d, want 3", len(q.Hints))
	}
}

func TestGenerateQuestionsFallsBackOnClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	svc := NewGenerationService(client, nil)

	questions := svc.GenerateQuestions(context.Background(), "", 1, parser.Defaults{Type: models.TypeBehavioral, Difficulty: 7})

	if len(questions) != 1 {
		t.Fatalf("len(questions) = %d, want 1", len(questions))
	}
	if questions[0].Type != models.TypeBehavioral {
		t.Errorf("fallback type = %q, want defaults applied", questions[0].Type)
	}
	if questions[0].Difficulty != 7 {
		t.Errorf("fallback difficulty = %d, want 7", questions[0].Difficulty)
	}
}

func TestGenerateQuestionsWithoutClient(t *testing.T) {
	svc := NewGenerationService(nil, nil)

	questions := svc.GenerateQuestions(context.Background(), "testing", 5, parser.Defaults{})

	if len(questions) != 1 {
		t.Fatalf("len(questions) = %d, want 1", len(questions))
	}
}

func TestEvaluateAnswerParsesScore(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"score\": 85, \"comments\": \"Solid reasoning, missed one edge case.\"}\n```"}
	svc := NewGenerationService(client, nil)

	fb := svc.EvaluateAnswer(context.Background(), models.Question{ID: "q1", Title: "t"}, "my answer")

	if fb.Score != 85 {
		t.Errorf("score = %v, want 85", fb.Score)
	}
	if fb.Comments != "Solid reasoning, missed one edge case." {
		t.Errorf("comments = %q", fb.Comments)
	}
}

func TestEvaluateAnswerClampsScore(t *testing.T) {
	client := &fakeClient{response: `{"score": 140, "comments": "over-enthusiastic"}`}
	svc := NewGenerationService(client, nil)

	fb := svc.EvaluateAnswer(context.Background(), models.Question{ID: "q1"}, "answer")

	if fb.Score != 100 {
		t.Errorf("score = %v, want clamped to 100", fb.Score)
	}
}

func TestEvaluateAnswerFallsBack(t *testing.T) {
	for name, client := range map[string]*fakeClient{
		"client error": {err: errors.New("timeout")},
		"garbage":      {response: "no json here"},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewGenerationService(client, nil)
			fb := svc.EvaluateAnswer(context.Background(), models.Question{ID: "q1"}, "answer")
			if fb.Score != 50 {
				t.Errorf("fallback score = %v, want 50", fb.Score)
			}
			if fb.Comments == "" {
				t.Error("fallback comments empty")
			}
		})
	}
}
