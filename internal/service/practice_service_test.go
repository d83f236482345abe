package service

import (
	"context"
	"testing"

	"practice-service/internal/models"
	"practice-service/internal/storage"
)

func newTestPracticeService(client *fakeClient) *PracticeService {
	gen := NewGenerationService(client, nil)
	return NewPracticeService(gen, storage.NewMemoryStore(), nil, nil, nil, nil)
}

func startedSession(t *testing.T, svc *PracticeService) models.PracticeSession {
	t.Helper()
	snap, err := svc.StartSession(context.Background(), "user-1", "testing", 1, models.SessionSettings{})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return snap
}

func TestStartSessionReturnsActiveSnapshot(t *testing.T) {
	svc := newTestPracticeService(&fakeClient{err: context.DeadlineExceeded})

	snap := startedSession(t, svc)

	if snap.State != models.SessionActive {
		t.Errorf("state = %q, want %q", snap.State, models.SessionActive)
	}
	if len(snap.Questions) != 1 {
		t.Fatalf("questions = %d, want 1 fallback", len(snap.Questions))
	}
	if snap.ID == "" || snap.UserID != "user-1" {
		t.Errorf("snapshot identity = %q/%q", snap.ID, snap.UserID)
	}
}

func TestSubmitAnswerAttachesFeedback(t *testing.T) {
	client := &fakeClient{response: `{"score": 80, "comments": "good"}`}
	svc := newTestPracticeService(client)
	snap := startedSession(t, svc)
	ctx := context.Background()
	questionID := snap.Questions[0].ID

	accepted, fb, err := svc.SubmitAnswer(ctx, snap.ID, questionID, "my answer")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !accepted {
		t.Fatal("answer not accepted")
	}
	if fb == nil || fb.Score != 80 {
		t.Fatalf("feedback = %+v, want score 80", fb)
	}

	accepted, fb, err = svc.SubmitAnswer(ctx, snap.ID, questionID, "   ")
	if err != nil {
		t.Fatalf("SubmitAnswer empty: %v", err)
	}
	if accepted || fb != nil {
		t.Error("whitespace-only answer should be rejected without feedback")
	}
}

func TestRevealHintReportsPenalty(t *testing.T) {
	svc := newTestPracticeService(&fakeClient{err: context.DeadlineExceeded})
	snap := startedSession(t, svc)
	ctx := context.Background()
	questionID := snap.Questions[0].ID

	text, penalty, err := svc.RevealHint(ctx, snap.ID, questionID, 0)
	if err != nil {
		t.Fatalf("RevealHint: %v", err)
	}
	if text == "" {
		t.Error("hint text empty")
	}
	if penalty != 5 {
		t.Errorf("penalty = %d, want 5", penalty)
	}

	if _, _, err := svc.RevealHint(ctx, snap.ID, questionID, 9); err == nil {
		t.Error("expected error for out-of-range hint index")
	}
}

func TestCompleteSessionProducesResult(t *testing.T) {
	svc := newTestPracticeService(&fakeClient{response: `{"score": 90, "comments": "great"}`})
	snap := startedSession(t, svc)
	ctx := context.Background()

	if _, _, err := svc.SubmitAnswer(ctx, snap.ID, snap.Questions[0].ID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	result, err := svc.CompleteSession(ctx, snap.ID)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if result.CompletionType != models.CompletionManual {
		t.Errorf("completion type = %q, want %q", result.CompletionType, models.CompletionManual)
	}
	if result.Metrics.QuestionsCompleted != 1 {
		t.Errorf("questions completed = %d, want 1", result.Metrics.QuestionsCompleted)
	}

	if _, err := svc.CompleteSession(ctx, snap.ID); err == nil {
		t.Error("completing twice should fail")
	}
}

func TestUnknownSessionErrors(t *testing.T) {
	svc := newTestPracticeService(nil)

	if _, err := svc.GetSession(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown session")
	}
	if err := svc.NextQuestion(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestResetSessionForgetsEngine(t *testing.T) {
	svc := newTestPracticeService(&fakeClient{err: context.DeadlineExceeded})
	snap := startedSession(t, svc)
	ctx := context.Background()

	if err := svc.ResetSession(ctx, snap.ID); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	if _, err := svc.GetSession(ctx, snap.ID); err == nil {
		t.Error("session should be gone after reset")
	}
}
