package session

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"practice-service/internal/models"
	"practice-service/internal/storage"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testQuestions(n int) []models.Question {
	qs := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, models.Question{
			ID:      "q" + string(rune('1'+i)),
			Title:   "Question",
			Content: "Content",
			Type:    models.TypeCoding,
			Hints:   []string{"first hint", "second hint", "third hint"},
		})
	}
	return qs
}

func newTestEngine(t *testing.T, n int) (*Engine, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	e := NewEngine("sess-1", "user-1", store, testLogger())
	if err := e.Start(testQuestions(n), models.SessionSettings{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return e, store
}

func TestStartResetsState(t *testing.T) {
	e, _ := newTestEngine(t, 3)

	if e.State() != models.SessionActive {
		t.Errorf("Expected active state, got %q", e.State())
	}
	if e.CurrentIndex() != 0 {
		t.Errorf("Expected index 0, got %d", e.CurrentIndex())
	}

	e.SubmitAnswer("q1", "answer text")
	result, ok := e.Complete(models.CompletionManual)
	if !ok {
		t.Fatal("Complete failed")
	}
	if result.SessionID != "sess-1" {
		t.Errorf("Unexpected session id %q", result.SessionID)
	}

	// Completed -> Active again clears collections.
	if err := e.Start(testQuestions(2), models.SessionSettings{}); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if len(e.Answers()) != 0 {
		t.Errorf("Expected answers cleared on restart, got %d", len(e.Answers()))
	}
}

func TestStartRejectsNilQuestions(t *testing.T) {
	e := NewEngine("sess-nil", "user-1", storage.NewMemoryStore(), testLogger())
	if err := e.Start(nil, models.SessionSettings{}); err == nil {
		t.Error("Expected error for nil questions")
	}
}

func TestStartEmptyListIsLegal(t *testing.T) {
	e := NewEngine("sess-empty", "user-1", storage.NewMemoryStore(), testLogger())
	if err := e.Start([]models.Question{}, models.SessionSettings{}); err != nil {
		t.Fatalf("Empty list should be legal: %v", err)
	}
	if _, ok := e.Complete(models.CompletionManual); !ok {
		t.Error("Degenerate session should still complete")
	}
}

func TestNavigationBoundsAreNoOps(t *testing.T) {
	e, _ := newTestEngine(t, 3)

	e.GoToQuestion(-1)
	if e.CurrentIndex() != 0 {
		t.Errorf("goToQuestion(-1) changed index to %d", e.CurrentIndex())
	}

	e.GoToQuestion(3)
	if e.CurrentIndex() != 0 {
		t.Errorf("goToQuestion(length) changed index to %d", e.CurrentIndex())
	}

	e.PreviousQuestion()
	if e.CurrentIndex() != 0 {
		t.Errorf("previousQuestion at index 0 changed index to %d", e.CurrentIndex())
	}

	e.NextQuestion()
	e.NextQuestion()
	if e.CurrentIndex() != 2 {
		t.Errorf("Expected index 2, got %d", e.CurrentIndex())
	}

	e.NextQuestion()
	if e.CurrentIndex() != 2 {
		t.Errorf("nextQuestion at last index changed index to %d", e.CurrentIndex())
	}
}

func TestSubmitAnswerUpsert(t *testing.T) {
	e, _ := newTestEngine(t, 3)

	if !e.SubmitAnswer("q1", "first version") {
		t.Fatal("Submit rejected")
	}
	e.SubmitAnswer("q2", "other answer")

	// Resubmitting q1 replaces in place, preserving position.
	if !e.SubmitAnswer("q1", "second version") {
		t.Fatal("Resubmit rejected")
	}

	answers := e.Answers()
	if len(answers) != 2 {
		t.Fatalf("Expected 2 answers, got %d", len(answers))
	}
	if answers[0].QuestionID != "q1" || answers[0].Text != "second version" {
		t.Errorf("Expected q1 replaced in place, got %+v", answers[0])
	}
	if answers[0].SubmittedAt == nil {
		t.Error("Expected submission timestamp")
	}
}

func TestSubmitAnswerRejectsEmpty(t *testing.T) {
	e, _ := newTestEngine(t, 1)

	if e.SubmitAnswer("q1", "   \n\t ") {
		t.Error("Expected whitespace-only answer to be rejected")
	}
	if len(e.Answers()) != 0 {
		t.Errorf("Expected no answers, got %d", len(e.Answers()))
	}
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	if e.SubmitAnswer("nope", "text") {
		t.Error("Expected submit for unknown question to be rejected")
	}
}

func TestDraftAutoSave(t *testing.T) {
	e, store := newTestEngine(t, 2)

	e.UpdateDraft("q1", "work in progress")
	d, ok := e.Draft("q1")
	if !ok {
		t.Fatal("Expected draft to exist")
	}
	if d.AutoSaved {
		t.Error("Draft should not be flagged auto-saved before the write")
	}

	if err := e.AutoSave("q1"); err != nil {
		t.Fatalf("AutoSave failed: %v", err)
	}

	d, _ = e.Draft("q1")
	if !d.AutoSaved {
		t.Error("Expected autoSaved flag after AutoSave")
	}

	data, err := store.Get(context.Background(), DraftKeyPrefix+"q1")
	if err != nil {
		t.Fatalf("Expected persisted draft under %sq1: %v", DraftKeyPrefix, err)
	}
	var persisted models.Draft
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("Persisted draft is not valid JSON: %v", err)
	}
	if persisted.QuestionID != "q1" || persisted.Draft != "work in progress" {
		t.Errorf("Persisted draft mismatch: %+v", persisted)
	}
}

func TestDraftPromotedOnSubmit(t *testing.T) {
	e, _ := newTestEngine(t, 1)

	e.UpdateDraft("q1", "draft text")
	e.SubmitAnswer("q1", "draft text")

	if _, ok := e.Draft("q1"); ok {
		t.Error("Expected draft removed after promotion to answer")
	}
	answers := e.Answers()
	if len(answers) != 1 || answers[0].Text != "draft text" {
		t.Errorf("Expected promoted answer, got %v", answers)
	}
}

func TestDebouncedAutoSave(t *testing.T) {
	e, store := newTestEngine(t, 1)
	e.saveDelay = 20 * time.Millisecond

	e.UpdateDraft("q1", "v1")
	e.UpdateDraft("q1", "v2")
	e.UpdateDraft("q1", "v3")

	time.Sleep(100 * time.Millisecond)

	data, err := store.Get(context.Background(), DraftKeyPrefix+"q1")
	if err != nil {
		t.Fatalf("Expected debounced write to land: %v", err)
	}
	var persisted models.Draft
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("Invalid persisted draft: %v", err)
	}
	if persisted.Draft != "v3" {
		t.Errorf("Expected last edit persisted, got %q", persisted.Draft)
	}
}

func TestCompleteFreezesSession(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	e.SubmitAnswer("q1", "answer")
	e.AttachFeedback("q1", models.Feedback{Score: 80})

	result, ok := e.Complete(models.CompletionManual)
	if !ok {
		t.Fatal("Complete failed")
	}
	if result.Metrics.QuestionsCompleted != 1 {
		t.Errorf("Expected 1 completed in result, got %d", result.Metrics.QuestionsCompleted)
	}

	// Mutations after completion are rejected.
	if e.SubmitAnswer("q2", "late answer") {
		t.Error("Expected submit after completion to be rejected")
	}
	e.GoToQuestion(1)
	if e.CurrentIndex() != 0 {
		t.Error("Expected navigation after completion to be a no-op")
	}
	if _, _, ok := e.RevealHint("q2", 0); ok {
		t.Error("Expected hint reveal after completion to be rejected")
	}

	// Metrics stay frozen.
	frozen := e.CalculateMetrics()
	if frozen.QuestionsCompleted != 1 {
		t.Errorf("Expected frozen metrics, got %+v", frozen)
	}

	if _, ok := e.Complete(models.CompletionManual); ok {
		t.Error("Expected second Complete to report false")
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	e.SubmitAnswer("q1", "answer")
	e.UpdateDraft("q2", "draft")
	e.RevealHint("q1", 0)

	e.Reset()

	if e.State() != models.SessionIdle {
		t.Errorf("Expected idle after reset, got %q", e.State())
	}
	if len(e.Answers()) != 0 {
		t.Error("Expected answers cleared")
	}
	if _, ok := e.Draft("q2"); ok {
		t.Error("Expected drafts cleared")
	}
	if e.HintPenalty() != 0 {
		t.Errorf("Expected hint penalty cleared, got %d", e.HintPenalty())
	}
}

func TestRevealHintThroughEngine(t *testing.T) {
	e, _ := newTestEngine(t, 1)

	text, penalty, ok := e.RevealHint("q1", 0)
	if !ok {
		t.Fatal("Expected hint reveal to succeed")
	}
	if text != "first hint" {
		t.Errorf("Expected hint text, got %q", text)
	}
	if penalty != 5 {
		t.Errorf("Expected penalty 5, got %d", penalty)
	}

	// Duplicate reveal returns the text but charges nothing.
	_, penalty, ok = e.RevealHint("q1", 0)
	if !ok || penalty != 0 {
		t.Errorf("Expected idempotent reveal with 0 penalty, got ok=%v penalty=%d", ok, penalty)
	}
	if e.HintPenalty() != 5 {
		t.Errorf("Expected total penalty 5, got %d", e.HintPenalty())
	}

	if _, _, ok := e.RevealHint("q1", 7); ok {
		t.Error("Expected reveal of nonexistent hint index to report false")
	}
}

func TestProgressOnFreshSession(t *testing.T) {
	e, _ := newTestEngine(t, 5)

	p := e.Progress()
	if p.Current != 1 || p.Total != 5 {
		t.Errorf("Expected 1/5, got %d/%d", p.Current, p.Total)
	}
	if math.Abs(p.Percentage-20) > 0.001 {
		t.Errorf("Expected 20%%, got %.2f", p.Percentage)
	}
}

func TestMetricsScenario(t *testing.T) {
	e, _ := newTestEngine(t, 3)

	e.SubmitAnswer("q1", "a1")
	e.AttachFeedback("q1", models.Feedback{Score: 90})
	e.SubmitAnswer("q2", "a2")
	e.AttachFeedback("q2", models.Feedback{Score: 70})
	e.SubmitAnswer("q3", "a3")
	e.AttachFeedback("q3", models.Feedback{Score: 50})

	e.RevealHint("q2", 0) // level 1, penalty 5

	m := e.CalculateMetrics()
	if m.QuestionsCompleted != 3 {
		t.Errorf("Expected 3 completed, got %d", m.QuestionsCompleted)
	}
	expected := (90.0 + 70.0 + 50.0 - 5.0) / 3.0 * 10.0
	if math.Abs(m.Accuracy-expected) > 0.01 {
		t.Errorf("Expected accuracy %.2f, got %.2f", expected, m.Accuracy)
	}
}

func TestTimerExpiryCompletesSession(t *testing.T) {
	store := storage.NewMemoryStore()
	e := NewEngine("sess-timed", "user-1", store, testLogger())

	done := make(chan models.PracticeResult, 1)
	e.SetOnExpire(func(r models.PracticeResult) { done <- r })

	err := e.Start(testQuestions(1), models.SessionSettings{TimeLimitSeconds: 1})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case r := <-done:
		if r.CompletionType != models.CompletionTimeout {
			t.Errorf("Expected timeout completion, got %q", r.CompletionType)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timer never expired")
	}

	if e.State() != models.SessionCompleted {
		t.Errorf("Expected completed state after expiry, got %q", e.State())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e, store := newTestEngine(t, 3)

	e.SubmitAnswer("q1", "answer one")
	e.AttachFeedback("q1", models.Feedback{Score: 60})
	e.UpdateDraft("q2", "in progress")
	e.RevealHint("q1", 1)
	e.GoToQuestion(1)

	snap := e.Snapshot()

	restored := NewEngine("", "", store, testLogger())
	restored.Restore(snap)

	if restored.ID() != "sess-1" || restored.UserID() != "user-1" {
		t.Errorf("Identity not restored: %s/%s", restored.ID(), restored.UserID())
	}
	if restored.State() != models.SessionActive {
		t.Errorf("Expected active state, got %q", restored.State())
	}
	if restored.CurrentIndex() != 1 {
		t.Errorf("Expected index 1, got %d", restored.CurrentIndex())
	}
	if len(restored.Answers()) != 1 {
		t.Fatalf("Expected 1 answer, got %d", len(restored.Answers()))
	}
	if restored.HintPenalty() != 10 {
		t.Errorf("Expected hint penalty 10, got %d", restored.HintPenalty())
	}
	if d, ok := restored.Draft("q2"); !ok || d.Draft != "in progress" {
		t.Errorf("Draft not restored: %+v", d)
	}
}
