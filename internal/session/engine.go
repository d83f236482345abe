// Package session owns the practice session lifecycle: question navigation,
// answer and draft state, hint delegation, timing, and completion. All
// mutation is serialized through a single mutex per engine, so the debounce
// and timer goroutines never race UI-driven calls.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"practice-service/internal/hint"
	"practice-service/internal/metrics"
	"practice-service/internal/models"
	"practice-service/internal/storage"
)

// DraftKeyPrefix is the key namespace drafts are persisted under, one key per
// question: assessment_draft_<questionId>.
const DraftKeyPrefix = "assessment_draft_"

// DefaultAutoSaveDelay bounds write frequency to the draft store: a pending
// save is rescheduled on every edit and fires only after the edits go quiet.
const DefaultAutoSaveDelay = 2 * time.Second

const storeWriteTimeout = 5 * time.Second

// Engine is the finite-state session manager. It moves through idle, active
// and completed, and exclusively owns the session's answers and drafts.
type Engine struct {
	mu sync.Mutex

	id     string
	userID string
	state  string

	questions    []models.Question
	currentIndex int
	settings     models.SessionSettings

	answers     map[string]*models.Answer
	answerOrder []string
	drafts      map[string]*models.Draft
	hints       *hint.Engine

	startTime   time.Time
	remaining   int
	viewStarted time.Time
	timeSpent   map[string]int

	frozen models.Metrics

	store      storage.DraftStore
	log        *logrus.Logger
	now        func() time.Time
	saveDelay  time.Duration
	saveTimers map[string]*time.Timer
	tickStop   chan struct{}
	onExpire   func(models.PracticeResult)
}

func NewEngine(id, userID string, store storage.DraftStore, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		id:         id,
		userID:     userID,
		state:      models.SessionIdle,
		answers:    make(map[string]*models.Answer),
		drafts:     make(map[string]*models.Draft),
		timeSpent:  make(map[string]int),
		hints:      hint.NewEngine(),
		store:      store,
		log:        log,
		now:        time.Now,
		saveDelay:  DefaultAutoSaveDelay,
		saveTimers: make(map[string]*time.Timer),
	}
}

// SetOnExpire registers the callback invoked when the countdown reaches zero
// and the session completes itself.
func (e *Engine) SetOnExpire(fn func(models.PracticeResult)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onExpire = fn
}

func (e *Engine) ID() string     { return e.id }
func (e *Engine) UserID() string { return e.userID }

func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start transitions idle or completed to active. The question list is copied
// and immutable for the life of the session; an empty list is legal and
// yields a degenerate but completable session. A nil list is the one
// precondition violation that is an error rather than a no-op.
func (e *Engine) Start(questions []models.Question, settings models.SessionSettings) error {
	if questions == nil {
		return fmt.Errorf("cannot start session %s: questions list is nil", e.id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == models.SessionActive {
		return fmt.Errorf("session %s is already active", e.id)
	}

	e.stopTimersLocked()
	e.questions = make([]models.Question, len(questions))
	copy(e.questions, questions)
	e.currentIndex = 0
	e.settings = settings
	e.answers = make(map[string]*models.Answer)
	e.answerOrder = nil
	e.drafts = make(map[string]*models.Draft)
	e.timeSpent = make(map[string]int)
	e.hints.Reset()
	e.frozen = models.Metrics{}
	e.startTime = e.now()
	e.viewStarted = e.startTime
	e.remaining = settings.TimeLimitSeconds
	e.state = models.SessionActive

	if e.remaining > 0 {
		e.tickStop = make(chan struct{})
		go e.runTimer(e.tickStop)
	}

	e.log.WithFields(logrus.Fields{
		"session_id": e.id,
		"user_id":    e.userID,
		"questions":  len(e.questions),
		"time_limit": settings.TimeLimitSeconds,
	}).Info("session started")

	return nil
}

// GoToQuestion moves the cursor. Out-of-range targets and calls outside the
// active state are silent no-ops; navigation commands arrive unvalidated
// from the UI.
func (e *Engine) GoToQuestion(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != models.SessionActive {
		return
	}
	if index < 0 || index >= len(e.questions) {
		return
	}
	e.flushViewTimeLocked()
	e.currentIndex = index
}

func (e *Engine) NextQuestion()     { e.GoToQuestion(e.CurrentIndex() + 1) }
func (e *Engine) PreviousQuestion() { e.GoToQuestion(e.CurrentIndex() - 1) }

func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentIndex
}

// CurrentQuestion returns the question under the cursor.
func (e *Engine) CurrentQuestion() (models.Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.questions) == 0 || e.currentIndex >= len(e.questions) {
		return models.Question{}, false
	}
	return e.questions[e.currentIndex], true
}

func (e *Engine) Questions() []models.Question {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Question, len(e.questions))
	copy(out, e.questions)
	return out
}

// SubmitAnswer upserts the answer for a question, replacing any prior entry
// in place. Text that is empty after trimming is rejected as a no-op, as is
// any call outside the active state. Reports whether the answer was recorded.
func (e *Engine) SubmitAnswer(questionID, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != models.SessionActive {
		return false
	}
	if !e.hasQuestionLocked(questionID) {
		return false
	}

	e.flushViewTimeLocked()
	submitted := e.now()

	if existing, ok := e.answers[questionID]; ok {
		existing.Text = text
		existing.SubmittedAt = &submitted
		existing.TimeSpentSeconds = e.timeSpent[questionID]
	} else {
		e.answers[questionID] = &models.Answer{
			QuestionID:       questionID,
			Text:             text,
			SubmittedAt:      &submitted,
			TimeSpentSeconds: e.timeSpent[questionID],
		}
		e.answerOrder = append(e.answerOrder, questionID)
	}

	// The draft is promoted; drop it and its persisted copy.
	delete(e.drafts, questionID)
	e.cancelSaveTimerLocked(questionID)
	go e.deleteStoredDraft(questionID)

	return true
}

// AttachFeedback records the evaluation for an already submitted answer.
func (e *Engine) AttachFeedback(questionID string, fb models.Feedback) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != models.SessionActive {
		return false
	}
	answer, ok := e.answers[questionID]
	if !ok {
		return false
	}
	answer.Feedback = &fb
	return true
}

// UpdateDraft upserts the draft for a question and reschedules its debounced
// auto-save.
func (e *Engine) UpdateDraft(questionID, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != models.SessionActive {
		return
	}
	if !e.hasQuestionLocked(questionID) {
		return
	}

	d, ok := e.drafts[questionID]
	if !ok {
		d = &models.Draft{QuestionID: questionID}
		e.drafts[questionID] = d
	}
	d.Draft = text
	d.UpdatedAt = e.now()
	d.AutoSaved = false

	e.scheduleSaveLocked(questionID)
}

// AutoSave persists the current draft for a question to the external store
// under assessment_draft_<questionId> and flips the autoSaved flag. This is
// the only point where the engine talks to persistent storage. A write
// failure is logged and non-fatal; the in-memory draft stays authoritative.
func (e *Engine) AutoSave(questionID string) error {
	e.mu.Lock()
	d, ok := e.drafts[questionID]
	if !ok || e.store == nil {
		e.mu.Unlock()
		return nil
	}
	payload, err := json.Marshal(d)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal draft for %s: %w", questionID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()

	if err := e.store.Put(ctx, DraftKeyPrefix+questionID, payload); err != nil {
		e.log.WithFields(logrus.Fields{
			"session_id":  e.id,
			"question_id": questionID,
		}).WithError(err).Warn("draft auto-save failed, in-memory draft remains authoritative")
		return err
	}

	e.mu.Lock()
	if d, ok := e.drafts[questionID]; ok {
		d.AutoSaved = true
	}
	e.mu.Unlock()
	return nil
}

// Draft returns the current draft for a question.
func (e *Engine) Draft(questionID string) (models.Draft, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.drafts[questionID]
	if !ok {
		return models.Draft{}, false
	}
	return *d, true
}

// RevealHint exposes the hint at hintIndex (zero-based) for a question and
// charges its penalty at most once. Returns the hint text, the penalty
// charged by this call, and whether a hint exists at that index.
func (e *Engine) RevealHint(questionID string, hintIndex int) (string, int, bool) {
	e.mu.Lock()
	if e.state != models.SessionActive {
		e.mu.Unlock()
		return "", 0, false
	}

	var text string
	found := false
	for _, q := range e.questions {
		if q.ID == questionID {
			if hintIndex >= 0 && hintIndex < len(q.Hints) {
				text = q.Hints[hintIndex]
				found = true
			}
			break
		}
	}
	e.mu.Unlock()

	if !found {
		return "", 0, false
	}
	penalty := e.hints.Reveal(questionID, hintIndex)
	return text, penalty, true
}

// HintUsage returns the reveal record for a question.
func (e *Engine) HintUsage(questionID string) models.HintUsage {
	return e.hints.Usage(questionID)
}

// HintPenalty returns the session-wide penalty total.
func (e *Engine) HintPenalty() int {
	return e.hints.TotalPenalty()
}

// CalculateMetrics derives the metrics snapshot. Once the session completes
// the snapshot is frozen and no longer recomputed.
func (e *Engine) CalculateMetrics() models.Metrics {
	e.mu.Lock()
	if e.state == models.SessionCompleted {
		m := e.frozen
		e.mu.Unlock()
		return m
	}
	answers := e.answersLocked()
	e.mu.Unlock()

	return metrics.Calculate(answers, e.hints.TotalPenalty())
}

// Progress reports the cursor position over the question list.
func (e *Engine) Progress() models.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return metrics.Progress(e.currentIndex, len(e.questions))
}

// Answers returns the submitted answers in submission order.
func (e *Engine) Answers() []models.Answer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answersLocked()
}

// Complete transitions active to completed, freezing metrics and packaging
// the result. Completing an inactive session reports false.
func (e *Engine) Complete(completionType string) (models.PracticeResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completeLocked(completionType)
}

// End tears the engine down without changing lifecycle state: pending
// debounced saves are cancelled outright and the countdown stops. Used when
// the owning view goes away.
func (e *Engine) End() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimersLocked()
}

// Reset discards the session from any state back to idle, clearing every
// collection.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimersLocked()
	e.state = models.SessionIdle
	e.questions = nil
	e.currentIndex = 0
	e.answers = make(map[string]*models.Answer)
	e.answerOrder = nil
	e.drafts = make(map[string]*models.Draft)
	e.timeSpent = make(map[string]int)
	e.hints.Reset()
	e.frozen = models.Metrics{}
	e.remaining = 0
}

// RemainingSeconds reports the countdown value; 0 for untimed sessions.
func (e *Engine) RemainingSeconds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// Snapshot captures the full session state for persistence.
func (e *Engine) Snapshot() models.PracticeSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	drafts := make(map[string]models.Draft, len(e.drafts))
	for id, d := range e.drafts {
		drafts[id] = *d
	}

	return models.PracticeSession{
		ID:               e.id,
		UserID:           e.userID,
		Questions:        append([]models.Question(nil), e.questions...),
		CurrentIndex:     e.currentIndex,
		State:            e.state,
		StartTime:        e.startTime,
		RemainingSeconds: e.remaining,
		Settings:         e.settings,
		Answers:          e.answersLocked(),
		Drafts:           drafts,
		Hints:            e.hints.Snapshot(),
		Metrics:          e.frozen,
	}
}

// Restore rebuilds engine state from a persisted snapshot. A restored active
// session resumes its countdown.
func (e *Engine) Restore(snap models.PracticeSession) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimersLocked()
	e.id = snap.ID
	e.userID = snap.UserID
	e.questions = append([]models.Question(nil), snap.Questions...)
	e.currentIndex = snap.CurrentIndex
	e.state = snap.State
	e.startTime = snap.StartTime
	e.remaining = snap.RemainingSeconds
	e.settings = snap.Settings
	e.frozen = snap.Metrics
	e.viewStarted = e.now()

	e.answers = make(map[string]*models.Answer, len(snap.Answers))
	e.answerOrder = make([]string, 0, len(snap.Answers))
	for i := range snap.Answers {
		a := snap.Answers[i]
		e.answers[a.QuestionID] = &a
		e.answerOrder = append(e.answerOrder, a.QuestionID)
	}

	e.drafts = make(map[string]*models.Draft, len(snap.Drafts))
	for id, d := range snap.Drafts {
		copied := d
		e.drafts[id] = &copied
	}

	e.timeSpent = make(map[string]int)
	for _, a := range snap.Answers {
		e.timeSpent[a.QuestionID] = a.TimeSpentSeconds
	}

	e.hints.Restore(snap.Hints)

	if e.state == models.SessionActive && e.remaining > 0 {
		e.tickStop = make(chan struct{})
		go e.runTimer(e.tickStop)
	}
}

// --- internals, called with e.mu held unless noted ---

func (e *Engine) completeLocked(completionType string) (models.PracticeResult, bool) {
	if e.state != models.SessionActive {
		return models.PracticeResult{}, false
	}

	e.flushViewTimeLocked()
	e.stopTimersLocked()
	e.state = models.SessionCompleted
	e.frozen = metrics.Calculate(e.answersLocked(), e.hints.TotalPenalty())

	result := models.PracticeResult{
		SessionID:      e.id,
		UserID:         e.userID,
		Metrics:        e.frozen,
		HintPenalty:    e.hints.TotalPenalty(),
		QuestionCount:  len(e.questions),
		CompletionType: completionType,
		CompletedAt:    e.now(),
	}

	e.log.WithFields(logrus.Fields{
		"session_id":      e.id,
		"user_id":         e.userID,
		"completion_type": completionType,
		"accuracy":        result.Metrics.Accuracy,
	}).Info("session completed")

	return result, true
}

func (e *Engine) answersLocked() []models.Answer {
	out := make([]models.Answer, 0, len(e.answerOrder))
	for _, id := range e.answerOrder {
		if a, ok := e.answers[id]; ok {
			out = append(out, *a)
		}
	}
	return out
}

func (e *Engine) hasQuestionLocked(questionID string) bool {
	for _, q := range e.questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

func (e *Engine) flushViewTimeLocked() {
	if len(e.questions) == 0 || e.currentIndex >= len(e.questions) {
		return
	}
	nowT := e.now()
	elapsed := int(nowT.Sub(e.viewStarted).Seconds())
	if elapsed > 0 {
		e.timeSpent[e.questions[e.currentIndex].ID] += elapsed
	}
	e.viewStarted = nowT
}

func (e *Engine) scheduleSaveLocked(questionID string) {
	if t, ok := e.saveTimers[questionID]; ok {
		t.Stop()
	}
	e.saveTimers[questionID] = time.AfterFunc(e.saveDelay, func() {
		// Errors are already logged inside AutoSave; nothing else to do here.
		_ = e.AutoSave(questionID)
	})
}

func (e *Engine) cancelSaveTimerLocked(questionID string) {
	if t, ok := e.saveTimers[questionID]; ok {
		t.Stop()
		delete(e.saveTimers, questionID)
	}
}

func (e *Engine) stopTimersLocked() {
	for id, t := range e.saveTimers {
		t.Stop()
		delete(e.saveTimers, id)
	}
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
}

func (e *Engine) deleteStoredDraft(questionID string) {
	if e.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()
	if err := e.store.Delete(ctx, DraftKeyPrefix+questionID); err != nil {
		e.log.WithError(err).WithField("question_id", questionID).
			Debug("failed to delete promoted draft from store")
	}
}

// runTimer decrements the countdown once per second until the session leaves
// the active state or the stop channel closes. It must never keep mutating a
// completed or idle session, so every tick rechecks state under the lock.
func (e *Engine) runTimer(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.state != models.SessionActive {
				e.mu.Unlock()
				return
			}
			e.remaining--
			if e.remaining > 0 {
				e.mu.Unlock()
				continue
			}
			e.remaining = 0
			result, ok := e.completeLocked(models.CompletionTimeout)
			onExpire := e.onExpire
			e.mu.Unlock()
			if ok && onExpire != nil {
				onExpire(result)
			}
			return
		}
	}
}
