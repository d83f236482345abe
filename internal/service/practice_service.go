package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"practice-service/internal/models"
	"practice-service/internal/observability"
	"practice-service/internal/parser"
	"practice-service/internal/repository"
	"practice-service/internal/session"
	"practice-service/internal/storage"
)

// PracticeService owns the live session engines and bridges them to
// generation, persistence and results. Engines are keyed by session id; a
// session missing from memory is restored from its persisted snapshot.
type PracticeService struct {
	mu      sync.RWMutex
	engines map[string]*session.Engine

	gen       *GenerationService
	drafts    storage.DraftStore
	sessions  *repository.SessionRepository
	results   *repository.ResultRepository
	questions *repository.QuestionRepository
	log       *logrus.Logger
}

// NewPracticeService wires the orchestrator. The repositories may be nil,
// in which case persistence is skipped; the draft store must not be.
func NewPracticeService(
	gen *GenerationService,
	drafts storage.DraftStore,
	sessions *repository.SessionRepository,
	results *repository.ResultRepository,
	questions *repository.QuestionRepository,
	log *logrus.Logger,
) *PracticeService {
	if log == nil {
		log = logrus.New()
	}
	return &PracticeService{
		engines:   make(map[string]*session.Engine),
		gen:       gen,
		drafts:    drafts,
		sessions:  sessions,
		results:   results,
		questions: questions,
		log:       log,
	}
}

// StartSession generates questions for the topic and starts a fresh engine.
func (s *PracticeService) StartSession(ctx context.Context, userID, topic string, count int, settings models.SessionSettings) (models.PracticeSession, error) {
	defaults := parser.Defaults{Type: settings.DefaultType, Difficulty: settings.DefaultDifficulty}
	questions := s.gen.GenerateQuestions(ctx, topic, count, defaults)

	if s.questions != nil {
		if err := s.questions.CreateMany(ctx, questions); err != nil {
			s.log.WithError(err).Warn("failed to archive generated questions")
		}
	}

	engine := session.NewEngine(uuid.NewString(), userID, s.drafts, s.log)
	engine.SetOnExpire(func(result models.PracticeResult) {
		s.finalizeResult(context.Background(), engine, result)
	})
	if err := engine.Start(questions, settings); err != nil {
		return models.PracticeSession{}, err
	}

	s.mu.Lock()
	s.engines[engine.ID()] = engine
	s.mu.Unlock()

	observability.SessionsStarted.Inc()
	s.persist(ctx, engine)

	return engine.Snapshot(), nil
}

// GetSession returns the current snapshot for a session.
func (s *PracticeService) GetSession(ctx context.Context, sessionID string) (models.PracticeSession, error) {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return models.PracticeSession{}, err
	}
	return engine.Snapshot(), nil
}

// GoToQuestion, NextQuestion and PreviousQuestion move the cursor;
// out-of-range targets are silently ignored by the engine.
func (s *PracticeService) GoToQuestion(ctx context.Context, sessionID string, index int) error {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return err
	}
	engine.GoToQuestion(index)
	s.persist(ctx, engine)
	return nil
}

func (s *PracticeService) NextQuestion(ctx context.Context, sessionID string) error {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return err
	}
	engine.NextQuestion()
	s.persist(ctx, engine)
	return nil
}

func (s *PracticeService) PreviousQuestion(ctx context.Context, sessionID string) error {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return err
	}
	engine.PreviousQuestion()
	s.persist(ctx, engine)
	return nil
}

// SubmitAnswer records the answer, evaluates it, and attaches the resulting
// feedback. Reports whether the answer was accepted.
func (s *PracticeService) SubmitAnswer(ctx context.Context, sessionID, questionID, text string) (bool, *models.Feedback, error) {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return false, nil, err
	}

	if !engine.SubmitAnswer(questionID, text) {
		return false, nil, nil
	}

	var feedback *models.Feedback
	for _, q := range engine.Questions() {
		if q.ID == questionID {
			fb := s.gen.EvaluateAnswer(ctx, q, text)
			engine.AttachFeedback(questionID, fb)
			feedback = &fb
			break
		}
	}

	s.persist(ctx, engine)
	return true, feedback, nil
}

// UpdateDraft records unsubmitted work; the engine schedules its own
// debounced auto-save.
func (s *PracticeService) UpdateDraft(ctx context.Context, sessionID, questionID, text string) error {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return err
	}
	engine.UpdateDraft(questionID, text)
	return nil
}

// AutoSave forces an immediate draft write, bypassing the debounce.
func (s *PracticeService) AutoSave(ctx context.Context, sessionID, questionID string) error {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return err
	}
	return engine.AutoSave(questionID)
}

// RevealHint exposes a hint level and returns its text plus the penalty
// charged by this call.
func (s *PracticeService) RevealHint(ctx context.Context, sessionID, questionID string, hintIndex int) (string, int, error) {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return "", 0, err
	}
	text, penalty, ok := engine.RevealHint(questionID, hintIndex)
	if !ok {
		return "", 0, fmt.Errorf("no hint at index %d for question %s", hintIndex, questionID)
	}
	observability.HintReveals.Inc()
	s.persist(ctx, engine)
	return text, penalty, nil
}

// CompleteSession finalizes the session and persists its result.
func (s *PracticeService) CompleteSession(ctx context.Context, sessionID string) (models.PracticeResult, error) {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return models.PracticeResult{}, err
	}

	result, ok := engine.Complete(models.CompletionManual)
	if !ok {
		return models.PracticeResult{}, fmt.Errorf("session %s is not active", sessionID)
	}

	s.finalizeResult(ctx, engine, result)
	return result, nil
}

// EndSession tears the engine down (cancels pending saves, stops the
// countdown) without completing it.
func (s *PracticeService) EndSession(ctx context.Context, sessionID string) error {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return err
	}
	engine.End()
	s.persist(ctx, engine)
	return nil
}

// ResetSession discards all session state back to idle.
func (s *PracticeService) ResetSession(ctx context.Context, sessionID string) error {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return err
	}
	engine.Reset()

	s.mu.Lock()
	delete(s.engines, sessionID)
	s.mu.Unlock()

	if s.sessions != nil {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to delete persisted session")
		}
	}
	return nil
}

// Progress reports the cursor position for a session.
func (s *PracticeService) Progress(ctx context.Context, sessionID string) (models.Progress, error) {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return models.Progress{}, err
	}
	return engine.Progress(), nil
}

// Metrics derives (or, for completed sessions, returns the frozen) metrics.
func (s *PracticeService) Metrics(ctx context.Context, sessionID string) (models.Metrics, error) {
	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return models.Metrics{}, err
	}
	return engine.CalculateMetrics(), nil
}

// ResultsByUser lists a user's completed session results.
func (s *PracticeService) ResultsByUser(ctx context.Context, userID string) ([]models.PracticeResult, error) {
	if s.results == nil {
		return nil, nil
	}
	return s.results.FindByUser(ctx, userID)
}

// engine returns the live engine for a session, restoring it from the
// persisted snapshot when the process has restarted since it was started.
func (s *PracticeService) engine(ctx context.Context, sessionID string) (*session.Engine, error) {
	s.mu.RLock()
	engine, ok := s.engines[sessionID]
	s.mu.RUnlock()
	if ok {
		return engine, nil
	}

	if s.sessions == nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	snap, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	engine = session.NewEngine(snap.ID, snap.UserID, s.drafts, s.log)
	engine.Restore(*snap)
	engine.SetOnExpire(func(result models.PracticeResult) {
		s.finalizeResult(context.Background(), engine, result)
	})

	s.mu.Lock()
	s.engines[sessionID] = engine
	s.mu.Unlock()

	return engine, nil
}

func (s *PracticeService) finalizeResult(ctx context.Context, engine *session.Engine, result models.PracticeResult) {
	observability.SessionsCompleted.WithLabelValues(result.CompletionType).Inc()

	if s.results != nil {
		if err := s.results.Create(ctx, &result); err != nil {
			s.log.WithError(err).WithField("session_id", result.SessionID).Error("failed to persist result")
		}
	}
	s.persist(ctx, engine)
}

func (s *PracticeService) persist(ctx context.Context, engine *session.Engine) {
	if s.sessions == nil {
		return
	}
	snap := engine.Snapshot()
	if err := s.sessions.Save(ctx, &snap); err != nil {
		s.log.WithError(err).WithField("session_id", snap.ID).Warn("failed to persist session snapshot")
	}
}
