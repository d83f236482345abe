package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"practice-service/internal/llm"
	"practice-service/internal/models"
	"practice-service/internal/observability"
	"practice-service/internal/parser"
)

// GenerationService turns a practice topic into validated questions. The LLM
// client is injected; the service never constructs one itself.
type GenerationService struct {
	client llm.Client
	log    *logrus.Logger
}

func NewGenerationService(client llm.Client, log *logrus.Logger) *GenerationService {
	if log == nil {
		log = logrus.New()
	}
	return &GenerationService{client: client, log: log}
}

const generationSystemPrompt = `You are an interview question generator.
Respond with strictly valid JSON and nothing else.
Return an object with a "questions" key holding an array of the requested size.
Each question must have: id (string), title (string), content (string),
type (one of: coding, system-design, behavioral, conceptual),
difficulty (integer 1-10), category (string), hints (array of 3 strings,
progressively more revealing), solution (string), timeEstimate (minutes, integer),
tags (array of strings).
Do not include any text outside the JSON.`

// GenerateQuestions asks the model for questions on a topic and runs the
// response through the ingestion pipeline. It always returns a usable,
// non-empty question list: when the client fails or every parsing strategy
// is exhausted, a single synthetic fallback question is substituted so the
// user-facing flow never blocks on an ingestion failure.
func (s *GenerationService) GenerateQuestions(ctx context.Context, topic string, count int, defaults parser.Defaults) []models.Question {
	if count <= 0 {
		count = 1
	}

	if s.client == nil {
		s.log.Warn("no LLM client configured, using fallback question")
		return s.fallbackQuestions(topic, defaults)
	}

	userMessage := fmt.Sprintf("Generate %d interview practice questions about: %s", count, topic)
	raw, err := s.client.Complete(ctx, generationSystemPrompt, userMessage)
	if err != nil {
		s.log.WithError(err).WithField("topic", topic).Warn("LLM request failed, using fallback question")
		return s.fallbackQuestions(topic, defaults)
	}

	parsed, err := parser.Parse(raw)
	if err != nil {
		observability.ParseFallbacks.Inc()
		s.log.WithError(err).WithField("topic", topic).Warn("response unparseable, using fallback question")
		return s.fallbackQuestions(topic, defaults)
	}

	questions := parser.ValidateQuestions(parsed.Questions, defaults)
	if len(questions) == 0 {
		observability.ParseFallbacks.Inc()
		s.log.WithField("topic", topic).Warn("response parsed to zero questions, using fallback question")
		return s.fallbackQuestions(topic, defaults)
	}

	s.log.WithFields(logrus.Fields{
		"topic":     topic,
		"requested": count,
		"received":  len(questions),
	}).Info("questions generated")

	return questions
}

// fallbackQuestions synthesizes the single substitute question used when
// ingestion fails outright.
func (s *GenerationService) fallbackQuestions(topic string, defaults parser.Defaults) []models.Question {
	if topic == "" {
		topic = "software engineering"
	}
	now := time.Now()

	qType := defaults.Type
	if !models.ValidQuestionTypes[qType] {
		qType = models.TypeCoding
	}
	difficulty := defaults.Difficulty
	if difficulty <= 0 {
		difficulty = models.DefaultDifficulty
	}

	return []models.Question{{
		ID:         fmt.Sprintf("q-fallback-%d", now.UnixNano()),
		Title:      fmt.Sprintf("Discuss: %s", topic),
		Content:    fmt.Sprintf("Walk through how you would approach a realistic %s problem. Cover your assumptions, the trade-offs you would weigh, and how you would verify your solution.", topic),
		Type:       qType,
		Difficulty: difficulty,
		Category:   topic,
		Hints: []string{
			"Start by restating the problem in your own words and listing your assumptions.",
			"Break the problem into smaller parts and tackle the riskiest part first.",
			"Summarize your trade-offs and describe how you would test the result.",
		},
		Solution:     "There is no single correct answer; a strong response covers assumptions, trade-offs and verification.",
		TimeEstimate: models.DefaultTimeEstimate,
		Tags:         []string{"fallback"},
		Sections:     []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
}

const evaluationSystemPrompt = `You are an interview answer evaluator.
Respond with strictly valid JSON and nothing else.
Return an object: {"score": <integer 0-100>, "comments": "<short constructive feedback>"}.
Score the answer against the question and its reference solution.
Do not include any text outside the JSON.`

// EvaluateAnswer scores a submitted answer. A model failure degrades to a
// neutral deterministic score rather than an error, so submission is never
// blocked on evaluation.
func (s *GenerationService) EvaluateAnswer(ctx context.Context, question models.Question, answerText string) models.Feedback {
	fallback := models.Feedback{
		Score:    50,
		Comments: "Answer recorded. Automatic evaluation was unavailable; review the reference solution to self-assess.",
	}

	if s.client == nil {
		return fallback
	}

	userMessage := fmt.Sprintf(
		"Question: %s\n\n%s\n\nReference solution: %s\n\nCandidate answer: %s",
		question.Title, question.Content, question.Solution, answerText,
	)
	raw, err := s.client.Complete(ctx, evaluationSystemPrompt, userMessage)
	if err != nil {
		s.log.WithError(err).WithField("question_id", question.ID).Warn("evaluation request failed")
		return fallback
	}

	var fb struct {
		Score    float64 `json:"score"`
		Comments string  `json:"comments"`
	}
	payload := parser.Normalize(parser.ExtractPayload(raw))
	if err := json.Unmarshal([]byte(payload), &fb); err != nil {
		s.log.WithError(err).WithField("question_id", question.ID).Warn("evaluation response unparseable")
		return fallback
	}

	if fb.Score < 0 {
		fb.Score = 0
	}
	if fb.Score > 100 {
		fb.Score = 100
	}
	return models.Feedback{Score: fb.Score, Comments: strings.TrimSpace(fb.Comments)}
}
