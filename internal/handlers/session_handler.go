package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"practice-service/internal/models"
	"practice-service/internal/service"
)

type SessionHandler struct {
	Service *service.PracticeService
}

func NewSessionHandler(s *service.PracticeService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// StartSession generates questions for a topic and starts a practice session.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		Topic             string `json:"topic" binding:"required"`
		QuestionCount     int    `json:"questionCount"`
		TimeLimitSeconds  int    `json:"timeLimitSeconds"`
		DefaultType       string `json:"defaultType"`
		DefaultDifficulty int    `json:"defaultDifficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	// Guaranteed non-empty by the RequireUser middleware.
	userID := c.GetHeader("X-User-ID")

	settings := models.SessionSettings{
		TimeLimitSeconds:  req.TimeLimitSeconds,
		DefaultType:       req.DefaultType,
		DefaultDifficulty: req.DefaultDifficulty,
	}
	session, err := h.Service.StartSession(context.Background(), userID, req.Topic, req.QuestionCount, settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to start session",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession retrieves the current session snapshot.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	session, err := h.Service.GetSession(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GoToQuestion jumps the cursor to a specific question index.
func (h *SessionHandler) GoToQuestion(c *gin.Context) {
	id := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question index"})
		return
	}
	if err := h.Service.GoToQuestion(context.Background(), id, index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "moved"})
}

// NextQuestion advances the cursor by one.
func (h *SessionHandler) NextQuestion(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.NextQuestion(context.Background(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "moved"})
}

// PreviousQuestion moves the cursor back by one.
func (h *SessionHandler) PreviousQuestion(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.PreviousQuestion(context.Background(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "moved"})
}

// SubmitAnswer records and evaluates an answer.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		QuestionID string `json:"questionId" binding:"required"`
		Text       string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted, feedback, err := h.Service.SubmitAnswer(context.Background(), id, req.QuestionID, req.Text)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if !accepted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Answer was not accepted"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "answer submitted",
		"feedback": feedback,
	})
}

// UpdateDraft records in-progress answer text; saving is debounced.
func (h *SessionHandler) UpdateDraft(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		QuestionID string `json:"questionId" binding:"required"`
		Text       string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.UpdateDraft(context.Background(), id, req.QuestionID, req.Text); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft updated"})
}

// AutoSave flushes a draft to the store immediately.
func (h *SessionHandler) AutoSave(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		QuestionID string `json:"questionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.AutoSave(context.Background(), id, req.QuestionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save draft",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft saved"})
}

// RevealHint exposes the next hint level and reports the penalty charged.
func (h *SessionHandler) RevealHint(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		QuestionID string `json:"questionId" binding:"required"`
		HintIndex  int    `json:"hintIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, penalty, err := h.Service.RevealHint(context.Background(), id, req.QuestionID, req.HintIndex)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hint":    text,
		"penalty": penalty,
	})
}

// CompleteSession finalizes the session and returns the frozen result.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	id := c.Param("id")
	result, err := h.Service.CompleteSession(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// EndSession stops timers and pending saves without completing.
func (h *SessionHandler) EndSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.EndSession(context.Background(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session ended"})
}

// ResetSession discards all session state.
func (h *SessionHandler) ResetSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.ResetSession(context.Background(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session reset"})
}

// GetProgress reports the cursor position within the question list.
func (h *SessionHandler) GetProgress(c *gin.Context) {
	id := c.Param("id")
	progress, err := h.Service.Progress(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetMetrics reports the session's derived metrics.
func (h *SessionHandler) GetMetrics(c *gin.Context) {
	id := c.Param("id")
	metrics, err := h.Service.Metrics(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetResultsByUser lists a user's completed results.
func (h *SessionHandler) GetResultsByUser(c *gin.Context) {
	userID := c.Param("id")
	results, err := h.Service.ResultsByUser(context.Background(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}
