package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/quizzine/quizzine-backend/internal/middleware"
	"github.com/quizzine/quizzine-backend/internal/response"
	"github.com/quizzine/quizzine-backend/internal/service"
	"github.com/quizzine/quizzine-backend/internal/session"
	"github.com/quizzine/quizzine-backend/internal/validator"
)

// SessionHandler drives live quiz sessions over HTTP. Every action returns
// the fresh snapshot so clients never need a follow-up read.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrSessionAlreadyActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)
	case errors.Is(err, service.ErrQuizAccess):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, session.ErrSessionSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionSubmitted)
	case errors.Is(err, session.ErrIllegalTransition):
		response.Fail(c, http.StatusConflict, response.ErrIllegalTransition)
	case errors.Is(err, session.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	case errors.Is(err, session.ErrInvalidPosition):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPosition)
	case errors.Is(err, session.ErrInvalidQuiz):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidQuiz)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// get resolves the live session for the authenticated caller.
func (h *SessionHandler) get(c *gin.Context) (*session.Session, bool) {
	claims := middleware.GetClaims(c)
	sessionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil, false
	}
	engine, err := h.sessionService.Get(sessionID, claims.UserID)
	if err != nil {
		sessionError(c, err)
		return nil, false
	}
	return engine, true
}

// Start godoc
// POST /api/v1/quizzes/:id/sessions
// Boots a live session against a quiz. Overrides and an optional share
// code travel in the body.
func (h *SessionHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	req := service.StartSessionRequest{}
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	engine, err := h.sessionService.Start(c.Request.Context(), claims.UserID, quizID, &req)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": engine.Snapshot()})
}

// Get godoc
// GET /api/v1/sessions/:id
// Returns the snapshot; reconnecting clients resume from here.
func (h *SessionHandler) Get(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": engine.Snapshot()})
}

// GetActive godoc
// GET /api/v1/sessions/active
// Resolves the caller's live session so a refreshed browser can resume.
func (h *SessionHandler) GetActive(c *gin.Context) {
	claims := middleware.GetClaims(c)
	engine, err := h.sessionService.Active(c.Request.Context(), claims.UserID)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": engine.Snapshot()})
}

type answerRequest struct {
	Option int `json:"option" binding:"min=0"`
}

// Answer godoc
// POST /api/v1/sessions/:id/answer
func (h *SessionHandler) Answer(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}

	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := engine.SelectAnswer(req.Option); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": engine.Snapshot()})
}

type markRequest struct {
	Marked bool `json:"marked"`
}

// Mark godoc
// POST /api/v1/sessions/:id/mark
func (h *SessionHandler) Mark(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}

	var req markRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := engine.SetMarkedForReview(req.Marked); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": engine.Snapshot()})
}

// Next godoc
// POST /api/v1/sessions/:id/next
// In per-item mode, Next on the last item finalizes and the response
// carries the attempt record instead of a live snapshot.
func (h *SessionHandler) Next(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}

	record, err := engine.Next()
	if err != nil {
		sessionError(c, err)
		return
	}
	if record != nil {
		response.Success(c, http.StatusOK, gin.H{"attempt": record})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": engine.Snapshot()})
}

// Previous godoc
// POST /api/v1/sessions/:id/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}

	if err := engine.Previous(); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": engine.Snapshot()})
}

type jumpRequest struct {
	Position int `json:"position" binding:"min=0"`
}

// Jump godoc
// POST /api/v1/sessions/:id/jump
func (h *SessionHandler) Jump(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}

	var req jumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := engine.JumpTo(req.Position); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": engine.Snapshot()})
}

// Submit godoc
// POST /api/v1/sessions/:id/submit
// Final submission from the reviewing phase.
func (h *SessionHandler) Submit(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}

	record, err := engine.FinalSubmit()
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": record})
}

// EndEarly godoc
// POST /api/v1/sessions/:id/end-early
// Submission from any position; unanswered items score as incorrect.
func (h *SessionHandler) EndEarly(c *gin.Context) {
	engine, ok := h.get(c)
	if !ok {
		return
	}

	record, err := engine.EndEarly()
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": record})
}

// Abandon godoc
// DELETE /api/v1/sessions/:id
// Discards the session without producing an attempt record.
func (h *SessionHandler) Abandon(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.Abandon(c.Request.Context(), sessionID, claims.UserID); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
