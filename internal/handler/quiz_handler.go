package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/quizzine/quizzine-backend/internal/middleware"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/quizzine/quizzine-backend/internal/response"
	"github.com/quizzine/quizzine-backend/internal/service"
	"github.com/quizzine/quizzine-backend/internal/validator"
)

// QuizHandler handles quiz authoring, sharing, and grants.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func quizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
	case errors.Is(err, service.ErrQuizAccess):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrInvalidCorrectOpt):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrGrantExists):
		response.Fail(c, http.StatusConflict, response.ErrGrantExists)
	case errors.Is(err, service.ErrShareCodeThrottled):
		response.Fail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Create godoc
// POST /api/v1/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// List godoc
// GET /api/v1/quizzes
func (h *QuizHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	page, perPage := pageParams(c)

	quizzes, total, err := h.quizService.ListByOwner(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		quizError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, paginationOf(page, perPage, total))
}

// Get godoc
// GET /api/v1/quizzes/:id
// Owners receive the full definition including answer keys; grant holders
// receive the answer-key-free projection.
func (h *QuizHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetForOwner(c.Request.Context(), quizID, claims.UserID)
	if err == nil {
		response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
		return
	}
	if !errors.Is(err, service.ErrNotQuizOwner) {
		quizError(c, err)
		return
	}

	payload, err := h.quizService.GetForViewer(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": payload})
}

// Update godoc
// PUT /api/v1/quizzes/:id
func (h *QuizHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), quizID, claims.UserID, &req)
	if err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/quizzes/:id
func (h *QuizHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quizID, claims.UserID); err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// RegenerateShareCode godoc
// POST /api/v1/quizzes/:id/share-code
func (h *QuizHandler) RegenerateShareCode(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	code, err := h.quizService.RegenerateShareCode(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"share_code": code})
}

// ResolveShareCode godoc
// GET /api/v1/share-codes/:code
// Maps a share code to the quiz it unlocks, without answer keys.
func (h *QuizHandler) ResolveShareCode(c *gin.Context) {
	claims := middleware.GetClaims(c)

	payload, err := h.quizService.ResolveShareCode(c.Request.Context(), claims.UserID, c.Param("code"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrInvalidShareCode)
			return
		}
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": payload})
}

// AddGrant godoc
// POST /api/v1/quizzes/:id/grants
func (h *QuizHandler) AddGrant(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.AddGrantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grant, err := h.quizService.AddGrant(c.Request.Context(), quizID, claims.UserID, &req)
	if err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"grant": grant})
}

// ListGrants godoc
// GET /api/v1/quizzes/:id/grants
func (h *QuizHandler) ListGrants(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	grants, err := h.quizService.ListGrants(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grants": grants})
}

// RemoveGrant godoc
// DELETE /api/v1/quizzes/:id/grants/:user_id
func (h *QuizHandler) RemoveGrant(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	granteeID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.quizService.RemoveGrant(c.Request.Context(), quizID, claims.UserID, granteeID); err != nil {
		quizError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
