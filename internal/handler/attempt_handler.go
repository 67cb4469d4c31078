package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/quizzine/quizzine-backend/internal/middleware"
	"github.com/quizzine/quizzine-backend/internal/response"
	"github.com/quizzine/quizzine-backend/internal/service"
)

// AttemptHandler exposes completed attempt records.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

func attemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAttemptOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Get godoc
// GET /api/v1/attempts/:id
func (h *AttemptHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		attemptError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// ListMine godoc
// GET /api/v1/attempts
func (h *AttemptHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	page, perPage := pageParams(c)

	attempts, total, err := h.attemptService.ListMine(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		attemptError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, paginationOf(page, perPage, total))
}

// ListForQuiz godoc
// GET /api/v1/quizzes/:id/attempts
func (h *AttemptHandler) ListForQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	page, perPage := pageParams(c)

	results, total, err := h.attemptService.ListForQuiz(c.Request.Context(), quizID, claims.UserID, page, perPage)
	if err != nil {
		attemptError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, paginationOf(page, perPage, total))
}
