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

// FolderHandler handles folder organization endpoints.
type FolderHandler struct {
	folderService *service.FolderService
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

func folderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFolderOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Create godoc
// POST /api/v1/folders
func (h *FolderHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateFolderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	folder, err := h.folderService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		folderError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"folder": folder})
}

// List godoc
// GET /api/v1/folders
func (h *FolderHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	folders, err := h.folderService.List(c.Request.Context(), claims.UserID)
	if err != nil {
		folderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"folders": folders})
}

// ListQuizzes godoc
// GET /api/v1/folders/:id/quizzes
func (h *FolderHandler) ListQuizzes(c *gin.Context) {
	claims := middleware.GetClaims(c)
	folderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	quizzes, err := h.folderService.ListQuizzes(c.Request.Context(), folderID, claims.UserID)
	if err != nil {
		folderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// Rename godoc
// PUT /api/v1/folders/:id
func (h *FolderHandler) Rename(c *gin.Context) {
	claims := middleware.GetClaims(c)
	folderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.RenameFolderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	folder, err := h.folderService.Rename(c.Request.Context(), folderID, claims.UserID, &req)
	if err != nil {
		folderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"folder": folder})
}

// Delete godoc
// DELETE /api/v1/folders/:id
func (h *FolderHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	folderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.folderService.Delete(c.Request.Context(), folderID, claims.UserID); err != nil {
		folderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
