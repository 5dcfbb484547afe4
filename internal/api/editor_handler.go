package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/service"
)

// EditorHandler serves the write endpoints of editable builds
type EditorHandler struct {
	editor service.Editor
	log    zerolog.Logger
}

// NewEditorHandler creates a new EditorHandler
func NewEditorHandler(services *service.Services, log zerolog.Logger) *EditorHandler {
	return &EditorHandler{
		editor: services.Editor,
		log:    log.With().Str("handler", "editor").Logger(),
	}
}

// create decodes a form and answers with the command result
func create[F any, R any](c *gin.Context, status int, run func(ctx context.Context, form F) (R, error)) {
	var form F
	if err := bindJSON(c, &form); err != nil {
		respondError(c, err)
		return
	}

	result, err := run(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, result)
}

// update decodes a form for the entity named by :id
func update[F any, R any](c *gin.Context, run func(ctx context.Context, id int64, form F) (R, error)) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var form F
	if err := bindJSON(c, &form); err != nil {
		respondError(c, err)
		return
	}

	result, err := run(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// remove runs a delete command for the entity named by :id
func remove[R any](c *gin.Context, run func(ctx context.Context, id int64) (R, error)) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := run(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateArticle handles POST /articles
func (h *EditorHandler) CreateArticle(c *gin.Context) {
	create(c, http.StatusCreated, h.editor.CreateArticle)
}

// UpdateArticle handles PATCH /articles/:id
func (h *EditorHandler) UpdateArticle(c *gin.Context) {
	update(c, h.editor.UpdateArticle)
}

// PublishArticle handles PATCH /articles/publish/:id
func (h *EditorHandler) PublishArticle(c *gin.Context) {
	update(c, h.editor.PublishArticle)
}

// DeleteArticle handles DELETE /articles/:id
func (h *EditorHandler) DeleteArticle(c *gin.Context) {
	remove(c, func(ctx context.Context, id int64) (models.StatusResponse, error) {
		if err := h.editor.DeleteArticle(ctx, id); err != nil {
			return models.StatusResponse{}, err
		}
		return models.StatusResponse{Status: "Success"}, nil
	})
}

// AddChapter handles POST /chapters
func (h *EditorHandler) AddChapter(c *gin.Context) {
	create(c, http.StatusCreated, h.editor.AddChapter)
}

// UpdateChapter handles PATCH /chapters/:id
func (h *EditorHandler) UpdateChapter(c *gin.Context) {
	update(c, h.editor.UpdateChapter)
}

// DeleteChapter handles DELETE /chapters/:id
func (h *EditorHandler) DeleteChapter(c *gin.Context) {
	remove(c, h.editor.DeleteChapter)
}

// AddContent handles POST /contents
func (h *EditorHandler) AddContent(c *gin.Context) {
	create(c, http.StatusCreated, h.editor.AddContent)
}

// UpdateContent handles PATCH /contents/:id
func (h *EditorHandler) UpdateContent(c *gin.Context) {
	update(c, h.editor.UpdateContent)
}

// DeleteContent handles DELETE /contents/:id
func (h *EditorHandler) DeleteContent(c *gin.Context) {
	remove(c, h.editor.DeleteContent)
}

// CreateTag handles POST /tags
func (h *EditorHandler) CreateTag(c *gin.Context) {
	create(c, http.StatusCreated, h.editor.CreateTag)
}

// CreateProject handles POST /projects
func (h *EditorHandler) CreateProject(c *gin.Context) {
	create(c, http.StatusCreated, h.editor.CreateProject)
}
