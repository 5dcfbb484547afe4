package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/service"
)

// ReadHandler serves the public endpoints
type ReadHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewReadHandler creates a new ReadHandler
func NewReadHandler(services *service.Services, log zerolog.Logger) *ReadHandler {
	return &ReadHandler{
		services: services,
		log:      log.With().Str("handler", "read").Logger(),
	}
}

// ListArticles handles GET /articles
func (h *ReadHandler) ListArticles(c *gin.Context) {
	articles, err := h.services.Articles.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// GetArticle handles GET /articles/:id
func (h *ReadHandler) GetArticle(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	article, err := h.services.Articles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// ListProjects handles GET /projects
func (h *ReadHandler) ListProjects(c *gin.Context) {
	projects, err := h.services.Projects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject handles GET /projects/:id
func (h *ReadHandler) GetProject(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.services.Projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ResumeProjects handles GET /resume-projects
func (h *ReadHandler) ResumeProjects(c *gin.Context) {
	projects, err := h.services.Projects.Resume(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// ListTags handles GET /tags
func (h *ReadHandler) ListTags(c *gin.Context) {
	tags, err := h.services.Tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// ResultsForTag handles GET /tags/:label; an unknown label is an empty result
func (h *ReadHandler) ResultsForTag(c *gin.Context) {
	results, err := h.services.Tags.ResultsFor(c.Request.Context(), c.Param("label"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Search handles GET /search?text=
func (h *ReadHandler) Search(c *gin.Context) {
	results, err := h.services.Search.Search(c.Request.Context(), c.Query("text"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
