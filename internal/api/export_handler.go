package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// ExportArticles handles GET /export/articles?format=ndjson|json.
// Streams every assembled article, drafts included.
func (h *ExportHandler) ExportArticles(c *gin.Context) {
	format := c.DefaultQuery("format", service.FormatNDJSON)
	if format != service.FormatNDJSON && format != service.FormatJSON {
		respondError(c, apperr.ValidationWithDetails("unsupported format", map[string]string{
			"format": "must be one of: ndjson, json",
		}))
		return
	}

	c.Header("Content-Type", service.ExportContentType(format))
	c.Header("Content-Disposition", "attachment; filename=articles."+format)
	c.Status(http.StatusOK)

	count, err := h.services.Export.ExportArticles(c.Request.Context(), c.Writer, format)
	if err != nil {
		// Can't return error JSON after streaming has started
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Int("written", count).
			Msg("Export failed")
		return
	}
}
