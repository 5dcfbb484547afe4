package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/apperr"
)

// respondError maps err to its HTTP status and writes {"error", "details"}.
// Expected failures log at WARN, the rest at ERROR.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	message, details := apperr.Public(err)

	log := zerolog.Ctx(c.Request.Context())
	event := log.Error()
	switch kind {
	case apperr.KindNotFound, apperr.KindValidation, apperr.KindConflict:
		event = log.Warn()
	}
	event.Err(err).
		Str("kind", kind.String()).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")

	body := gin.H{"error": message}
	if len(details) > 0 {
		body["details"] = details
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), body)
}

// idParam parses a positive integer path parameter
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s: %q", name, c.Param(name))
	}
	return id, nil
}

// bindJSON decodes the request body into form
func bindJSON(c *gin.Context, form any) error {
	if err := c.ShouldBindJSON(form); err != nil {
		return apperr.ValidationWithDetails("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}
