package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/config"
	"github.com/guimauveb/guimauve.io/internal/service"
)

// RequestIDHeader carries the request correlation id
const RequestIDHeader = "X-Request-ID"

// NewRouter creates and configures the Gin router.
// Write routes are only registered when services.Editor is set.
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware(log))
	router.Use(recoveryMiddleware())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware(cfg.Server.CORSAllowedOrigins))

	readHandler := NewReadHandler(services, log)

	router.GET("/health", healthCheck(cfg))
	router.GET("/metrics", metricsHandler(services))

	if cfg.Server.MediaDir != "" {
		router.Static("/media", cfg.Server.MediaDir)
	}

	router.GET("/articles", readHandler.ListArticles)
	router.GET("/articles/:id", readHandler.GetArticle)
	router.GET("/projects", readHandler.ListProjects)
	router.GET("/projects/:id", readHandler.GetProject)
	router.GET("/resume-projects", readHandler.ResumeProjects)
	router.GET("/tags", readHandler.ListTags)
	router.GET("/tags/:label", readHandler.ResultsForTag)
	router.GET("/search", readHandler.Search)

	if services.Editor != nil {
		registerEditorRoutes(router, services, log)
	}

	return router
}

func registerEditorRoutes(router *gin.Engine, services *service.Services, log zerolog.Logger) {
	editorHandler := NewEditorHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	articles := router.Group("/articles")
	{
		articles.POST("", editorHandler.CreateArticle)
		articles.PATCH("/:id", editorHandler.UpdateArticle)
		articles.PATCH("/publish/:id", editorHandler.PublishArticle)
		articles.DELETE("/:id", editorHandler.DeleteArticle)
	}

	chapters := router.Group("/chapters")
	{
		chapters.POST("", editorHandler.AddChapter)
		chapters.PATCH("/:id", editorHandler.UpdateChapter)
		chapters.DELETE("/:id", editorHandler.DeleteChapter)
	}

	contents := router.Group("/contents")
	{
		contents.POST("", editorHandler.AddContent)
		contents.PATCH("/:id", editorHandler.UpdateContent)
		contents.DELETE("/:id", editorHandler.DeleteContent)
	}

	router.POST("/tags", editorHandler.CreateTag)
	router.POST("/projects", editorHandler.CreateProject)
	router.GET("/export/articles", exportHandler.ExportArticles)
}

// healthCheck returns the health status
func healthCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "guimauve-api",
			"editable":  cfg.Editable,
		})
	}
}

// metricsHandler returns entity counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.Stats.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  stats,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// requestIDMiddleware tags the request with an id and stores a request-scoped
// logger in its context
func requestIDMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		reqLog := log.With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))
		c.Next()
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		log := zerolog.Ctx(c.Request.Context())

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware adapts rs/cors to gin; preflight requests stop here
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})

	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Abort()
			return
		}
		c.Next()
	}
}
