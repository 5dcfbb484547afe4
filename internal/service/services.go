package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/config"
	"github.com/guimauveb/guimauve.io/internal/highlight"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
	"github.com/guimauveb/guimauve.io/internal/validation"
)

// ArticleService defines the read operations on articles
type ArticleService interface {
	List(ctx context.Context) (models.IDMap[models.NestedArticle], error)
	Get(ctx context.Context, id int64) (*models.NestedArticle, error)
}

// ProjectService defines the read operations on projects
type ProjectService interface {
	List(ctx context.Context) (models.IDMap[models.NestedProject], error)
	Get(ctx context.Context, id int64) (*models.NestedProject, error)
	Resume(ctx context.Context) (models.IDMap[models.NestedProject], error)
}

// TagService defines the tag index operations
type TagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	ResultsFor(ctx context.Context, label string) (*models.SearchResults, error)
}

// SearchService defines the search operation
type SearchService interface {
	Search(ctx context.Context, query string) (*models.SearchResults, error)
}

// ExportService defines the export operations
type ExportService interface {
	ExportArticles(ctx context.Context, w io.Writer, format string) (int, error)
}

// StatsService reports entity counts
type StatsService interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// Editor defines the write commands. Every command runs in one transaction
// and returns the reassembled parent.
type Editor interface {
	CreateArticle(ctx context.Context, form models.CreateArticleForm) (*models.NestedArticle, error)
	UpdateArticle(ctx context.Context, id int64, form models.UpdateArticleForm) (*models.NestedArticle, error)
	PublishArticle(ctx context.Context, id int64, form models.PublishForm) (*models.NestedArticle, error)
	DeleteArticle(ctx context.Context, id int64) error

	AddChapter(ctx context.Context, form models.NewChapterForm) (*models.NestedArticle, error)
	UpdateChapter(ctx context.Context, id int64, form models.UpdateChapterForm) (*models.NestedArticle, error)
	DeleteChapter(ctx context.Context, id int64) (*models.NestedArticle, error)

	AddContent(ctx context.Context, form models.NewContentForm) (*models.NestedArticle, error)
	UpdateContent(ctx context.Context, id int64, form models.UpdateContentForm) (*models.NestedArticle, error)
	DeleteContent(ctx context.Context, id int64) (*models.NestedArticle, error)

	CreateTag(ctx context.Context, form models.NewTagForm) (*models.Tag, error)
	CreateProject(ctx context.Context, form models.CreateProjectForm) (*models.NestedProject, error)
}

// Highlighter renders a code block
type Highlighter func(source string, lang models.Language) (string, error)

// Services holds all service interfaces
type Services struct {
	Articles ArticleService
	Projects ProjectService
	Tags     TagService
	Search   SearchService
	Export   ExportService
	Stats    StatsService

	// Editor is nil unless the binary is editable
	Editor Editor
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	assembler := NewAssembler(cfg.Blog)
	inc := cfg.Blog.IncludeUnpublished

	services := &Services{
		Articles: newArticleService(repos, assembler, inc, log),
		Projects: newProjectService(repos, assembler, cfg.Blog.ResumeProjectIDs, log),
		Tags:     newTagService(repos, assembler, inc, log),
		Search:   newSearchService(repos, assembler, inc, log),
		Export:   newExportService(repos, assembler, log),
		Stats:    newStatsService(repos, inc),
	}

	if cfg.Editable {
		services.Editor = NewEditor(repos, assembler, validation.New(), highlight.Highlight, log)
	}

	return services
}

// loggerFor prefers the request-scoped logger stored in ctx
func loggerFor(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
