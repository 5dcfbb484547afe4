package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/guimauveb/guimauve.io/internal/database"
	"github.com/guimauveb/guimauve.io/internal/models"
)

// psql builds statements with $n placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ArticleRepository defines the interface for article header operations
type ArticleRepository interface {
	GetByID(ctx context.Context, id int64, includeUnpublished bool) (*models.Article, error)
	GetByIDs(ctx context.Context, ids []int64, includeUnpublished bool) ([]models.Article, error)
	List(ctx context.Context, includeUnpublished bool) ([]models.Article, error)
	ListTagged(ctx context.Context, tagID int64, includeUnpublished bool) ([]models.Article, error)
	Search(ctx context.Context, query string, includeUnpublished bool) ([]int64, error)
	Insert(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, id int64, update models.ArticleUpdate) error
	SetPublished(ctx context.Context, id int64, published bool) error
	Delete(ctx context.Context, id int64) error
	Lock(ctx context.Context, id int64) error
	Count(ctx context.Context, includeUnpublished bool) (int, error)
}

// ChapterRepository defines the interface for chapter operations.
// Insert, Move and Delete reflow the siblings of the chapter.
type ChapterRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Chapter, error)
	Lock(ctx context.Context, id int64) (*models.Chapter, error)
	ListByArticle(ctx context.Context, articleID int64) ([]models.Chapter, error)
	ListByArticles(ctx context.Context, articleIDs []int64) ([]models.Chapter, error)
	Insert(ctx context.Context, chapter *models.Chapter) error
	UpdateTitle(ctx context.Context, id int64, title string) error
	Move(ctx context.Context, id int64, index int) (int, error)
	Delete(ctx context.Context, id int64) error
}

// ContentRepository defines the interface for content operations.
// Insert, Move and Delete reflow the siblings of the content.
type ContentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Content, error)
	ListByChapter(ctx context.Context, chapterID int64) ([]models.Content, error)
	ListByArticles(ctx context.Context, articleIDs []int64) ([]models.Content, error)
	Insert(ctx context.Context, content *models.Content) error
	Update(ctx context.Context, content *models.Content) error
	Move(ctx context.Context, id int64, index int) (int, error)
	Delete(ctx context.Context, id int64) error
}

// TagRepository defines the interface for tags and their links
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	FindByLabel(ctx context.Context, label string) (*models.Tag, error)
	Insert(ctx context.Context, tag *models.Tag) error
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListForArticles(ctx context.Context, articleIDs []int64) (map[int64][]models.Tag, error)
	ListForProjects(ctx context.Context, projectIDs []int64) (map[int64][]models.Tag, error)
	AttachToArticle(ctx context.Context, articleID int64, tagIDs []int64) error
	ReplaceArticleTags(ctx context.Context, articleID int64, tagIDs []int64) error
	AttachToProject(ctx context.Context, projectID int64, tagIDs []int64) error
	Count(ctx context.Context) (int, error)
}

// ProjectRepository defines the interface for project operations
type ProjectRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListTagged(ctx context.Context, tagID int64) ([]models.Project, error)
	Search(ctx context.Context, query string) ([]int64, error)
	Insert(ctx context.Context, project *models.Project) error
	AddImage(ctx context.Context, image *models.ProjectImage) error
	GalleryFor(ctx context.Context, projectIDs []int64) (map[int64][]models.ProjectImage, error)
	Count(ctx context.Context) (int, error)
}

// LogRepository persists log entries
type LogRepository interface {
	InsertBatch(ctx context.Context, entries []models.LogEntry) (int, error)
}

// Transactor runs fn with repositories bound to a single transaction.
// An error returned by fn rolls the transaction back.
type Transactor interface {
	InTx(ctx context.Context, fn func(repos *Repositories) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Chapter ChapterRepository
	Content ContentRepository
	Tag     TagRepository
	Project ProjectRepository
	Log     LogRepository
	Tx      Transactor
}

// InTx runs fn inside a transaction; nested calls reuse the open one
func (r *Repositories) InTx(ctx context.Context, fn func(repos *Repositories) error) error {
	return r.Tx.InTx(ctx, fn)
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	repos := bind(db.DB)
	repos.Log = NewLogRepo(db.DB)
	repos.Tx = &pgTransactor{db: db.DB, log: repos.Log}
	return repos
}

// bind creates the query repositories over q
func bind(q Querier) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(q),
		Chapter: NewChapterRepo(q),
		Content: NewContentRepo(q),
		Tag:     NewTagRepo(q),
		Project: NewProjectRepo(q),
	}
}
