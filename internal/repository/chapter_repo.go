package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/ordering"
)

// chapterRepo is the concrete implementation of ChapterRepository
type chapterRepo struct {
	q Querier
}

// NewChapterRepo creates a new chapter repository
func NewChapterRepo(q Querier) ChapterRepository {
	return &chapterRepo{q: q}
}

func (r *chapterRepo) get(ctx context.Context, op, query string, id int64) (*models.Chapter, error) {
	var c models.Chapter
	err := r.q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.ArticleID, &c.Index, &c.Title)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("chapter %d not found", id)
	}
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return &c, nil
}

// GetByID retrieves a chapter
func (r *chapterRepo) GetByID(ctx context.Context, id int64) (*models.Chapter, error) {
	return r.get(ctx, "get chapter", `SELECT id, article_id, "index", title FROM chapters WHERE id = $1`, id)
}

// Lock retrieves a chapter and holds its row lock until the transaction ends
func (r *chapterRepo) Lock(ctx context.Context, id int64) (*models.Chapter, error) {
	return r.get(ctx, "lock chapter", `SELECT id, article_id, "index", title FROM chapters WHERE id = $1 FOR NO KEY UPDATE`, id)
}

func (r *chapterRepo) list(ctx context.Context, op, query string, args ...any) ([]models.Chapter, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	chapters := []models.Chapter{}
	for rows.Next() {
		var c models.Chapter
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Index, &c.Title); err != nil {
			return nil, wrapErr(op, err)
		}
		chapters = append(chapters, c)
	}
	return chapters, wrapErr(op, rows.Err())
}

// ListByArticle returns the chapters of an article by index
func (r *chapterRepo) ListByArticle(ctx context.Context, articleID int64) ([]models.Chapter, error) {
	return r.list(ctx, "list chapters",
		`SELECT id, article_id, "index", title FROM chapters WHERE article_id = $1 ORDER BY "index"`, articleID)
}

// ListByArticles returns the chapters of several articles, grouped by article and ordered by index
func (r *chapterRepo) ListByArticles(ctx context.Context, articleIDs []int64) ([]models.Chapter, error) {
	if len(articleIDs) == 0 {
		return []models.Chapter{}, nil
	}
	return r.list(ctx, "list chapters",
		`SELECT id, article_id, "index", title FROM chapters WHERE article_id = ANY($1) ORDER BY article_id, "index"`,
		pq.Array(articleIDs))
}

// Insert creates a chapter at its clamped index after shifting the siblings
// at or past it. The caller holds the article lock.
func (r *chapterRepo) Insert(ctx context.Context, chapter *models.Chapter) error {
	n, err := siblingCount(ctx, r.q, "chapters", "article_id", chapter.ArticleID)
	if err != nil {
		return err
	}
	at, err := ordering.ClampInsert(chapter.Index, n)
	if err != nil {
		return err
	}
	if err := reflow(ctx, r.q, "chapters", "article_id", chapter.ArticleID, ordering.InsertShift(at, n)); err != nil {
		return err
	}

	err = r.q.QueryRowContext(ctx,
		`INSERT INTO chapters (article_id, "index", title) VALUES ($1, $2, $3) RETURNING id`,
		chapter.ArticleID, at, chapter.Title,
	).Scan(&chapter.ID)
	if err != nil {
		return wrapErr("insert chapter", err)
	}
	chapter.Index = at
	return nil
}

// UpdateTitle renames a chapter
func (r *chapterRepo) UpdateTitle(ctx context.Context, id int64, title string) error {
	res, err := r.q.ExecContext(ctx, "UPDATE chapters SET title = $1 WHERE id = $2", title, id)
	if err != nil {
		return wrapErr("update chapter", err)
	}
	return expectRow(res, "chapter", id)
}

// Move relocates a chapter inside its article and returns the final index
func (r *chapterRepo) Move(ctx context.Context, id int64, index int) (int, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := siblingCount(ctx, r.q, "chapters", "article_id", current.ArticleID)
	if err != nil {
		return 0, err
	}
	to, err := ordering.ClampMove(index, n)
	if err != nil {
		return 0, err
	}
	if to == current.Index {
		return to, nil
	}

	if err := reflow(ctx, r.q, "chapters", "article_id", current.ArticleID, ordering.MoveShift(current.Index, to)); err != nil {
		return 0, err
	}
	if _, err := r.q.ExecContext(ctx, `UPDATE chapters SET "index" = $1 WHERE id = $2`, to, id); err != nil {
		return 0, wrapErr("move chapter", err)
	}
	return to, nil
}

// Delete removes a chapter with its contents and closes the gap it leaves
func (r *chapterRepo) Delete(ctx context.Context, id int64) error {
	var articleID int64
	var index int
	err := r.q.QueryRowContext(ctx,
		`DELETE FROM chapters WHERE id = $1 RETURNING article_id, "index"`, id,
	).Scan(&articleID, &index)
	if err == sql.ErrNoRows {
		return apperr.NotFound("chapter %d not found", id)
	}
	if err != nil {
		return wrapErr("delete chapter", err)
	}

	remaining, err := siblingCount(ctx, r.q, "chapters", "article_id", articleID)
	if err != nil {
		return err
	}
	return reflow(ctx, r.q, "chapters", "article_id", articleID, ordering.RemoveShift(index, remaining+1))
}
