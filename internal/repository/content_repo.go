package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/ordering"
)

const contentColumns = `id, article_id, chapter_id, "index", content_type, body, language, highlighted_html, url`

// contentRepo is the concrete implementation of ContentRepository
type contentRepo struct {
	q Querier
}

// NewContentRepo creates a new content repository
func NewContentRepo(q Querier) ContentRepository {
	return &contentRepo{q: q}
}

func scanContent(row interface{ Scan(...any) error }) (models.Content, error) {
	var c models.Content
	var language, highlighted, url sql.NullString
	if err := row.Scan(&c.ID, &c.ArticleID, &c.ChapterID, &c.Index, &c.Kind, &c.Body, &language, &highlighted, &url); err != nil {
		return c, err
	}
	c.URL = stringPtr(url)
	if c.Kind == models.ContentKindCode && language.Valid {
		c.Code = &models.CodeBlock{
			Language:        models.Language(language.String),
			HighlightedHTML: highlighted.String,
		}
	}
	return c, nil
}

// codeColumns splits the tagged union into its nullable columns
func codeColumns(c *models.Content) (sql.NullString, sql.NullString) {
	if c.Code == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: string(c.Code.Language), Valid: true},
		sql.NullString{String: c.Code.HighlightedHTML, Valid: true}
}

// GetByID retrieves a content
func (r *contentRepo) GetByID(ctx context.Context, id int64) (*models.Content, error) {
	c, err := scanContent(r.q.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("content %d not found", id)
	}
	if err != nil {
		return nil, wrapErr("get content", err)
	}
	return &c, nil
}

func (r *contentRepo) list(ctx context.Context, op, query string, args ...any) ([]models.Content, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	contents := []models.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		contents = append(contents, c)
	}
	return contents, wrapErr(op, rows.Err())
}

// ListByChapter returns the contents of a chapter by index
func (r *contentRepo) ListByChapter(ctx context.Context, chapterID int64) ([]models.Content, error) {
	return r.list(ctx, "list contents",
		`SELECT `+contentColumns+` FROM contents WHERE chapter_id = $1 ORDER BY "index"`, chapterID)
}

// ListByArticles returns the contents of several articles, grouped by chapter and ordered by index
func (r *contentRepo) ListByArticles(ctx context.Context, articleIDs []int64) ([]models.Content, error) {
	if len(articleIDs) == 0 {
		return []models.Content{}, nil
	}
	return r.list(ctx, "list contents",
		`SELECT `+contentColumns+` FROM contents WHERE article_id = ANY($1) ORDER BY chapter_id, "index"`,
		pq.Array(articleIDs))
}

// Insert creates a content at its clamped index after shifting the siblings
// at or past it. ArticleID must come from the locked parent chapter.
func (r *contentRepo) Insert(ctx context.Context, content *models.Content) error {
	n, err := siblingCount(ctx, r.q, "contents", "chapter_id", content.ChapterID)
	if err != nil {
		return err
	}
	at, err := ordering.ClampInsert(content.Index, n)
	if err != nil {
		return err
	}
	if err := reflow(ctx, r.q, "contents", "chapter_id", content.ChapterID, ordering.InsertShift(at, n)); err != nil {
		return err
	}

	language, highlighted := codeColumns(content)
	err = r.q.QueryRowContext(ctx, `
		INSERT INTO contents (article_id, chapter_id, "index", content_type, body, language, highlighted_html, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		content.ArticleID, content.ChapterID, at, content.Kind, content.Body, language, highlighted, nullString(content.URL),
	).Scan(&content.ID)
	if err != nil {
		return wrapErr("insert content", err)
	}
	content.Index = at
	return nil
}

// Update writes kind, body, url and the code columns; the index is changed with Move
func (r *contentRepo) Update(ctx context.Context, content *models.Content) error {
	language, highlighted := codeColumns(content)
	res, err := r.q.ExecContext(ctx, `
		UPDATE contents
		SET content_type = $1, body = $2, language = $3, highlighted_html = $4, url = $5
		WHERE id = $6`,
		content.Kind, content.Body, language, highlighted, nullString(content.URL), content.ID,
	)
	if err != nil {
		return wrapErr("update content", err)
	}
	return expectRow(res, "content", content.ID)
}

// Move relocates a content inside its chapter and returns the final index
func (r *contentRepo) Move(ctx context.Context, id int64, index int) (int, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := siblingCount(ctx, r.q, "contents", "chapter_id", current.ChapterID)
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

	if err := reflow(ctx, r.q, "contents", "chapter_id", current.ChapterID, ordering.MoveShift(current.Index, to)); err != nil {
		return 0, err
	}
	if _, err := r.q.ExecContext(ctx, `UPDATE contents SET "index" = $1 WHERE id = $2`, to, id); err != nil {
		return 0, wrapErr("move content", err)
	}
	return to, nil
}

// Delete removes a content and closes the gap it leaves
func (r *contentRepo) Delete(ctx context.Context, id int64) error {
	var chapterID int64
	var index int
	err := r.q.QueryRowContext(ctx,
		`DELETE FROM contents WHERE id = $1 RETURNING chapter_id, "index"`, id,
	).Scan(&chapterID, &index)
	if err == sql.ErrNoRows {
		return apperr.NotFound("content %d not found", id)
	}
	if err != nil {
		return wrapErr("delete content", err)
	}

	remaining, err := siblingCount(ctx, r.q, "contents", "chapter_id", chapterID)
	if err != nil {
		return err
	}
	return reflow(ctx, r.q, "contents", "chapter_id", chapterID, ordering.RemoveShift(index, remaining+1))
}
