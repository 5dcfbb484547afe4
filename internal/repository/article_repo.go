package repository

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
)

var articleColumns = []string{"id", "title", "pub_date", "published", "headline", "image", "image_credits"}

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	q Querier
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(q Querier) ArticleRepository {
	return &articleRepo{q: q}
}

// visible restricts a select to published articles unless the caller opts in
func visible(b sq.SelectBuilder, includeUnpublished bool) sq.SelectBuilder {
	if includeUnpublished {
		return b
	}
	return b.Where(sq.Eq{"published": true})
}

func scanArticle(row interface{ Scan(...any) error }) (models.Article, error) {
	var a models.Article
	var credits sql.NullString
	err := row.Scan(&a.ID, &a.Title, &a.PubDate, &a.Published, &a.Headline, &a.Image, &credits)
	if credits.Valid {
		a.ImageCredits = &credits.String
	}
	return a, err
}

func (r *articleRepo) query(ctx context.Context, op string, b sq.SelectBuilder) ([]models.Article, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, apperr.Internal(err, op)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		articles = append(articles, a)
	}
	return articles, wrapErr(op, rows.Err())
}

// GetByID retrieves an article header; hidden articles are NotFound
func (r *articleRepo) GetByID(ctx context.Context, id int64, includeUnpublished bool) (*models.Article, error) {
	b := visible(psql.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}), includeUnpublished)
	query, args, err := b.ToSql()
	if err != nil {
		return nil, apperr.Internal(err, "get article")
	}

	a, err := scanArticle(r.q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("article %d not found", id)
	}
	if err != nil {
		return nil, wrapErr("get article", err)
	}
	return &a, nil
}

// GetByIDs retrieves the visible headers among ids, in no particular order
func (r *articleRepo) GetByIDs(ctx context.Context, ids []int64, includeUnpublished bool) ([]models.Article, error) {
	if len(ids) == 0 {
		return []models.Article{}, nil
	}
	b := psql.Select(articleColumns...).From("articles").Where("id = ANY(?)", pq.Array(ids))
	return r.query(ctx, "get articles", visible(b, includeUnpublished))
}

// List returns the visible headers, newest first
func (r *articleRepo) List(ctx context.Context, includeUnpublished bool) ([]models.Article, error) {
	b := psql.Select(articleColumns...).From("articles").OrderBy("pub_date DESC", "id DESC")
	return r.query(ctx, "list articles", visible(b, includeUnpublished))
}

// ListTagged returns the visible headers carrying tagID, newest first
func (r *articleRepo) ListTagged(ctx context.Context, tagID int64, includeUnpublished bool) ([]models.Article, error) {
	cols := make([]string, len(articleColumns))
	for i, c := range articleColumns {
		cols[i] = "a." + c
	}
	b := psql.Select(cols...).
		From("articles a").
		Join("article_tags atg ON atg.article_id = a.id").
		Where(sq.Eq{"atg.tag_id": tagID}).
		OrderBy("a.pub_date DESC", "a.id DESC")
	if !includeUnpublished {
		b = b.Where(sq.Eq{"a.published": true})
	}
	return r.query(ctx, "list tagged articles", b)
}

// Search returns ids of visible articles whose title contains query
// (case-insensitive) or whose search vector matches it, best match first
func (r *articleRepo) Search(ctx context.Context, query string, includeUnpublished bool) ([]int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []int64{}, nil
	}

	b := psql.Select("id").
		From("articles").
		Where(sq.Or{
			sq.ILike{"title": "%" + escapeLike(query) + "%"},
			sq.Expr("search_vector @@ websearch_to_tsquery('english', ?)", query),
		}).
		OrderByClause("ts_rank(search_vector, websearch_to_tsquery('english', ?)) DESC", query).
		OrderBy("pub_date DESC", "id DESC")
	return queryIDs(ctx, r.q, "search articles", visible(b, includeUnpublished))
}

// Insert creates the article header and fills ID and PubDate
func (r *articleRepo) Insert(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (title, published, headline, image, image_credits)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, pub_date
	`
	err := r.q.QueryRowContext(ctx, query,
		article.Title, article.Published, article.Headline, article.Image, nullString(article.ImageCredits),
	).Scan(&article.ID, &article.PubDate)
	return wrapErr("insert article", err)
}

// Update overwrites the set fields of the header
func (r *articleRepo) Update(ctx context.Context, id int64, update models.ArticleUpdate) error {
	if update.IsEmpty() {
		return r.Lock(ctx, id)
	}

	b := psql.Update("articles").Where(sq.Eq{"id": id})
	if update.Title != nil {
		b = b.Set("title", *update.Title)
	}
	if update.Headline != nil {
		b = b.Set("headline", *update.Headline)
	}
	if update.Image != nil {
		b = b.Set("image", *update.Image)
	}
	if update.ImageCredits != nil {
		b = b.Set("image_credits", nullString(update.ImageCredits))
	}
	if update.Published != nil {
		b = b.Set("published", *update.Published)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return apperr.Internal(err, "update article")
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr("update article", err)
	}
	return expectRow(res, "article", id)
}

// SetPublished sets the published flag
func (r *articleRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	res, err := r.q.ExecContext(ctx, "UPDATE articles SET published = $1 WHERE id = $2", published, id)
	if err != nil {
		return wrapErr("publish article", err)
	}
	return expectRow(res, "article", id)
}

// Delete removes the article; chapters, contents and tag links cascade
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return wrapErr("delete article", err)
	}
	return expectRow(res, "article", id)
}

// Lock takes the row lock that serializes structural edits of the article.
// NO KEY UPDATE leaves foreign key checks from child inserts unblocked.
func (r *articleRepo) Lock(ctx context.Context, id int64) error {
	var locked int64
	err := r.q.QueryRowContext(ctx, "SELECT id FROM articles WHERE id = $1 FOR NO KEY UPDATE", id).Scan(&locked)
	if err == sql.ErrNoRows {
		return apperr.NotFound("article %d not found", id)
	}
	return wrapErr("lock article", err)
}

// Count returns the number of visible articles
func (r *articleRepo) Count(ctx context.Context, includeUnpublished bool) (int, error) {
	return count(ctx, r.q, "count articles", visible(psql.Select("COUNT(*)").From("articles"), includeUnpublished))
}
