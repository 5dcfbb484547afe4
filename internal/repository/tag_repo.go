package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
)

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	q Querier
}

// NewTagRepo creates a new tag repository
func NewTagRepo(q Querier) TagRepository {
	return &tagRepo{q: q}
}

// List returns every tag ordered by label
func (r *tagRepo) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT id, label FROM tags ORDER BY label")
	if err != nil {
		return nil, wrapErr("list tags", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Label); err != nil {
			return nil, wrapErr("list tags", err)
		}
		tags = append(tags, t)
	}
	return tags, wrapErr("list tags", rows.Err())
}

// FindByLabel looks a tag up by its exact label
func (r *tagRepo) FindByLabel(ctx context.Context, label string) (*models.Tag, error) {
	var t models.Tag
	err := r.q.QueryRowContext(ctx, "SELECT id, label FROM tags WHERE label = $1", label).Scan(&t.ID, &t.Label)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("tag %q not found", label)
	}
	if err != nil {
		return nil, wrapErr("find tag", err)
	}
	return &t, nil
}

// Insert creates a tag; a duplicate label is a Conflict
func (r *tagRepo) Insert(ctx context.Context, tag *models.Tag) error {
	err := r.q.QueryRowContext(ctx, "INSERT INTO tags (label) VALUES ($1) RETURNING id", tag.Label).Scan(&tag.ID)
	return wrapErr("insert tag", err)
}

// ExistingIDs returns the subset of ids that name a tag
func (r *tagRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	return queryIDs(ctx, r.q, "check tags", psql.Select("id").From("tags").Where("id = ANY(?)", pq.Array(ids)).OrderBy("id"))
}

func (r *tagRepo) listFor(ctx context.Context, op, linkTable, ownerColumn string, ownerIDs []int64) (map[int64][]models.Tag, error) {
	out := make(map[int64][]models.Tag, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT l.%[2]s, t.id, t.label
		FROM %[1]s l
		JOIN tags t ON t.id = l.tag_id
		WHERE l.%[2]s = ANY($1)
		ORDER BY l.%[2]s, t.label`, linkTable, ownerColumn)
	rows, err := r.q.QueryContext(ctx, query, pq.Array(ownerIDs))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner int64
		var t models.Tag
		if err := rows.Scan(&owner, &t.ID, &t.Label); err != nil {
			return nil, wrapErr(op, err)
		}
		out[owner] = append(out[owner], t)
	}
	return out, wrapErr(op, rows.Err())
}

// ListForArticles returns the tags of each article, by label
func (r *tagRepo) ListForArticles(ctx context.Context, articleIDs []int64) (map[int64][]models.Tag, error) {
	return r.listFor(ctx, "list article tags", "article_tags", "article_id", articleIDs)
}

// ListForProjects returns the tags of each project, by label
func (r *tagRepo) ListForProjects(ctx context.Context, projectIDs []int64) (map[int64][]models.Tag, error) {
	return r.listFor(ctx, "list project tags", "project_tags", "project_id", projectIDs)
}

func (r *tagRepo) attach(ctx context.Context, op, linkTable, ownerColumn string, ownerID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT (%[2]s, tag_id) DO NOTHING`, linkTable, ownerColumn)
	_, err := r.q.ExecContext(ctx, query, ownerID, pq.Array(tagIDs))
	return wrapErr(op, err)
}

// AttachToArticle links tags to an article; existing links are kept
func (r *tagRepo) AttachToArticle(ctx context.Context, articleID int64, tagIDs []int64) error {
	return r.attach(ctx, "attach article tags", "article_tags", "article_id", articleID, tagIDs)
}

// ReplaceArticleTags makes tagIDs the exact tag set of an article
func (r *tagRepo) ReplaceArticleTags(ctx context.Context, articleID int64, tagIDs []int64) error {
	_, err := r.q.ExecContext(ctx,
		"DELETE FROM article_tags WHERE article_id = $1 AND NOT (tag_id = ANY($2))",
		articleID, pq.Array(tagIDs))
	if err != nil {
		return wrapErr("replace article tags", err)
	}
	return r.AttachToArticle(ctx, articleID, tagIDs)
}

// AttachToProject links tags to a project; existing links are kept
func (r *tagRepo) AttachToProject(ctx context.Context, projectID int64, tagIDs []int64) error {
	return r.attach(ctx, "attach project tags", "project_tags", "project_id", projectID, tagIDs)
}

// Count returns the number of tags
func (r *tagRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.q, "count tags", psql.Select("COUNT(*)").From("tags"))
}
