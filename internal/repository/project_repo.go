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

var projectColumns = []string{
	"id", "title", "image", "description", "features",
	"visit_link", "live_link", "download_link", "git", "category",
}

// projectRepo is the concrete implementation of ProjectRepository
type projectRepo struct {
	q Querier
}

// NewProjectRepo creates a new project repository
func NewProjectRepo(q Querier) ProjectRepository {
	return &projectRepo{q: q}
}

func scanProject(row interface{ Scan(...any) error }) (models.Project, error) {
	var p models.Project
	var visit, live, download, git sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &p.Image, &p.Description, &p.Features,
		&visit, &live, &download, &git, &p.Category); err != nil {
		return p, err
	}
	p.VisitLink = stringPtr(visit)
	p.LiveLink = stringPtr(live)
	p.DownloadLink = stringPtr(download)
	p.Git = stringPtr(git)
	return p, nil
}

func (r *projectRepo) query(ctx context.Context, op string, b sq.SelectBuilder) ([]models.Project, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, apperr.Internal(err, op)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		projects = append(projects, p)
	}
	return projects, wrapErr(op, rows.Err())
}

// GetByID retrieves a project
func (r *projectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query, args, err := psql.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperr.Internal(err, "get project")
	}
	p, err := scanProject(r.q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("project %d not found", id)
	}
	if err != nil {
		return nil, wrapErr("get project", err)
	}
	return &p, nil
}

// GetByIDs retrieves the projects among ids, in no particular order
func (r *projectRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	return r.query(ctx, "get projects", psql.Select(projectColumns...).From("projects").Where("id = ANY(?)", pq.Array(ids)))
}

// List returns every project by id
func (r *projectRepo) List(ctx context.Context) ([]models.Project, error) {
	return r.query(ctx, "list projects", psql.Select(projectColumns...).From("projects").OrderBy("id"))
}

// ListTagged returns the projects carrying tagID, by id
func (r *projectRepo) ListTagged(ctx context.Context, tagID int64) ([]models.Project, error) {
	cols := make([]string, len(projectColumns))
	for i, c := range projectColumns {
		cols[i] = "p." + c
	}
	b := psql.Select(cols...).
		From("projects p").
		Join("project_tags ptg ON ptg.project_id = p.id").
		Where(sq.Eq{"ptg.tag_id": tagID}).
		OrderBy("p.id")
	return r.query(ctx, "list tagged projects", b)
}

// Search returns ids of projects whose title contains query or whose
// search vector matches it, best match first
func (r *projectRepo) Search(ctx context.Context, query string) ([]int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []int64{}, nil
	}

	b := psql.Select("id").
		From("projects").
		Where(sq.Or{
			sq.ILike{"title": "%" + escapeLike(query) + "%"},
			sq.Expr("search_vector @@ websearch_to_tsquery('english', ?)", query),
		}).
		OrderByClause("ts_rank(search_vector, websearch_to_tsquery('english', ?)) DESC", query).
		OrderBy("id")
	return queryIDs(ctx, r.q, "search projects", b)
}

// Insert creates a project and fills its ID
func (r *projectRepo) Insert(ctx context.Context, project *models.Project) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO projects (title, image, description, features, visit_link, live_link, download_link, git, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		project.Title, project.Image, project.Description, project.Features,
		nullString(project.VisitLink), nullString(project.LiveLink),
		nullString(project.DownloadLink), nullString(project.Git), project.Category,
	).Scan(&project.ID)
	return wrapErr("insert project", err)
}

// AddImage appends a gallery image to a project
func (r *projectRepo) AddImage(ctx context.Context, image *models.ProjectImage) error {
	err := r.q.QueryRowContext(ctx,
		"INSERT INTO project_images (project_id, image) VALUES ($1, $2) RETURNING id",
		image.ProjectID, image.Image,
	).Scan(&image.ID)
	return wrapErr("add project image", err)
}

// GalleryFor returns the gallery of each project in insertion order
func (r *projectRepo) GalleryFor(ctx context.Context, projectIDs []int64) (map[int64][]models.ProjectImage, error) {
	out := make(map[int64][]models.ProjectImage, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	rows, err := r.q.QueryContext(ctx,
		"SELECT id, project_id, image FROM project_images WHERE project_id = ANY($1) ORDER BY project_id, id",
		pq.Array(projectIDs))
	if err != nil {
		return nil, wrapErr("list gallery", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img models.ProjectImage
		if err := rows.Scan(&img.ID, &img.ProjectID, &img.Image); err != nil {
			return nil, wrapErr("list gallery", err)
		}
		out[img.ProjectID] = append(out[img.ProjectID], img)
	}
	return out, wrapErr("list gallery", rows.Err())
}

// Count returns the number of projects
func (r *projectRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.q, "count projects", psql.Select("COUNT(*)").From("projects"))
}
