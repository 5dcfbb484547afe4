package service

import (
	"context"

	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

type statsService struct {
	repos              *repository.Repositories
	includeUnpublished bool
}

func newStatsService(repos *repository.Repositories, includeUnpublished bool) *statsService {
	return &statsService{repos: repos, includeUnpublished: includeUnpublished}
}

// Stats counts the entities visible to readers
func (s *statsService) Stats(ctx context.Context) (*models.Stats, error) {
	var (
		stats models.Stats
		err   error
	)
	if stats.Articles, err = s.repos.Article.Count(ctx, s.includeUnpublished); err != nil {
		return nil, err
	}
	if stats.Projects, err = s.repos.Project.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Tags, err = s.repos.Tag.Count(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}
