package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// searchService is the concrete implementation of SearchService
type searchService struct {
	repos              *repository.Repositories
	assembler          *Assembler
	includeUnpublished bool
	log                zerolog.Logger
}

func newSearchService(repos *repository.Repositories, assembler *Assembler, includeUnpublished bool, log zerolog.Logger) *searchService {
	return &searchService{
		repos:              repos,
		assembler:          assembler,
		includeUnpublished: includeUnpublished,
		log:                log.With().Str("service", "search").Logger(),
	}
}

// Search matches titles by substring and search vectors by full text.
// A blank query matches nothing.
func (s *searchService) Search(ctx context.Context, query string) (*models.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return emptyResults(), nil
	}

	articleIDs, err := s.repos.Article.Search(ctx, query, s.includeUnpublished)
	if err != nil {
		return nil, err
	}
	projectIDs, err := s.repos.Project.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	articles, err := s.assembler.AssembleByIDs(ctx, s.repos, articleIDs, s.includeUnpublished)
	if err != nil {
		return nil, err
	}
	projects, err := s.assembler.AssembleProjectsByIDs(ctx, s.repos, projectIDs)
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, &s.log).Debug().
		Str("query", query).
		Int("articles", articles.Len()).
		Int("projects", projects.Len()).
		Msg("Search completed")

	return &models.SearchResults{Articles: articles, Projects: projects}, nil
}
