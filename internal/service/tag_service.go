package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// tagService is the concrete implementation of TagService
type tagService struct {
	repos              *repository.Repositories
	assembler          *Assembler
	includeUnpublished bool
	log                zerolog.Logger
}

func newTagService(repos *repository.Repositories, assembler *Assembler, includeUnpublished bool, log zerolog.Logger) *tagService {
	return &tagService{
		repos:              repos,
		assembler:          assembler,
		includeUnpublished: includeUnpublished,
		log:                log.With().Str("service", "tags").Logger(),
	}
}

func (s *tagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.repos.Tag.List(ctx)
}

// ResultsFor returns the articles and projects carrying label.
// An unknown label yields empty maps.
func (s *tagService) ResultsFor(ctx context.Context, label string) (*models.SearchResults, error) {
	tag, err := s.repos.Tag.FindByLabel(ctx, label)
	if errors.Is(err, apperr.ErrNotFound) {
		loggerFor(ctx, &s.log).Debug().Str("label", label).Msg("Unknown tag")
		return emptyResults(), nil
	}
	if err != nil {
		return nil, err
	}

	articles, err := s.repos.Article.ListTagged(ctx, tag.ID, s.includeUnpublished)
	if err != nil {
		return nil, err
	}
	nestedArticles, err := s.assembler.AssembleHeaders(ctx, s.repos, articles)
	if err != nil {
		return nil, err
	}

	projects, err := s.repos.Project.ListTagged(ctx, tag.ID)
	if err != nil {
		return nil, err
	}
	nestedProjects, err := s.assembler.AssembleProjectHeaders(ctx, s.repos, projects)
	if err != nil {
		return nil, err
	}

	results := &models.SearchResults{
		Articles: models.NewIDMap[models.NestedArticle](len(nestedArticles)),
		Projects: models.NewIDMap[models.NestedProject](len(nestedProjects)),
	}
	for _, a := range nestedArticles {
		results.Articles.Set(a.ID, a)
	}
	for _, p := range nestedProjects {
		results.Projects.Set(p.ID, p)
	}
	return results, nil
}

func emptyResults() *models.SearchResults {
	return &models.SearchResults{
		Articles: models.NewIDMap[models.NestedArticle](0),
		Projects: models.NewIDMap[models.NestedProject](0),
	}
}
