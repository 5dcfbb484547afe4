package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos              *repository.Repositories
	assembler          *Assembler
	includeUnpublished bool
	log                zerolog.Logger
}

func newArticleService(repos *repository.Repositories, assembler *Assembler, includeUnpublished bool, log zerolog.Logger) *articleService {
	return &articleService{
		repos:              repos,
		assembler:          assembler,
		includeUnpublished: includeUnpublished,
		log:                log.With().Str("service", "articles").Logger(),
	}
}

// List returns every visible article keyed by id, newest first
func (s *articleService) List(ctx context.Context) (models.IDMap[models.NestedArticle], error) {
	articles, err := s.assembler.AssembleAll(ctx, s.repos, s.includeUnpublished)
	if err != nil {
		return articles, err
	}
	loggerFor(ctx, &s.log).Debug().Int("count", articles.Len()).Msg("Listed articles")
	return articles, nil
}

// Get returns one visible article
func (s *articleService) Get(ctx context.Context, id int64) (*models.NestedArticle, error) {
	return s.assembler.Assemble(ctx, s.repos, id, s.includeUnpublished)
}
