package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// projectService is the concrete implementation of ProjectService
type projectService struct {
	repos     *repository.Repositories
	assembler *Assembler
	resumeIDs []int64
	log       zerolog.Logger
}

func newProjectService(repos *repository.Repositories, assembler *Assembler, resumeIDs []int64, log zerolog.Logger) *projectService {
	return &projectService{
		repos:     repos,
		assembler: assembler,
		resumeIDs: append([]int64(nil), resumeIDs...),
		log:       log.With().Str("service", "projects").Logger(),
	}
}

func (s *projectService) List(ctx context.Context) (models.IDMap[models.NestedProject], error) {
	return s.assembler.AssembleAllProjects(ctx, s.repos)
}

func (s *projectService) Get(ctx context.Context, id int64) (*models.NestedProject, error) {
	return s.assembler.AssembleProject(ctx, s.repos, id)
}

// Resume returns the configured resume projects in configured order.
// Ids that no longer exist are skipped.
func (s *projectService) Resume(ctx context.Context) (models.IDMap[models.NestedProject], error) {
	projects, err := s.assembler.AssembleProjectsByIDs(ctx, s.repos, s.resumeIDs)
	if err != nil {
		return projects, err
	}
	if missing := len(s.resumeIDs) - projects.Len(); missing > 0 {
		loggerFor(ctx, &s.log).Warn().
			Int("missing", missing).
			Interface("configured", s.resumeIDs).
			Msg("Resume projects not found")
	}
	return projects, nil
}
