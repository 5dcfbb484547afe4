// Package seed loads YAML fixtures and applies them through the editor,
// so seeded data goes through the same validation and reflow as the API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/service"
)

// Fixtures is the root of a seed file
type Fixtures struct {
	Tags     []string         `yaml:"tags"`
	Projects []ProjectFixture `yaml:"projects"`
	Articles []ArticleFixture `yaml:"articles"`
}

// ArticleFixture is a CreateArticleForm whose tags are given by label
type ArticleFixture struct {
	models.CreateArticleForm `yaml:",inline"`
	Tags                     []string `yaml:"tags"`
}

// ProjectFixture is a CreateProjectForm whose tags are given by label
type ProjectFixture struct {
	models.CreateProjectForm `yaml:",inline"`
	Tags                     []string `yaml:"tags"`
}

// Result counts what Apply created
type Result struct {
	Tags     int `json:"tags"`
	Projects int `json:"projects"`
	Articles int `json:"articles"`
}

// Load decodes fixtures from r. Unknown keys are rejected.
func Load(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, apperr.Validation("invalid fixtures: %v", err)
	}
	return &f, nil
}

// LoadFile decodes the fixtures stored at path
func LoadFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// Seeder applies fixtures
type Seeder struct {
	editor service.Editor
	tags   service.TagService
	log    zerolog.Logger
}

// New creates a Seeder. services must come from an editable build.
func New(services *service.Services, log zerolog.Logger) (*Seeder, error) {
	if services.Editor == nil {
		return nil, apperr.Validation("seeding requires an editable build")
	}
	return &Seeder{
		editor: services.Editor,
		tags:   services.Tags,
		log:    log.With().Str("component", "seed").Logger(),
	}, nil
}

// Apply creates the fixtures' tags, then projects, then articles.
// Tags that already exist are reused; projects and articles are always created.
// Apply stops at the first failure; what was created before it stays.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) (*Result, error) {
	result := &Result{}

	ids, err := s.resolveTags(ctx, f, result)
	if err != nil {
		return result, err
	}

	for i, fixture := range f.Projects {
		form := fixture.CreateProjectForm
		form.TagIDs = append(form.TagIDs, lookup(ids, fixture.Tags)...)

		project, err := s.editor.CreateProject(ctx, form)
		if err != nil {
			return result, fmt.Errorf("project %d (%q): %w", i, form.Title, err)
		}
		result.Projects++
		s.log.Debug().Int64("project_id", project.ID).Str("title", project.Title).Msg("Seeded project")
	}

	for i, fixture := range f.Articles {
		form := fixture.CreateArticleForm
		form.TagIDs = append(form.TagIDs, lookup(ids, fixture.Tags)...)

		article, err := s.editor.CreateArticle(ctx, form)
		if err != nil {
			return result, fmt.Errorf("article %d (%q): %w", i, form.Title, err)
		}
		result.Articles++
		s.log.Debug().Int64("article_id", article.ID).Str("title", article.Title).Msg("Seeded article")
	}

	s.log.Info().
		Int("tags", result.Tags).
		Int("projects", result.Projects).
		Int("articles", result.Articles).
		Msg("Fixtures applied")

	return result, nil
}

// resolveTags maps every label the fixtures mention to a tag id,
// creating the missing tags
func (s *Seeder) resolveTags(ctx context.Context, f *Fixtures, result *Result) (map[string]int64, error) {
	existing, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(existing))
	for _, tag := range existing {
		ids[tag.Label] = tag.ID
	}

	labels := append([]string{}, f.Tags...)
	for _, p := range f.Projects {
		labels = append(labels, p.Tags...)
	}
	for _, a := range f.Articles {
		labels = append(labels, a.Tags...)
	}

	for _, label := range labels {
		label = strings.TrimSpace(label)
		if _, ok := ids[label]; ok || label == "" {
			continue
		}
		tag, err := s.editor.CreateTag(ctx, models.NewTagForm{Label: label})
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", label, err)
		}
		ids[tag.Label] = tag.ID
		result.Tags++
	}
	return ids, nil
}

func lookup(ids map[string]int64, labels []string) []int64 {
	out := make([]int64, 0, len(labels))
	for _, label := range labels {
		if id, ok := ids[strings.TrimSpace(label)]; ok {
			out = append(out, id)
		}
	}
	return out
}
