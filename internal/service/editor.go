package service

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
	"github.com/guimauveb/guimauve.io/internal/validation"
)

// ErrMissingLanguage is returned when a code content has no language
var ErrMissingLanguage = &apperr.Error{
	Kind:    apperr.KindValidation,
	Message: "MissingLanguage",
	Details: map[string]string{"language": "is required for Code contents"},
}

// editor is the concrete implementation of Editor.
// Highlighting runs before the transaction opens; the parent row is
// locked first inside it so structural edits of one parent serialize.
type editor struct {
	repos     *repository.Repositories
	assembler *Assembler
	validate  *validation.Validator
	highlight Highlighter
	log       zerolog.Logger
}

// NewEditor creates the command layer
func NewEditor(repos *repository.Repositories, assembler *Assembler, v *validation.Validator, h Highlighter, log zerolog.Logger) Editor {
	return &editor{
		repos:     repos,
		assembler: assembler,
		validate:  v,
		highlight: h,
		log:       log.With().Str("service", "editor").Logger(),
	}
}

func (e *editor) CreateArticle(ctx context.Context, form models.CreateArticleForm) (*models.NestedArticle, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	// Highlight every code block up front
	contents := make([][]models.Content, len(form.Chapters))
	for i, chapter := range form.Chapters {
		contents[i] = make([]models.Content, len(chapter.Contents))
		for j, cf := range chapter.Contents {
			lang := cf.Language
			if lang == nil {
				lang = ptrTo(models.DefaultLanguage)
			}
			c, err := e.buildContent(cf.Index, cf.Kind, cf.Body, lang, cf.URL)
			if err != nil {
				return nil, err
			}
			contents[i][j] = c
		}
	}

	tagIDs := dedupe(form.TagIDs)

	var nested *models.NestedArticle
	err := e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := checkTags(ctx, tx, tagIDs); err != nil {
			return err
		}

		article := &models.Article{
			Title:        form.Title,
			Headline:     form.Headline,
			Image:        form.Image,
			ImageCredits: form.ImageCredits,
			Published:    form.Published,
		}
		if err := tx.Article.Insert(ctx, article); err != nil {
			return err
		}

		for i, cf := range form.Chapters {
			chapter := &models.Chapter{ArticleID: article.ID, Index: cf.Index, Title: cf.Title}
			if err := tx.Chapter.Insert(ctx, chapter); err != nil {
				return err
			}
			for j := range contents[i] {
				c := contents[i][j]
				c.ArticleID = article.ID
				c.ChapterID = chapter.ID
				if err := tx.Content.Insert(ctx, &c); err != nil {
					return err
				}
			}
		}

		if len(tagIDs) > 0 {
			if err := tx.Tag.AttachToArticle(ctx, article.ID, tagIDs); err != nil {
				return err
			}
		}

		var err error
		nested, err = e.assembler.Assemble(ctx, tx, article.ID, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, &e.log).Info().
		Int64("article_id", nested.ID).
		Int("chapters", len(nested.Chapters)).
		Msg("Article created")
	return nested, nil
}

func (e *editor) UpdateArticle(ctx context.Context, id int64, form models.UpdateArticleForm) (*models.NestedArticle, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	update := models.ArticleUpdate{
		Title:        form.Title,
		Headline:     form.Headline,
		Image:        form.Image,
		ImageCredits: form.ImageCredits,
		Published:    form.Published,
	}

	var nested *models.NestedArticle
	err := e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Article.Lock(ctx, id); err != nil {
			return err
		}

		if !update.IsEmpty() {
			if err := tx.Article.Update(ctx, id, update); err != nil {
				return err
			}
		}

		if form.TagIDs != nil {
			tagIDs := dedupe(*form.TagIDs)
			if err := checkTags(ctx, tx, tagIDs); err != nil {
				return err
			}
			if err := tx.Tag.ReplaceArticleTags(ctx, id, tagIDs); err != nil {
				return err
			}
		}

		var err error
		nested, err = e.assembler.Assemble(ctx, tx, id, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, &e.log).Info().Int64("article_id", id).Msg("Article updated")
	return nested, nil
}

func (e *editor) PublishArticle(ctx context.Context, id int64, form models.PublishForm) (*models.NestedArticle, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	var nested *models.NestedArticle
	err := e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Article.SetPublished(ctx, id, *form.Published); err != nil {
			return err
		}
		var err error
		nested, err = e.assembler.Assemble(ctx, tx, id, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, &e.log).Info().
		Int64("article_id", id).
		Bool("published", nested.Published).
		Msg("Article publication changed")
	return nested, nil
}

// DeleteArticle removes the article with its chapters, contents and tag links
func (e *editor) DeleteArticle(ctx context.Context, id int64) error {
	err := e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		return tx.Article.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	loggerFor(ctx, &e.log).Info().Int64("article_id", id).Msg("Article deleted")
	return nil
}

func (e *editor) AddChapter(ctx context.Context, form models.NewChapterForm) (*models.NestedArticle, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	return e.inArticle(ctx, form.ArticleID, func(tx *repository.Repositories) error {
		return tx.Chapter.Insert(ctx, &models.Chapter{
			ArticleID: form.ArticleID,
			Index:     form.Index,
			Title:     form.Title,
		})
	})
}

func (e *editor) UpdateChapter(ctx context.Context, id int64, form models.UpdateChapterForm) (*models.NestedArticle, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	chapter, err := e.repos.Chapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return e.inArticle(ctx, chapter.ArticleID, func(tx *repository.Repositories) error {
		if form.Title != nil {
			if err := tx.Chapter.UpdateTitle(ctx, id, *form.Title); err != nil {
				return err
			}
		}
		if form.Index != nil {
			if _, err := tx.Chapter.Move(ctx, id, *form.Index); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *editor) DeleteChapter(ctx context.Context, id int64) (*models.NestedArticle, error) {
	chapter, err := e.repos.Chapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return e.inArticle(ctx, chapter.ArticleID, func(tx *repository.Repositories) error {
		return tx.Chapter.Delete(ctx, id)
	})
}

// inArticle locks an article, runs fn and reassembles the article, all in one transaction
func (e *editor) inArticle(ctx context.Context, articleID int64, fn func(tx *repository.Repositories) error) (*models.NestedArticle, error) {
	var nested *models.NestedArticle
	err := e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Article.Lock(ctx, articleID); err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		var err error
		nested, err = e.assembler.Assemble(ctx, tx, articleID, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, &e.log).Debug().Int64("article_id", articleID).Msg("Article outline changed")
	return nested, nil
}

func (e *editor) AddContent(ctx context.Context, form models.NewContentForm) (*models.NestedArticle, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	content, err := e.buildContent(form.Index, form.Kind, form.Body, form.Language, form.URL)
	if err != nil {
		return nil, err
	}
	content.ChapterID = form.ChapterID

	var nested *models.NestedArticle
	err = e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		chapter, err := tx.Chapter.Lock(ctx, form.ChapterID)
		if err != nil {
			return err
		}
		content.ArticleID = chapter.ArticleID
		if err := tx.Content.Insert(ctx, &content); err != nil {
			return err
		}
		nested, err = e.assembler.Assemble(ctx, tx, chapter.ArticleID, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, &e.log).Debug().
		Int64("content_id", content.ID).
		Str("kind", string(content.Kind)).
		Msg("Content added")
	return nested, nil
}

func (e *editor) UpdateContent(ctx context.Context, id int64, form models.UpdateContentForm) (*models.NestedArticle, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	before, err := e.repos.Content.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, err := e.mergeContent(*before, form)
	if err != nil {
		return nil, err
	}

	var nested *models.NestedArticle
	err = e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Chapter.Lock(ctx, before.ChapterID); err != nil {
			return err
		}

		// The row may have changed between the pre-read and the lock
		current, err := tx.Content.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !sameBlock(current, before) {
			if merged, err = e.mergeContent(*current, form); err != nil {
				return err
			}
		}

		if err := tx.Content.Update(ctx, &merged); err != nil {
			return err
		}
		if form.Index != nil {
			if _, err := tx.Content.Move(ctx, id, *form.Index); err != nil {
				return err
			}
		}

		nested, err = e.assembler.Assemble(ctx, tx, current.ArticleID, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nested, nil
}

func (e *editor) DeleteContent(ctx context.Context, id int64) (*models.NestedArticle, error) {
	var nested *models.NestedArticle
	err := e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		content, err := tx.Content.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Chapter.Lock(ctx, content.ChapterID); err != nil {
			return err
		}
		if err := tx.Content.Delete(ctx, id); err != nil {
			return err
		}
		nested, err = e.assembler.Assemble(ctx, tx, content.ArticleID, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nested, nil
}

// buildContent returns an unsaved content; Code kinds are highlighted here
func (e *editor) buildContent(index int, kind models.ContentKind, body string, lang *models.Language, url *string) (models.Content, error) {
	if kind == "" {
		kind = models.DefaultContentKind
	}

	c := models.Content{
		Index: index,
		Kind:  kind,
		Body:  body,
		URL:   blankToNil(url),
	}
	if kind != models.ContentKindCode {
		return c, nil
	}

	if lang == nil {
		return c, ErrMissingLanguage
	}
	html, err := e.highlight(body, *lang)
	if err != nil {
		return c, err
	}
	c.Code = &models.CodeBlock{Language: *lang, HighlightedHTML: html}
	return c, nil
}

// mergeContent applies a partial update to a stored content
func (e *editor) mergeContent(c models.Content, form models.UpdateContentForm) (models.Content, error) {
	kind := c.Kind
	if form.Kind != nil {
		kind = *form.Kind
	}
	body := c.Body
	if form.Body != nil {
		body = *form.Body
	}
	url := c.URL
	if form.URL != nil {
		url = form.URL
	}
	lang := form.Language
	if lang == nil && c.Code != nil {
		lang = ptrTo(c.Code.Language)
	}

	merged, err := e.buildContent(c.Index, kind, body, lang, url)
	if err != nil {
		return merged, err
	}
	merged.ID = c.ID
	merged.ArticleID = c.ArticleID
	merged.ChapterID = c.ChapterID
	return merged, nil
}

// sameBlock reports whether two reads of a content hold the same block
func sameBlock(a, b *models.Content) bool {
	if a.Kind != b.Kind || a.Body != b.Body || a.ChapterID != b.ChapterID {
		return false
	}
	if (a.URL == nil) != (b.URL == nil) || (a.URL != nil && *a.URL != *b.URL) {
		return false
	}
	if (a.Code == nil) != (b.Code == nil) {
		return false
	}
	return a.Code == nil || a.Code.Language == b.Code.Language
}

func (e *editor) CreateTag(ctx context.Context, form models.NewTagForm) (*models.Tag, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	tag := &models.Tag{Label: form.Label}
	if err := e.repos.Tag.Insert(ctx, tag); err != nil {
		return nil, err
	}

	loggerFor(ctx, &e.log).Info().Int64("tag_id", tag.ID).Str("label", tag.Label).Msg("Tag created")
	return tag, nil
}

func (e *editor) CreateProject(ctx context.Context, form models.CreateProjectForm) (*models.NestedProject, error) {
	if err := e.validate.Validate(form); err != nil {
		return nil, err
	}

	category := form.Category
	if category == "" {
		category = models.DefaultProjectCategory
	}
	tagIDs := dedupe(form.TagIDs)

	var nested *models.NestedProject
	err := e.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := checkTags(ctx, tx, tagIDs); err != nil {
			return err
		}

		project := &models.Project{
			Title:        form.Title,
			Image:        form.Image,
			Description:  form.Description,
			Features:     form.Features,
			VisitLink:    blankToNil(form.VisitLink),
			LiveLink:     blankToNil(form.LiveLink),
			DownloadLink: blankToNil(form.DownloadLink),
			Git:          blankToNil(form.Git),
			Category:     category,
		}
		if err := tx.Project.Insert(ctx, project); err != nil {
			return err
		}

		for _, path := range form.Gallery {
			if err := tx.Project.AddImage(ctx, &models.ProjectImage{ProjectID: project.ID, Image: path}); err != nil {
				return err
			}
		}

		if len(tagIDs) > 0 {
			if err := tx.Tag.AttachToProject(ctx, project.ID, tagIDs); err != nil {
				return err
			}
		}

		var err error
		nested, err = e.assembler.AssembleProject(ctx, tx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	loggerFor(ctx, &e.log).Info().Int64("project_id", nested.ID).Msg("Project created")
	return nested, nil
}

// checkTags fails with a Validation error naming the tag ids that do not exist
func checkTags(ctx context.Context, tx *repository.Repositories, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	existing, err := tx.Tag.ExistingIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	missing := mapset.NewSet(tagIDs...).Difference(mapset.NewSet(existing...))
	if missing.Cardinality() == 0 {
		return nil
	}
	return apperr.Validation("unknown tag ids: %v", sortedIDs(missing))
}

// dedupe removes repeated ids and sorts the rest
func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	return sortedIDs(mapset.NewThreadUnsafeSet(ids...))
}

func sortedIDs(set mapset.Set[int64]) []int64 {
	out := set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func ptrTo[T any](v T) *T { return &v }
