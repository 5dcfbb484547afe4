package service

import (
	"context"

	"github.com/guimauveb/guimauve.io/internal/config"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// Assembler joins normalized rows into the nested read models.
// It takes the repositories per call so commands can assemble inside
// their own transaction.
type Assembler struct {
	blog config.BlogConfig
}

// NewAssembler creates an assembler rewriting media paths against blog.APIURL
func NewAssembler(blog config.BlogConfig) *Assembler {
	return &Assembler{blog: blog}
}

// Assemble builds one article, NotFound when it is missing or hidden
func (a *Assembler) Assemble(ctx context.Context, repos *repository.Repositories, id int64, includeUnpublished bool) (*models.NestedArticle, error) {
	header, err := repos.Article.GetByID(ctx, id, includeUnpublished)
	if err != nil {
		return nil, err
	}

	nested, err := a.AssembleHeaders(ctx, repos, []models.Article{*header})
	if err != nil {
		return nil, err
	}
	return &nested[0], nil
}

// AssembleAll builds every visible article, newest first
func (a *Assembler) AssembleAll(ctx context.Context, repos *repository.Repositories, includeUnpublished bool) (models.IDMap[models.NestedArticle], error) {
	headers, err := repos.Article.List(ctx, includeUnpublished)
	if err != nil {
		return models.IDMap[models.NestedArticle]{}, err
	}
	return a.articleMap(ctx, repos, headers)
}

// AssembleByIDs builds the visible articles among ids, in the order of ids
func (a *Assembler) AssembleByIDs(ctx context.Context, repos *repository.Repositories, ids []int64, includeUnpublished bool) (models.IDMap[models.NestedArticle], error) {
	if len(ids) == 0 {
		return models.NewIDMap[models.NestedArticle](0), nil
	}

	headers, err := repos.Article.GetByIDs(ctx, ids, includeUnpublished)
	if err != nil {
		return models.IDMap[models.NestedArticle]{}, err
	}

	byID := make(map[int64]models.Article, len(headers))
	for _, h := range headers {
		byID[h.ID] = h
	}
	ordered := make([]models.Article, 0, len(headers))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			ordered = append(ordered, h)
			delete(byID, id)
		}
	}
	return a.articleMap(ctx, repos, ordered)
}

func (a *Assembler) articleMap(ctx context.Context, repos *repository.Repositories, headers []models.Article) (models.IDMap[models.NestedArticle], error) {
	nested, err := a.AssembleHeaders(ctx, repos, headers)
	if err != nil {
		return models.IDMap[models.NestedArticle]{}, err
	}
	out := models.NewIDMap[models.NestedArticle](len(nested))
	for _, n := range nested {
		out.Set(n.ID, n)
	}
	return out, nil
}

// AssembleHeaders nests chapters, contents and tags under the given headers,
// keeping their order. It issues one query per table whatever the batch size.
func (a *Assembler) AssembleHeaders(ctx context.Context, repos *repository.Repositories, headers []models.Article) ([]models.NestedArticle, error) {
	out := make([]models.NestedArticle, 0, len(headers))
	if len(headers) == 0 {
		return out, nil
	}

	ids := make([]int64, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}

	chapters, err := repos.Chapter.ListByArticles(ctx, ids)
	if err != nil {
		return nil, err
	}
	contents, err := repos.Content.ListByArticles(ctx, ids)
	if err != nil {
		return nil, err
	}
	tags, err := repos.Tag.ListForArticles(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by (parent, index)
	contentsByChapter := make(map[int64][]models.NestedContent)
	for i := range contents {
		c := &contents[i]
		contentsByChapter[c.ChapterID] = append(contentsByChapter[c.ChapterID], a.nestContent(c))
	}

	chaptersByArticle := make(map[int64][]models.NestedChapter)
	for _, c := range chapters {
		nested := models.NestedChapter{
			ID:        c.ID,
			ArticleID: c.ArticleID,
			Index:     c.Index,
			Title:     c.Title,
			Contents:  contentsByChapter[c.ID],
		}
		if nested.Contents == nil {
			nested.Contents = []models.NestedContent{}
		}
		chaptersByArticle[c.ArticleID] = append(chaptersByArticle[c.ArticleID], nested)
	}

	for _, h := range headers {
		nested := models.NestedArticle{
			ID:           h.ID,
			Title:        h.Title,
			PubDate:      h.PubDate,
			Published:    h.Published,
			Headline:     h.Headline,
			Image:        a.blog.MediaURL(h.Image),
			ImageCredits: h.ImageCredits,
			Tags:         tags[h.ID],
			Chapters:     chaptersByArticle[h.ID],
		}
		if nested.Tags == nil {
			nested.Tags = []models.Tag{}
		}
		if nested.Chapters == nil {
			nested.Chapters = []models.NestedChapter{}
		}
		out = append(out, nested)
	}
	return out, nil
}

func (a *Assembler) nestContent(c *models.Content) models.NestedContent {
	bodyURL := c.Body
	if c.Kind == models.ContentKindImage {
		bodyURL = a.blog.MediaURL(c.Body)
	}
	return models.NestedContent{
		ID:              c.ID,
		ArticleID:       c.ArticleID,
		ChapterID:       c.ChapterID,
		Index:           c.Index,
		Kind:            c.Kind,
		Body:            c.Body,
		BodyURL:         bodyURL,
		Language:        c.Language(),
		HighlightedHTML: c.HighlightedHTML(),
		URL:             c.URL,
	}
}

// AssembleProject builds one project
func (a *Assembler) AssembleProject(ctx context.Context, repos *repository.Repositories, id int64) (*models.NestedProject, error) {
	header, err := repos.Project.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	nested, err := a.AssembleProjectHeaders(ctx, repos, []models.Project{*header})
	if err != nil {
		return nil, err
	}
	return &nested[0], nil
}

// AssembleAllProjects builds every project by ascending id
func (a *Assembler) AssembleAllProjects(ctx context.Context, repos *repository.Repositories) (models.IDMap[models.NestedProject], error) {
	headers, err := repos.Project.List(ctx)
	if err != nil {
		return models.IDMap[models.NestedProject]{}, err
	}
	return a.projectMap(ctx, repos, headers)
}

// AssembleProjectsByIDs builds the existing projects among ids, in the order of ids
func (a *Assembler) AssembleProjectsByIDs(ctx context.Context, repos *repository.Repositories, ids []int64) (models.IDMap[models.NestedProject], error) {
	if len(ids) == 0 {
		return models.NewIDMap[models.NestedProject](0), nil
	}

	headers, err := repos.Project.GetByIDs(ctx, ids)
	if err != nil {
		return models.IDMap[models.NestedProject]{}, err
	}

	byID := make(map[int64]models.Project, len(headers))
	for _, h := range headers {
		byID[h.ID] = h
	}
	ordered := make([]models.Project, 0, len(headers))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			ordered = append(ordered, h)
			delete(byID, id)
		}
	}
	return a.projectMap(ctx, repos, ordered)
}

func (a *Assembler) projectMap(ctx context.Context, repos *repository.Repositories, headers []models.Project) (models.IDMap[models.NestedProject], error) {
	nested, err := a.AssembleProjectHeaders(ctx, repos, headers)
	if err != nil {
		return models.IDMap[models.NestedProject]{}, err
	}
	out := models.NewIDMap[models.NestedProject](len(nested))
	for _, n := range nested {
		out.Set(n.ID, n)
	}
	return out, nil
}

// AssembleProjectHeaders attaches tags and galleries to the given projects
func (a *Assembler) AssembleProjectHeaders(ctx context.Context, repos *repository.Repositories, headers []models.Project) ([]models.NestedProject, error) {
	out := make([]models.NestedProject, 0, len(headers))
	if len(headers) == 0 {
		return out, nil
	}

	ids := make([]int64, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}

	tags, err := repos.Tag.ListForProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	galleries, err := repos.Project.GalleryFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, h := range headers {
		gallery := make([]models.ProjectImage, 0, len(galleries[h.ID]))
		for _, img := range galleries[h.ID] {
			img.Image = a.blog.MediaURL(img.Image)
			gallery = append(gallery, img)
		}

		nested := models.NestedProject{
			ID:           h.ID,
			Title:        h.Title,
			Image:        a.blog.MediaURL(h.Image),
			Description:  h.Description,
			Features:     h.Features,
			VisitLink:    h.VisitLink,
			LiveLink:     h.LiveLink,
			DownloadLink: h.DownloadLink,
			Git:          h.Git,
			Category:     h.Category,
			Tags:         tags[h.ID],
			Gallery:      gallery,
		}
		if nested.Tags == nil {
			nested.Tags = []models.Tag{}
		}
		out = append(out, nested)
	}
	return out, nil
}
