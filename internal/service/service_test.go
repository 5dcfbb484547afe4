package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/config"
	"github.com/guimauveb/guimauve.io/internal/highlight"
	"github.com/guimauveb/guimauve.io/internal/mocks"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/ordering"
	"github.com/guimauveb/guimauve.io/internal/service"
)

const apiURL = "http://api.test"

func ptr[T any](v T) *T { return &v }

func newServices(t *testing.T, includeUnpublished bool) (*service.Services, *mocks.MockStore) {
	t.Helper()
	store := mocks.NewMockStore()
	cfg := &config.Config{
		Blog: config.BlogConfig{
			APIURL:             apiURL,
			IncludeUnpublished: includeUnpublished,
			ResumeProjectIDs:   []int64{8, 2, 1},
		},
		Editable: true,
	}
	services := service.NewServices(store.Repositories(), cfg, zerolog.Nop())
	require.NotNil(t, services.Editor)
	return services, store
}

// checkInvariants asserts density, denormalization and highlight coherence over the whole store
func checkInvariants(t *testing.T, store *mocks.MockStore) {
	t.Helper()

	chapters := store.AllChapters()
	byArticle := make(map[int64][]ordering.Item)
	chapterArticle := make(map[int64]int64)
	for _, c := range chapters {
		byArticle[c.ArticleID] = append(byArticle[c.ArticleID], ordering.Item{ID: c.ID, Index: c.Index})
		chapterArticle[c.ID] = c.ArticleID
	}
	for articleID, items := range byArticle {
		assert.True(t, ordering.IsDense(items), "chapters of article %d are not dense: %v", articleID, items)
	}

	byChapter := make(map[int64][]ordering.Item)
	for _, c := range store.AllContents() {
		byChapter[c.ChapterID] = append(byChapter[c.ChapterID], ordering.Item{ID: c.ID, Index: c.Index})
		assert.Equal(t, chapterArticle[c.ChapterID], c.ArticleID, "content %d has a stale article id", c.ID)

		if c.Kind == models.ContentKindCode {
			require.NotNil(t, c.Code, "code content %d has no code block", c.ID)
			want, err := highlight.Highlight(c.Body, c.Code.Language)
			require.NoError(t, err)
			assert.Equal(t, want, c.Code.HighlightedHTML)
		} else {
			assert.Nil(t, c.Code, "content %d of kind %s carries a highlight", c.ID, c.Kind)
		}
	}
	for chapterID, items := range byChapter {
		assert.True(t, ordering.IsDense(items), "contents of chapter %d are not dense: %v", chapterID, items)
	}
}

func helloForm() models.CreateArticleForm {
	return models.CreateArticleForm{
		Title:    "Hello",
		Headline: "A first post",
		Image:    "/media/hello.png",
		Chapters: []models.ChapterForm{{
			Title: "Intro",
			Index: 0,
			Contents: []models.ContentForm{
				{Index: 0, Kind: models.ContentKindText, Body: "hi"},
			},
		}},
	}
}

func TestEndToEnd_Scenarios(t *testing.T) {
	services, store := newServices(t, false)
	ctx := context.Background()

	// 1. Create then read back
	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)
	require.Len(t, created.Chapters, 1)
	assert.Equal(t, "Intro", created.Chapters[0].Title)
	assert.Equal(t, 0, created.Chapters[0].Index)
	require.Len(t, created.Chapters[0].Contents, 1)
	assert.Equal(t, 0, created.Chapters[0].Contents[0].Index)
	assert.Nil(t, created.Chapters[0].Contents[0].HighlightedHTML)
	assert.Equal(t, apiURL+"/media/hello.png", created.Image)

	articleID := created.ID
	introID := created.Chapters[0].ID
	textID := created.Chapters[0].Contents[0].ID

	// Unpublished articles are hidden from readers
	_, err = services.Articles.Get(ctx, articleID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// 2. Prelude at index 0 pushes Intro to 1
	nested, err := services.Editor.AddChapter(ctx, models.NewChapterForm{ArticleID: articleID, Index: 0, Title: "Prelude"})
	require.NoError(t, err)
	require.Len(t, nested.Chapters, 2)
	assert.Equal(t, "Prelude", nested.Chapters[0].Title)
	assert.Equal(t, 0, nested.Chapters[0].Index)
	assert.Equal(t, "Intro", nested.Chapters[1].Title)
	assert.Equal(t, 1, nested.Chapters[1].Index)

	// 3. Code content at index 0 of Intro
	nested, err = services.Editor.AddContent(ctx, models.NewContentForm{
		ChapterID: introID,
		Index:     0,
		Kind:      models.ContentKindCode,
		Body:      "fn main(){}",
		Language:  ptr(models.LanguageRust),
	})
	require.NoError(t, err)
	intro := nested.Chapters[1]
	require.Len(t, intro.Contents, 2)
	code := intro.Contents[0]
	assert.Equal(t, models.ContentKindCode, code.Kind)
	require.NotNil(t, code.HighlightedHTML)
	assert.NotEmpty(t, *code.HighlightedHTML)
	assert.Equal(t, textID, intro.Contents[1].ID)
	assert.Equal(t, 1, intro.Contents[1].Index)

	// 4. Search hides the draft until it is published
	results, err := services.Search.Search(ctx, "hell")
	require.NoError(t, err)
	assert.Equal(t, 0, results.Articles.Len())

	_, err = services.Editor.PublishArticle(ctx, articleID, models.PublishForm{Published: ptr(true)})
	require.NoError(t, err)

	results, err = services.Search.Search(ctx, "hell")
	require.NoError(t, err)
	assert.Equal(t, []int64{articleID}, results.Articles.Keys())

	// 5. Tag the article and look it up
	tag, err := services.Editor.CreateTag(ctx, models.NewTagForm{Label: "systems"})
	require.NoError(t, err)
	_, err = services.Editor.UpdateArticle(ctx, articleID, models.UpdateArticleForm{TagIDs: &[]int64{tag.ID}})
	require.NoError(t, err)

	tagged, err := services.Tags.ResultsFor(ctx, "systems")
	require.NoError(t, err)
	assert.Equal(t, []int64{articleID}, tagged.Articles.Keys())
	assert.Equal(t, 0, tagged.Projects.Len())

	// 6. Delete the code block; the text block reflows back to 0
	nested, err = services.Editor.DeleteContent(ctx, code.ID)
	require.NoError(t, err)
	require.Len(t, nested.Chapters[1].Contents, 1)
	assert.Equal(t, textID, nested.Chapters[1].Contents[0].ID)
	assert.Equal(t, 0, nested.Chapters[1].Contents[0].Index)

	fetched, err := services.Articles.Get(ctx, articleID)
	require.NoError(t, err)
	assert.Equal(t, nested.Chapters, fetched.Chapters)
	checkInvariants(t, store)
}

func TestCreateArticle_RoundTrip(t *testing.T) {
	services, _ := newServices(t, true)
	ctx := context.Background()

	form := models.CreateArticleForm{
		Title:        "Round trip",
		Headline:     "h",
		Image:        "/media/a.png",
		ImageCredits: ptr("someone"),
		Chapters: []models.ChapterForm{
			{Title: "one", Index: 0, Contents: []models.ContentForm{
				{Index: 0, Kind: models.ContentKindImage, Body: "/media/figure.png"},
				{Index: 1, Kind: models.ContentKindLink, Body: "docs", URL: ptr("https://go.dev")},
				{Index: 2, Kind: models.ContentKindCode, Body: "echo hi"},
			}},
			{Title: "two", Index: 1},
		},
	}

	created, err := services.Editor.CreateArticle(ctx, form)
	require.NoError(t, err)

	fetched, err := services.Articles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	contents := fetched.Chapters[0].Contents
	require.Len(t, contents, 3)
	assert.Equal(t, "/media/figure.png", contents[0].Body)
	assert.Equal(t, apiURL+"/media/figure.png", contents[0].BodyURL)
	assert.Equal(t, "docs", contents[1].BodyURL)
	assert.Equal(t, "https://go.dev", *contents[1].URL)

	// Code without a language defaults to Bash on creation
	require.NotNil(t, contents[2].Language)
	assert.Equal(t, models.LanguageBash, *contents[2].Language)
	assert.Empty(t, fetched.Chapters[1].Contents)
	assert.NotNil(t, fetched.Chapters[1].Contents)
}

func TestCreateArticle_UnknownTagRollsBack(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	form := helloForm()
	form.TagIDs = []int64{42, 42}
	_, err := services.Editor.CreateArticle(ctx, form)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "42")

	articles, err := services.Articles.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, articles.Len())
	assert.Empty(t, store.AllChapters())
}

func TestCreateArticle_StorageFailureRollsBack(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	store.Fail("Content.Insert", apperr.Transient(errors.New("connection reset"), "insert content"))
	_, err := services.Editor.CreateArticle(ctx, helloForm())
	assert.True(t, errors.Is(err, apperr.ErrTransient))
	assert.Equal(t, 1, store.Rollbacks)
	assert.Empty(t, store.AllChapters())

	store.ClearFailures()
	_, err = services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)
}

func TestCreateArticle_InvalidForm(t *testing.T) {
	services, store := newServices(t, true)

	form := helloForm()
	form.Chapters[0].Index = -1
	_, err := services.Editor.CreateArticle(context.Background(), form)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "chapters[0].index")
	assert.Equal(t, 0, store.Commits)
}

func TestAddContent_CodeWithoutLanguage(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)

	_, err = services.Editor.AddContent(ctx, models.NewContentForm{
		ChapterID: created.Chapters[0].ID,
		Kind:      models.ContentKindCode,
		Body:      "ls",
	})
	assert.True(t, errors.Is(err, service.ErrMissingLanguage))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Len(t, store.AllContents(), 1)
}

func TestAddContent_ClampsIndexAndCopiesArticle(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)

	nested, err := services.Editor.AddContent(ctx, models.NewContentForm{
		ChapterID: created.Chapters[0].ID,
		Index:     99,
		Body:      "tail",
	})
	require.NoError(t, err)

	contents := nested.Chapters[0].Contents
	require.Len(t, contents, 2)
	assert.Equal(t, "tail", contents[1].Body)
	assert.Equal(t, 1, contents[1].Index)
	assert.Equal(t, models.ContentKindText, contents[1].Kind)
	assert.Equal(t, created.ID, contents[1].ArticleID)
	checkInvariants(t, store)
}

func TestAddContent_UnknownChapter(t *testing.T) {
	services, _ := newServices(t, true)

	_, err := services.Editor.AddContent(context.Background(), models.NewContentForm{ChapterID: 77, Body: "x"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateContent_KindTransitions(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)
	textID := created.Chapters[0].Contents[0].ID

	// Text -> Code needs a language
	_, err = services.Editor.UpdateContent(ctx, textID, models.UpdateContentForm{Kind: ptr(models.ContentKindCode)})
	assert.True(t, errors.Is(err, service.ErrMissingLanguage))

	nested, err := services.Editor.UpdateContent(ctx, textID, models.UpdateContentForm{
		Kind:     ptr(models.ContentKindCode),
		Body:     ptr("SELECT 1"),
		Language: ptr(models.LanguageSql),
	})
	require.NoError(t, err)
	c := nested.Chapters[0].Contents[0]
	require.NotNil(t, c.HighlightedHTML)
	assert.Equal(t, models.LanguageSql, *c.Language)

	// Body change keeps the language and recomputes the highlight
	before := *c.HighlightedHTML
	nested, err = services.Editor.UpdateContent(ctx, textID, models.UpdateContentForm{Body: ptr("SELECT 2")})
	require.NoError(t, err)
	c = nested.Chapters[0].Contents[0]
	assert.NotEqual(t, before, *c.HighlightedHTML)
	assert.Equal(t, models.LanguageSql, *c.Language)

	// Code -> Comment clears language and highlight
	nested, err = services.Editor.UpdateContent(ctx, textID, models.UpdateContentForm{Kind: ptr(models.ContentKindComment)})
	require.NoError(t, err)
	c = nested.Chapters[0].Contents[0]
	assert.Nil(t, c.Language)
	assert.Nil(t, c.HighlightedHTML)

	checkInvariants(t, store)
}

func TestUpdateContent_ClearsURL(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	form := helloForm()
	form.Chapters[0].Contents = append(form.Chapters[0].Contents,
		models.ContentForm{Index: 1, Kind: models.ContentKindLink, Body: "docs", URL: ptr("https://go.dev")})
	created, err := services.Editor.CreateArticle(ctx, form)
	require.NoError(t, err)
	linkID := created.Chapters[0].Contents[1].ID

	// Omitted URL keeps the stored one
	nested, err := services.Editor.UpdateContent(ctx, linkID, models.UpdateContentForm{Body: ptr("Go docs")})
	require.NoError(t, err)
	require.NotNil(t, nested.Chapters[0].Contents[1].URL)
	assert.Equal(t, "https://go.dev", *nested.Chapters[0].Contents[1].URL)

	// Empty URL clears it
	nested, err = services.Editor.UpdateContent(ctx, linkID, models.UpdateContentForm{URL: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, nested.Chapters[0].Contents[1].URL)

	stored, ok := store.Content(linkID)
	require.True(t, ok)
	assert.Nil(t, stored.URL)

	// A malformed URL is still rejected
	_, err = services.Editor.UpdateContent(ctx, linkID, models.UpdateContentForm{URL: ptr("not a url")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	checkInvariants(t, store)
}

func TestUpdateContent_Idempotent(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	form := helloForm()
	form.Chapters[0].Contents = append(form.Chapters[0].Contents,
		models.ContentForm{Index: 1, Kind: models.ContentKindCode, Body: "ls -la", Language: ptr(models.LanguageBash)})
	created, err := services.Editor.CreateArticle(ctx, form)
	require.NoError(t, err)
	codeID := created.Chapters[0].Contents[1].ID

	update := models.UpdateContentForm{Body: ptr("ls -lah"), Index: ptr(0)}
	first, err := services.Editor.UpdateContent(ctx, codeID, update)
	require.NoError(t, err)
	second, err := services.Editor.UpdateContent(ctx, codeID, update)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, codeID, second.Chapters[0].Contents[0].ID)
	checkInvariants(t, store)
}

func TestPublish_Idempotent(t *testing.T) {
	services, _ := newServices(t, false)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)

	once, err := services.Editor.PublishArticle(ctx, created.ID, models.PublishForm{Published: ptr(true)})
	require.NoError(t, err)
	twice, err := services.Editor.PublishArticle(ctx, created.ID, models.PublishForm{Published: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	visible, err := services.Articles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, once, visible)

	_, err = services.Editor.PublishArticle(ctx, created.ID+100, models.PublishForm{Published: ptr(true)})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestChapters_InsertMoveDelete(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	form := helloForm()
	form.Chapters = []models.ChapterForm{{Title: "a", Index: 0}, {Title: "b", Index: 1}, {Title: "c", Index: 2}}
	created, err := services.Editor.CreateArticle(ctx, form)
	require.NoError(t, err)
	a, b, c := created.Chapters[0].ID, created.Chapters[1].ID, created.Chapters[2].ID

	// Insert at 0 shifts all n chapters to 1..n
	nested, err := services.Editor.AddChapter(ctx, models.NewChapterForm{ArticleID: created.ID, Index: 0, Title: "z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "b", "c"}, chapterTitles(nested))

	// Move c to the front and rename it
	nested, err = services.Editor.UpdateChapter(ctx, c, models.UpdateChapterForm{Title: ptr("C"), Index: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "z", "a", "b"}, chapterTitles(nested))

	// Deleting the last chapter leaves the others untouched
	nested, err = services.Editor.DeleteChapter(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "z", "a"}, chapterTitles(nested))

	nested, err = services.Editor.DeleteChapter(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "z"}, chapterTitles(nested))

	// Delete after delete is NotFound and changes nothing
	_, err = services.Editor.DeleteChapter(ctx, a)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	again, err := services.Articles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, nested.Chapters, again.Chapters)

	checkInvariants(t, store)
}

func chapterTitles(a *models.NestedArticle) []string {
	out := make([]string, len(a.Chapters))
	for i, c := range a.Chapters {
		out[i] = c.Title
	}
	return out
}

func TestDeleteArticle(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)

	require.NoError(t, services.Editor.DeleteArticle(ctx, created.ID))
	assert.Empty(t, store.AllChapters())
	assert.Empty(t, store.AllContents())

	err = services.Editor.DeleteArticle(ctx, created.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateArticle_ReplacesTagsAndCommits(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	goTag, err := services.Editor.CreateTag(ctx, models.NewTagForm{Label: "go"})
	require.NoError(t, err)
	rustTag, err := services.Editor.CreateTag(ctx, models.NewTagForm{Label: "rust"})
	require.NoError(t, err)

	form := helloForm()
	form.TagIDs = []int64{goTag.ID}
	created, err := services.Editor.CreateArticle(ctx, form)
	require.NoError(t, err)
	require.Len(t, created.Tags, 1)

	commits := store.Commits
	updated, err := services.Editor.UpdateArticle(ctx, created.ID, models.UpdateArticleForm{
		Title:  ptr("Hello again"),
		TagIDs: &[]int64{rustTag.ID, rustTag.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, commits+1, store.Commits)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, []models.Tag{*rustTag}, updated.Tags)

	fetched, err := services.Articles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{*rustTag}, fetched.Tags)

	// An empty set removes every tag
	updated, err = services.Editor.UpdateArticle(ctx, created.ID, models.UpdateArticleForm{TagIDs: &[]int64{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestCreateTag_Conflict(t *testing.T) {
	services, _ := newServices(t, true)
	ctx := context.Background()

	_, err := services.Editor.CreateTag(ctx, models.NewTagForm{Label: "go"})
	require.NoError(t, err)
	_, err = services.Editor.CreateTag(ctx, models.NewTagForm{Label: "go"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	// Labels are case sensitive
	_, err = services.Editor.CreateTag(ctx, models.NewTagForm{Label: "Go"})
	assert.NoError(t, err)
}

func TestVisibility_NoDraftLeaks(t *testing.T) {
	services, _ := newServices(t, false)
	ctx := context.Background()

	tag, err := services.Editor.CreateTag(ctx, models.NewTagForm{Label: "notes"})
	require.NoError(t, err)

	draft := helloForm()
	draft.Title = "Hidden draft"
	draft.TagIDs = []int64{tag.ID}
	hidden, err := services.Editor.CreateArticle(ctx, draft)
	require.NoError(t, err)

	public := helloForm()
	public.Title = "Hidden in plain sight"
	public.Published = true
	public.TagIDs = []int64{tag.ID}
	shown, err := services.Editor.CreateArticle(ctx, public)
	require.NoError(t, err)

	list, err := services.Articles.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{shown.ID}, list.Keys())

	_, err = services.Articles.Get(ctx, hidden.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	results, err := services.Search.Search(ctx, "hidden")
	require.NoError(t, err)
	assert.Equal(t, []int64{shown.ID}, results.Articles.Keys())

	tagged, err := services.Tags.ResultsFor(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, []int64{shown.ID}, tagged.Articles.Keys())

	stats, err := services.Stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Articles)
	assert.Equal(t, 1, stats.Tags)
}

func TestIncludeUnpublished_ShowsDrafts(t *testing.T) {
	services, _ := newServices(t, true)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)

	fetched, err := services.Articles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Published)
}

func TestSearch_Boundaries(t *testing.T) {
	services, _ := newServices(t, true)
	ctx := context.Background()

	_, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)

	for _, q := range []string{"", "   "} {
		results, err := services.Search.Search(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 0, results.Articles.Len())
		assert.Equal(t, 0, results.Projects.Len())

		data, err := json.Marshal(results)
		require.NoError(t, err)
		assert.JSONEq(t, `{"articles":{},"projects":{}}`, string(data))
	}

	tagged, err := services.Tags.ResultsFor(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, 0, tagged.Articles.Len())
	assert.Equal(t, 0, tagged.Projects.Len())
}

func TestProjects_ResumeAndSearch(t *testing.T) {
	services, _ := newServices(t, true)
	ctx := context.Background()

	tag, err := services.Editor.CreateTag(ctx, models.NewTagForm{Label: "web"})
	require.NoError(t, err)

	// Ids 2..9; the resume asks for 8, 2 and 1
	var ids []int64
	for i := 0; i < 8; i++ {
		p, err := services.Editor.CreateProject(ctx, models.CreateProjectForm{
			Title:       "Project " + string(rune('A'+i)),
			Image:       "/media/p.png",
			Description: "d",
			TagIDs:      []int64{tag.ID},
			Gallery:     []string{"/media/g1.png", "/media/g2.png"},
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	p, err := services.Projects.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCategoryWebApplication, p.Category)
	assert.Equal(t, apiURL+"/media/p.png", p.Image)
	require.Len(t, p.Gallery, 2)
	assert.Equal(t, apiURL+"/media/g1.png", p.Gallery[0].Image)

	resume, err := services.Projects.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 2}, resume.Keys())

	all, err := services.Projects.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, all.Keys())

	results, err := services.Search.Search(ctx, "project c")
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2]}, results.Projects.Keys())

	tagged, err := services.Tags.ResultsFor(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, ids, tagged.Projects.Keys())
}

func TestExportArticles(t *testing.T) {
	services, _ := newServices(t, false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := services.Editor.CreateArticle(ctx, helloForm())
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	n, err := services.Export.ExportArticles(ctx, &buf, service.FormatNDJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "export includes drafts")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)

	buf.Reset()
	n, err = services.Export.ExportArticles(ctx, &buf, service.FormatJSON)
	require.NoError(t, err)
	var decoded []models.NestedArticle
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, n)

	_, err = services.Export.ExportArticles(ctx, &buf, "csv")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestExportArticles_Empty(t *testing.T) {
	services, _ := newServices(t, true)

	var buf bytes.Buffer
	n, err := services.Export.ExportArticles(context.Background(), &buf, service.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "[]", buf.String())
}

func TestEditorAbsentWhenNotEditable(t *testing.T) {
	store := mocks.NewMockStore()
	services := service.NewServices(store.Repositories(), &config.Config{}, zerolog.Nop())
	assert.Nil(t, services.Editor)
	assert.NotNil(t, services.Articles)
}

func TestConcurrentStructuralEdits(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)
	chapterID := created.Chapters[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%3 == 0 {
				_, err := services.Editor.AddChapter(ctx, models.NewChapterForm{ArticleID: created.ID, Index: i % 4, Title: "c"})
				assert.NoError(t, err)
				return
			}
			_, err := services.Editor.AddContent(ctx, models.NewContentForm{ChapterID: chapterID, Index: i % 5, Body: "x"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	fetched, err := services.Articles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Chapters, 7)
	checkInvariants(t, store)
}

// TestRandomEditsKeepInvariants runs a fixed pseudo-random sequence of commands
func TestRandomEditsKeepInvariants(t *testing.T) {
	services, store := newServices(t, true)
	ctx := context.Background()

	created, err := services.Editor.CreateArticle(ctx, helloForm())
	require.NoError(t, err)
	articleID := created.ID

	seed := uint32(7)
	next := func(n int) int {
		seed = seed*1664525 + 1013904223
		return int(seed>>16) % n
	}

	for step := 0; step < 300; step++ {
		article, err := services.Articles.Get(ctx, articleID)
		require.NoError(t, err)

		switch op := next(6); {
		case op == 0 || len(article.Chapters) == 0:
			_, err = services.Editor.AddChapter(ctx, models.NewChapterForm{ArticleID: articleID, Index: next(6), Title: "c"})
		case op == 1 && len(article.Chapters) > 1:
			_, err = services.Editor.DeleteChapter(ctx, article.Chapters[next(len(article.Chapters))].ID)
		case op == 2:
			_, err = services.Editor.UpdateChapter(ctx, article.Chapters[next(len(article.Chapters))].ID,
				models.UpdateChapterForm{Index: ptr(next(6))})
		default:
			chapter := article.Chapters[next(len(article.Chapters))]
			if len(chapter.Contents) > 0 && next(2) == 0 {
				target := chapter.Contents[next(len(chapter.Contents))].ID
				if next(2) == 0 {
					_, err = services.Editor.DeleteContent(ctx, target)
				} else {
					_, err = services.Editor.UpdateContent(ctx, target, models.UpdateContentForm{
						Index:    ptr(next(4)),
						Kind:     ptr(models.ContentKinds[next(len(models.ContentKinds))]),
						Body:     ptr("body"),
						Language: ptr(models.LanguageYaml),
					})
				}
			} else {
				_, err = services.Editor.AddContent(ctx, models.NewContentForm{
					ChapterID: chapter.ID,
					Index:     next(5),
					Kind:      models.ContentKindCode,
					Body:      "a: 1",
					Language:  ptr(models.LanguageYaml),
				})
			}
		}
		require.NoError(t, err, "step %d", step)
	}

	checkInvariants(t, store)
}
