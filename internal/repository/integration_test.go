package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/config"
	"github.com/guimauveb/guimauve.io/internal/database"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/ordering"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// openTestDB connects to TEST_DATABASE_URL, migrates and truncates it
func openTestDB(t *testing.T) *repository.Repositories {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.New(&config.DatabaseConfig{URL: url, MaxOpenConns: 8, MaxIdleConns: 2}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations("../../migrations"))
	_, err = db.Exec(`TRUNCATE articles, chapters, contents, tags, article_tags, projects, project_images, project_tags, logs RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return repository.New(db)
}

func chapterItems(t *testing.T, repos *repository.Repositories, articleID int64) []ordering.Item {
	t.Helper()
	chapters, err := repos.Chapter.ListByArticle(context.Background(), articleID)
	require.NoError(t, err)
	items := make([]ordering.Item, len(chapters))
	for i, c := range chapters {
		items[i] = ordering.Item{ID: c.ID, Index: c.Index}
	}
	return items
}

func TestPostgres_ChapterReflow(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	article := &models.Article{Title: "Hello", Headline: "h", Image: "/media/a.png"}
	require.NoError(t, repos.Article.Insert(ctx, article))

	var ids []int64
	err := repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Article.Lock(ctx, article.ID); err != nil {
			return err
		}
		for _, title := range []string{"a", "b", "c"} {
			c := &models.Chapter{ArticleID: article.ID, Index: 99, Title: title}
			if err := tx.Chapter.Insert(ctx, c); err != nil {
				return err
			}
			ids = append(ids, c.ID)
		}
		// Insert at 0 shifts everything
		prelude := &models.Chapter{ArticleID: article.ID, Index: 0, Title: "prelude"}
		return tx.Chapter.Insert(ctx, prelude)
	})
	require.NoError(t, err)

	items := chapterItems(t, repos, article.ID)
	assert.True(t, ordering.IsDense(items))
	assert.Len(t, items, 4)

	// Move the last chapter to the front, then delete the second one
	_, err = repos.Chapter.Move(ctx, ids[2], 0)
	require.NoError(t, err)
	require.NoError(t, repos.Chapter.Delete(ctx, ids[0]))

	items = chapterItems(t, repos, article.ID)
	assert.True(t, ordering.IsDense(items))
	assert.Equal(t, ids[2], items[0].ID)

	err = repos.Chapter.Delete(ctx, ids[0])
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestPostgres_RollbackOnError(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	err := repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Tag.Insert(ctx, &models.Tag{Label: "systems"}); err != nil {
			return err
		}
		return apperr.Validation("abort")
	})
	require.Error(t, err)

	_, err = repos.Tag.FindByLabel(ctx, "systems")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestPostgres_DuplicateTagIsConflict(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, repos.Tag.Insert(ctx, &models.Tag{Label: "go"}))
	err := repos.Tag.Insert(ctx, &models.Tag{Label: "go"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestPostgres_CodeCoherenceCheck(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	article := &models.Article{Title: "Code", Headline: "h", Image: "/a.png"}
	require.NoError(t, repos.Article.Insert(ctx, article))
	chapter := &models.Chapter{ArticleID: article.ID, Title: "c"}
	require.NoError(t, repos.Chapter.Insert(ctx, chapter))

	err := repos.Content.Insert(ctx, &models.Content{
		ArticleID: article.ID, ChapterID: chapter.ID, Kind: models.ContentKindCode, Body: "ls",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPostgres_ConcurrentInsertsStayDense(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	article := &models.Article{Title: "Busy", Headline: "h", Image: "/a.png"}
	require.NoError(t, repos.Article.Insert(ctx, article))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repos.InTx(ctx, func(tx *repository.Repositories) error {
				if err := tx.Article.Lock(ctx, article.ID); err != nil {
					return err
				}
				return tx.Chapter.Insert(ctx, &models.Chapter{ArticleID: article.ID, Index: 0, Title: "x"})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items := chapterItems(t, repos, article.ID)
	assert.Len(t, items, 8)
	assert.True(t, ordering.IsDense(items))
}

func TestPostgres_ConcurrentChapterAndContentEdits(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	article := &models.Article{Title: "Busy", Headline: "h", Image: "/a.png"}
	require.NoError(t, repos.Article.Insert(ctx, article))
	target := &models.Chapter{ArticleID: article.ID, Index: 0, Title: "target"}
	require.NoError(t, repos.Chapter.Insert(ctx, target))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		// AddChapter at 0: article lock, then a reflow touching the target row
		go func() {
			defer wg.Done()
			errs <- repos.InTx(ctx, func(tx *repository.Repositories) error {
				if err := tx.Article.Lock(ctx, article.ID); err != nil {
					return err
				}
				return tx.Chapter.Insert(ctx, &models.Chapter{ArticleID: article.ID, Index: 0, Title: "x"})
			})
		}()
		// AddContent: chapter lock, then an insert whose FK check reads the article row
		go func() {
			defer wg.Done()
			errs <- repos.InTx(ctx, func(tx *repository.Repositories) error {
				chapter, err := tx.Chapter.Lock(ctx, target.ID)
				if err != nil {
					return err
				}
				return tx.Content.Insert(ctx, &models.Content{
					ArticleID: chapter.ArticleID,
					ChapterID: chapter.ID,
					Index:     0,
					Kind:      models.ContentKindText,
					Body:      "x",
				})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items := chapterItems(t, repos, article.ID)
	assert.Len(t, items, 9)
	assert.True(t, ordering.IsDense(items))

	contents, err := repos.Content.ListByChapter(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, contents, 8)
}

func TestPostgres_SearchRespectsVisibility(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	draft := &models.Article{Title: "Hello draft", Headline: "h", Image: "/a.png"}
	require.NoError(t, repos.Article.Insert(ctx, draft))

	ids, err := repos.Article.Search(ctx, "hell", false)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repos.Article.SetPublished(ctx, draft.ID, true))
	ids, err = repos.Article.Search(ctx, "HELL", false)
	require.NoError(t, err)
	assert.Equal(t, []int64{draft.ID}, ids)
}

func TestPostgres_LogInsertBatch(t *testing.T) {
	repos := openTestDB(t)

	n, err := repos.Log.InsertBatch(context.Background(), []models.LogEntry{
		{Level: "warn", Message: "first"},
		{Level: "error", Message: "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
