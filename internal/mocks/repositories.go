package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/ordering"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// storeData is everything a transaction can roll back
type storeData struct {
	nextID      int64
	articles    map[int64]models.Article
	chapters    map[int64]models.Chapter
	contents    map[int64]models.Content
	tags        map[int64]models.Tag
	articleTags map[int64][]int64
	projects    map[int64]models.Project
	images      map[int64]models.ProjectImage
	projectTags map[int64][]int64
}

func newStoreData() storeData {
	return storeData{
		articles:    make(map[int64]models.Article),
		chapters:    make(map[int64]models.Chapter),
		contents:    make(map[int64]models.Content),
		tags:        make(map[int64]models.Tag),
		articleTags: make(map[int64][]int64),
		projects:    make(map[int64]models.Project),
		images:      make(map[int64]models.ProjectImage),
		projectTags: make(map[int64][]int64),
	}
}

func (d storeData) clone() storeData {
	out := newStoreData()
	out.nextID = d.nextID
	for k, v := range d.articles {
		out.articles[k] = v
	}
	for k, v := range d.chapters {
		out.chapters[k] = v
	}
	for k, v := range d.contents {
		if v.Code != nil {
			code := *v.Code
			v.Code = &code
		}
		out.contents[k] = v
	}
	for k, v := range d.tags {
		out.tags[k] = v
	}
	for k, v := range d.articleTags {
		out.articleTags[k] = append([]int64(nil), v...)
	}
	for k, v := range d.projects {
		out.projects[k] = v
	}
	for k, v := range d.images {
		out.images[k] = v
	}
	for k, v := range d.projectTags {
		out.projectTags[k] = append([]int64(nil), v...)
	}
	return out
}

// MockStore is an in-memory implementation of every repository.
// Transactions are serialized and roll back on error, and the
// (parent, index) uniqueness is checked at commit like the deferred
// constraints of the real schema.
type MockStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data storeData

	failures map[string]error

	// Logs receives every persisted log entry
	Logs []models.LogEntry

	// Commits and Rollbacks count finished transactions
	Commits   int
	Rollbacks int

	base *repository.Repositories
	tx   *repository.Repositories
}

// Verify interface compliance
var (
	_ repository.ArticleRepository = (*mockArticleRepo)(nil)
	_ repository.ChapterRepository = (*mockChapterRepo)(nil)
	_ repository.ContentRepository = (*mockContentRepo)(nil)
	_ repository.TagRepository     = (*mockTagRepo)(nil)
	_ repository.ProjectRepository = (*mockProjectRepo)(nil)
	_ repository.LogRepository     = (*mockLogRepo)(nil)
)

// epoch is the publication date of the first inserted article; each insert adds a minute
var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewMockStore creates an empty store
func NewMockStore() *MockStore {
	s := &MockStore{
		data:     newStoreData(),
		failures: make(map[string]error),
	}
	s.base = s.bind(&mockTx{s: s})
	s.tx = s.bind(&mockTx{s: s, nested: true})
	return s
}

func (s *MockStore) bind(tx repository.Transactor) *repository.Repositories {
	return &repository.Repositories{
		Article: &mockArticleRepo{s: s},
		Chapter: &mockChapterRepo{s: s},
		Content: &mockContentRepo{s: s},
		Tag:     &mockTagRepo{s: s},
		Project: &mockProjectRepo{s: s},
		Log:     &mockLogRepo{s: s},
		Tx:      tx,
	}
}

// Repositories returns the repositories backed by the store
func (s *MockStore) Repositories() *repository.Repositories {
	return s.base
}

// Fail makes every call of op ("Content.Insert", "Tag.List", ...) return err
func (s *MockStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ClearFailures removes every injected error
func (s *MockStore) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

// failure must be called with mu held
func (s *MockStore) failure(op string) error {
	return s.failures[op]
}

func (s *MockStore) newID() int64 {
	s.data.nextID++
	return s.data.nextID
}

// Content returns a stored content, for assertions
func (s *MockStore) Content(id int64) (models.Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data.contents[id]
	return c, ok
}

// AllContents returns every stored content, for invariant checks
func (s *MockStore) AllContents() []models.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Content, 0, len(s.data.contents))
	for _, c := range s.data.contents {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllChapters returns every stored chapter, for invariant checks
func (s *MockStore) AllChapters() []models.Chapter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Chapter, 0, len(s.data.chapters))
	for _, c := range s.data.chapters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// mockTx serializes transactions on txMu and restores a snapshot on error
type mockTx struct {
	s      *MockStore
	nested bool
}

func (t *mockTx) InTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	if t.nested {
		return fn(t.s.tx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return apperr.Transient(err, "begin transaction")
	}

	t.s.mu.Lock()
	if err := t.s.failure("Tx.Begin"); err != nil {
		t.s.mu.Unlock()
		return err
	}
	snapshot := t.s.data.clone()
	t.s.mu.Unlock()

	err := fn(t.s.tx)

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err == nil {
		err = t.s.failure("Tx.Commit")
	}
	if err == nil {
		err = t.s.checkDeferred()
	}
	if err != nil {
		t.s.data = snapshot
		t.s.Rollbacks++
		return err
	}
	t.s.Commits++
	return nil
}

// checkDeferred mirrors the deferred (parent, index) unique constraints
func (s *MockStore) checkDeferred() error {
	seen := make(map[[2]int64]bool)
	for _, c := range s.data.chapters {
		key := [2]int64{c.ArticleID, int64(c.Index)}
		if seen[key] {
			return apperr.Conflict("chapter index collision")
		}
		seen[key] = true
	}
	seen = make(map[[2]int64]bool)
	for _, c := range s.data.contents {
		key := [2]int64{c.ChapterID, int64(c.Index)}
		if seen[key] {
			return apperr.Conflict("content index collision")
		}
		seen[key] = true
	}
	return nil
}

// shiftChapters applies a reflow to the chapters of an article
func (s *MockStore) shiftChapters(articleID int64, shift ordering.Shift) {
	for id, c := range s.data.chapters {
		if c.ArticleID == articleID && shift.Applies(c.Index) {
			c.Index += shift.Delta
			s.data.chapters[id] = c
		}
	}
}

// shiftContents applies a reflow to the contents of a chapter
func (s *MockStore) shiftContents(chapterID int64, shift ordering.Shift) {
	for id, c := range s.data.contents {
		if c.ChapterID == chapterID && shift.Applies(c.Index) {
			c.Index += shift.Delta
			s.data.contents[id] = c
		}
	}
}

func (s *MockStore) countChapters(articleID int64) int {
	n := 0
	for _, c := range s.data.chapters {
		if c.ArticleID == articleID {
			n++
		}
	}
	return n
}

func (s *MockStore) countContents(chapterID int64) int {
	n := 0
	for _, c := range s.data.contents {
		if c.ChapterID == chapterID {
			n++
		}
	}
	return n
}

func (s *MockStore) deleteChapterLocked(id int64) {
	for cid, c := range s.data.contents {
		if c.ChapterID == id {
			delete(s.data.contents, cid)
		}
	}
	delete(s.data.chapters, id)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func hasID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type mockArticleRepo struct{ s *MockStore }

func (r *mockArticleRepo) GetByID(_ context.Context, id int64, includeUnpublished bool) (*models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Article.GetByID"); err != nil {
		return nil, err
	}
	a, ok := r.s.data.articles[id]
	if !ok || (!a.Published && !includeUnpublished) {
		return nil, apperr.NotFound("article %d not found", id)
	}
	return &a, nil
}

func (r *mockArticleRepo) GetByIDs(_ context.Context, ids []int64, includeUnpublished bool) ([]models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Article.GetByIDs"); err != nil {
		return nil, err
	}
	out := []models.Article{}
	for _, id := range ids {
		if a, ok := r.s.data.articles[id]; ok && (a.Published || includeUnpublished) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *mockArticleRepo) sorted(keep func(models.Article) bool) []models.Article {
	out := []models.Article{}
	for _, a := range r.s.data.articles {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].PubDate.After(out[j].PubDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *mockArticleRepo) List(_ context.Context, includeUnpublished bool) ([]models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Article.List"); err != nil {
		return nil, err
	}
	return r.sorted(func(a models.Article) bool { return a.Published || includeUnpublished }), nil
}

func (r *mockArticleRepo) ListTagged(_ context.Context, tagID int64, includeUnpublished bool) ([]models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Article.ListTagged"); err != nil {
		return nil, err
	}
	return r.sorted(func(a models.Article) bool {
		return (a.Published || includeUnpublished) && hasID(r.s.data.articleTags[a.ID], tagID)
	}), nil
}

func (r *mockArticleRepo) Search(_ context.Context, query string, includeUnpublished bool) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Article.Search"); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	ids := []int64{}
	if query == "" {
		return ids, nil
	}
	for _, a := range r.sorted(func(a models.Article) bool {
		return (a.Published || includeUnpublished) && containsFold(a.Title, query)
	}) {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (r *mockArticleRepo) Insert(_ context.Context, article *models.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Article.Insert"); err != nil {
		return err
	}
	article.ID = r.s.newID()
	article.PubDate = epoch.Add(time.Duration(article.ID) * time.Minute)
	if article.ImageCredits != nil && *article.ImageCredits == "" {
		article.ImageCredits = nil
	}
	r.s.data.articles[article.ID] = *article
	return nil
}

func (r *mockArticleRepo) Update(_ context.Context, id int64, update models.ArticleUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Article.Update"); err != nil {
		return err
	}
	a, ok := r.s.data.articles[id]
	if !ok {
		return apperr.NotFound("article %d not found", id)
	}
	if update.Title != nil {
		a.Title = *update.Title
	}
	if update.Headline != nil {
		a.Headline = *update.Headline
	}
	if update.Image != nil {
		a.Image = *update.Image
	}
	if update.ImageCredits != nil {
		a.ImageCredits = nil
		if *update.ImageCredits != "" {
			credits := *update.ImageCredits
			a.ImageCredits = &credits
		}
	}
	if update.Published != nil {
		a.Published = *update.Published
	}
	r.s.data.articles[id] = a
	return nil
}

func (r *mockArticleRepo) SetPublished(_ context.Context, id int64, published bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Article.SetPublished"); err != nil {
		return err
	}
	a, ok := r.s.data.articles[id]
	if !ok {
		return apperr.NotFound("article %d not found", id)
	}
	a.Published = published
	r.s.data.articles[id] = a
	return nil
}

func (r *mockArticleRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Article.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.articles[id]; !ok {
		return apperr.NotFound("article %d not found", id)
	}
	for cid, c := range r.s.data.chapters {
		if c.ArticleID == id {
			r.s.deleteChapterLocked(cid)
		}
	}
	delete(r.s.data.articleTags, id)
	delete(r.s.data.articles, id)
	return nil
}

func (r *mockArticleRepo) Lock(_ context.Context, id int64) error {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Article.Lock"); err != nil {
		return err
	}
	if _, ok := r.s.data.articles[id]; !ok {
		return apperr.NotFound("article %d not found", id)
	}
	return nil
}

func (r *mockArticleRepo) Count(_ context.Context, includeUnpublished bool) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Article.Count"); err != nil {
		return 0, err
	}
	return len(r.sorted(func(a models.Article) bool { return a.Published || includeUnpublished })), nil
}

type mockChapterRepo struct{ s *MockStore }

func (r *mockChapterRepo) GetByID(_ context.Context, id int64) (*models.Chapter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Chapter.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.data.chapters[id]
	if !ok {
		return nil, apperr.NotFound("chapter %d not found", id)
	}
	return &c, nil
}

func (r *mockChapterRepo) Lock(ctx context.Context, id int64) (*models.Chapter, error) {
	r.s.mu.RLock()
	err := r.s.failure("Chapter.Lock")
	r.s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *mockChapterRepo) list(keep func(models.Chapter) bool) []models.Chapter {
	out := []models.Chapter{}
	for _, c := range r.s.data.chapters {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ArticleID != out[j].ArticleID {
			return out[i].ArticleID < out[j].ArticleID
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func (r *mockChapterRepo) ListByArticle(_ context.Context, articleID int64) ([]models.Chapter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Chapter.ListByArticle"); err != nil {
		return nil, err
	}
	return r.list(func(c models.Chapter) bool { return c.ArticleID == articleID }), nil
}

func (r *mockChapterRepo) ListByArticles(_ context.Context, articleIDs []int64) ([]models.Chapter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Chapter.ListByArticles"); err != nil {
		return nil, err
	}
	return r.list(func(c models.Chapter) bool { return hasID(articleIDs, c.ArticleID) }), nil
}

func (r *mockChapterRepo) Insert(_ context.Context, chapter *models.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Chapter.Insert"); err != nil {
		return err
	}
	if _, ok := r.s.data.articles[chapter.ArticleID]; !ok {
		return apperr.Validation("unknown article id")
	}
	n := r.s.countChapters(chapter.ArticleID)
	at, err := ordering.ClampInsert(chapter.Index, n)
	if err != nil {
		return err
	}
	r.s.shiftChapters(chapter.ArticleID, ordering.InsertShift(at, n))
	chapter.ID = r.s.newID()
	chapter.Index = at
	r.s.data.chapters[chapter.ID] = *chapter
	return nil
}

func (r *mockChapterRepo) UpdateTitle(_ context.Context, id int64, title string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Chapter.UpdateTitle"); err != nil {
		return err
	}
	c, ok := r.s.data.chapters[id]
	if !ok {
		return apperr.NotFound("chapter %d not found", id)
	}
	c.Title = title
	r.s.data.chapters[id] = c
	return nil
}

func (r *mockChapterRepo) Move(_ context.Context, id int64, index int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Chapter.Move"); err != nil {
		return 0, err
	}
	c, ok := r.s.data.chapters[id]
	if !ok {
		return 0, apperr.NotFound("chapter %d not found", id)
	}
	to, err := ordering.ClampMove(index, r.s.countChapters(c.ArticleID))
	if err != nil {
		return 0, err
	}
	if to == c.Index {
		return to, nil
	}
	r.s.shiftChapters(c.ArticleID, ordering.MoveShift(c.Index, to))
	c.Index = to
	r.s.data.chapters[id] = c
	return to, nil
}

func (r *mockChapterRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Chapter.Delete"); err != nil {
		return err
	}
	c, ok := r.s.data.chapters[id]
	if !ok {
		return apperr.NotFound("chapter %d not found", id)
	}
	n := r.s.countChapters(c.ArticleID)
	r.s.deleteChapterLocked(id)
	r.s.shiftChapters(c.ArticleID, ordering.RemoveShift(c.Index, n))
	return nil
}

type mockContentRepo struct{ s *MockStore }

// checkRow mirrors the foreign key and CHECK constraints on contents
func (r *mockContentRepo) checkRow(c *models.Content) error {
	chapter, ok := r.s.data.chapters[c.ChapterID]
	if !ok || chapter.ArticleID != c.ArticleID {
		return apperr.Validation("content must belong to its chapter's article")
	}
	if !c.Kind.IsValid() || !c.Coherent() {
		return apperr.Validation("code content requires a language and highlighted html")
	}
	return nil
}

func (r *mockContentRepo) GetByID(_ context.Context, id int64) (*models.Content, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Content.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.data.contents[id]
	if !ok {
		return nil, apperr.NotFound("content %d not found", id)
	}
	if c.Code != nil {
		code := *c.Code
		c.Code = &code
	}
	return &c, nil
}

func (r *mockContentRepo) list(keep func(models.Content) bool) []models.Content {
	out := []models.Content{}
	for _, c := range r.s.data.contents {
		if keep(c) {
			if c.Code != nil {
				code := *c.Code
				c.Code = &code
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChapterID != out[j].ChapterID {
			return out[i].ChapterID < out[j].ChapterID
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func (r *mockContentRepo) ListByChapter(_ context.Context, chapterID int64) ([]models.Content, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Content.ListByChapter"); err != nil {
		return nil, err
	}
	return r.list(func(c models.Content) bool { return c.ChapterID == chapterID }), nil
}

func (r *mockContentRepo) ListByArticles(_ context.Context, articleIDs []int64) ([]models.Content, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Content.ListByArticles"); err != nil {
		return nil, err
	}
	return r.list(func(c models.Content) bool { return hasID(articleIDs, c.ArticleID) }), nil
}

func (r *mockContentRepo) Insert(_ context.Context, content *models.Content) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Content.Insert"); err != nil {
		return err
	}
	if err := r.checkRow(content); err != nil {
		return err
	}
	n := r.s.countContents(content.ChapterID)
	at, err := ordering.ClampInsert(content.Index, n)
	if err != nil {
		return err
	}
	r.s.shiftContents(content.ChapterID, ordering.InsertShift(at, n))
	content.ID = r.s.newID()
	content.Index = at

	stored := *content
	if stored.Code != nil {
		code := *stored.Code
		stored.Code = &code
	}
	r.s.data.contents[stored.ID] = stored
	return nil
}

func (r *mockContentRepo) Update(_ context.Context, content *models.Content) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Content.Update"); err != nil {
		return err
	}
	current, ok := r.s.data.contents[content.ID]
	if !ok {
		return apperr.NotFound("content %d not found", content.ID)
	}
	if err := r.checkRow(content); err != nil {
		return err
	}

	current.Kind = content.Kind
	current.Body = content.Body
	current.URL = content.URL
	current.Code = nil
	if content.Code != nil {
		code := *content.Code
		current.Code = &code
	}
	r.s.data.contents[content.ID] = current
	return nil
}

func (r *mockContentRepo) Move(_ context.Context, id int64, index int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Content.Move"); err != nil {
		return 0, err
	}
	c, ok := r.s.data.contents[id]
	if !ok {
		return 0, apperr.NotFound("content %d not found", id)
	}
	to, err := ordering.ClampMove(index, r.s.countContents(c.ChapterID))
	if err != nil {
		return 0, err
	}
	if to == c.Index {
		return to, nil
	}
	r.s.shiftContents(c.ChapterID, ordering.MoveShift(c.Index, to))
	c.Index = to
	r.s.data.contents[id] = c
	return to, nil
}

func (r *mockContentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Content.Delete"); err != nil {
		return err
	}
	c, ok := r.s.data.contents[id]
	if !ok {
		return apperr.NotFound("content %d not found", id)
	}
	n := r.s.countContents(c.ChapterID)
	delete(r.s.data.contents, id)
	r.s.shiftContents(c.ChapterID, ordering.RemoveShift(c.Index, n))
	return nil
}

type mockTagRepo struct{ s *MockStore }

func (r *mockTagRepo) List(_ context.Context) ([]models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Tag.List"); err != nil {
		return nil, err
	}
	out := []models.Tag{}
	for _, t := range r.s.data.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (r *mockTagRepo) FindByLabel(_ context.Context, label string) (*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Tag.FindByLabel"); err != nil {
		return nil, err
	}
	for _, t := range r.s.data.tags {
		if t.Label == label {
			return &t, nil
		}
	}
	return nil, apperr.NotFound("tag %q not found", label)
}

func (r *mockTagRepo) Insert(_ context.Context, tag *models.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Tag.Insert"); err != nil {
		return err
	}
	for _, t := range r.s.data.tags {
		if t.Label == tag.Label {
			return apperr.Conflict("tag label already exists")
		}
	}
	tag.ID = r.s.newID()
	r.s.data.tags[tag.ID] = *tag
	return nil
}

func (r *mockTagRepo) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Tag.ExistingIDs"); err != nil {
		return nil, err
	}
	out := []int64{}
	for _, id := range ids {
		if _, ok := r.s.data.tags[id]; ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *mockTagRepo) tagsOf(links map[int64][]int64, ownerIDs []int64) map[int64][]models.Tag {
	out := make(map[int64][]models.Tag, len(ownerIDs))
	for _, owner := range ownerIDs {
		for _, tagID := range links[owner] {
			out[owner] = append(out[owner], r.s.data.tags[tagID])
		}
		sort.Slice(out[owner], func(i, j int) bool { return out[owner][i].Label < out[owner][j].Label })
	}
	return out
}

func (r *mockTagRepo) ListForArticles(_ context.Context, articleIDs []int64) (map[int64][]models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Tag.ListForArticles"); err != nil {
		return nil, err
	}
	return r.tagsOf(r.s.data.articleTags, articleIDs), nil
}

func (r *mockTagRepo) ListForProjects(_ context.Context, projectIDs []int64) (map[int64][]models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Tag.ListForProjects"); err != nil {
		return nil, err
	}
	return r.tagsOf(r.s.data.projectTags, projectIDs), nil
}

func (r *mockTagRepo) attach(links map[int64][]int64, owner int64, tagIDs []int64) error {
	for _, id := range tagIDs {
		if _, ok := r.s.data.tags[id]; !ok {
			return apperr.Validation("unknown tag id")
		}
	}
	for _, id := range tagIDs {
		if !hasID(links[owner], id) {
			links[owner] = append(links[owner], id)
		}
	}
	return nil
}

func (r *mockTagRepo) AttachToArticle(_ context.Context, articleID int64, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Tag.AttachToArticle"); err != nil {
		return err
	}
	if _, ok := r.s.data.articles[articleID]; !ok {
		return apperr.Validation("unknown article id")
	}
	return r.attach(r.s.data.articleTags, articleID, tagIDs)
}

func (r *mockTagRepo) ReplaceArticleTags(_ context.Context, articleID int64, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Tag.ReplaceArticleTags"); err != nil {
		return err
	}
	if _, ok := r.s.data.articles[articleID]; !ok {
		return apperr.Validation("unknown article id")
	}
	kept := []int64{}
	for _, id := range r.s.data.articleTags[articleID] {
		if hasID(tagIDs, id) {
			kept = append(kept, id)
		}
	}
	r.s.data.articleTags[articleID] = kept
	return r.attach(r.s.data.articleTags, articleID, tagIDs)
}

func (r *mockTagRepo) AttachToProject(_ context.Context, projectID int64, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Tag.AttachToProject"); err != nil {
		return err
	}
	if _, ok := r.s.data.projects[projectID]; !ok {
		return apperr.Validation("unknown project id")
	}
	return r.attach(r.s.data.projectTags, projectID, tagIDs)
}

func (r *mockTagRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Tag.Count"); err != nil {
		return 0, err
	}
	return len(r.s.data.tags), nil
}

type mockProjectRepo struct{ s *MockStore }

func (r *mockProjectRepo) GetByID(_ context.Context, id int64) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Project.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.projects[id]
	if !ok {
		return nil, apperr.NotFound("project %d not found", id)
	}
	return &p, nil
}

func (r *mockProjectRepo) GetByIDs(_ context.Context, ids []int64) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Project.GetByIDs"); err != nil {
		return nil, err
	}
	out := []models.Project{}
	for _, id := range ids {
		if p, ok := r.s.data.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *mockProjectRepo) sorted(keep func(models.Project) bool) []models.Project {
	out := []models.Project{}
	for _, p := range r.s.data.projects {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *mockProjectRepo) List(_ context.Context) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Project.List"); err != nil {
		return nil, err
	}
	return r.sorted(func(models.Project) bool { return true }), nil
}

func (r *mockProjectRepo) ListTagged(_ context.Context, tagID int64) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Project.ListTagged"); err != nil {
		return nil, err
	}
	return r.sorted(func(p models.Project) bool { return hasID(r.s.data.projectTags[p.ID], tagID) }), nil
}

func (r *mockProjectRepo) Search(_ context.Context, query string) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Project.Search"); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	ids := []int64{}
	if query == "" {
		return ids, nil
	}
	for _, p := range r.sorted(func(p models.Project) bool { return containsFold(p.Title, query) }) {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r *mockProjectRepo) Insert(_ context.Context, project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Project.Insert"); err != nil {
		return err
	}
	project.ID = r.s.newID()
	r.s.data.projects[project.ID] = *project
	return nil
}

func (r *mockProjectRepo) AddImage(_ context.Context, image *models.ProjectImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Project.AddImage"); err != nil {
		return err
	}
	if _, ok := r.s.data.projects[image.ProjectID]; !ok {
		return apperr.Validation("unknown project id")
	}
	image.ID = r.s.newID()
	r.s.data.images[image.ID] = *image
	return nil
}

func (r *mockProjectRepo) GalleryFor(_ context.Context, projectIDs []int64) (map[int64][]models.ProjectImage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Project.GalleryFor"); err != nil {
		return nil, err
	}
	out := make(map[int64][]models.ProjectImage, len(projectIDs))
	for _, img := range r.s.data.images {
		if hasID(projectIDs, img.ProjectID) {
			out[img.ProjectID] = append(out[img.ProjectID], img)
		}
	}
	for id := range out {
		imgs := out[id]
		sort.Slice(imgs, func(i, j int) bool { return imgs[i].ID < imgs[j].ID })
	}
	return out, nil
}

func (r *mockProjectRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.failure("Project.Count"); err != nil {
		return 0, err
	}
	return len(r.s.data.projects), nil
}

type mockLogRepo struct{ s *MockStore }

func (r *mockLogRepo) InsertBatch(_ context.Context, entries []models.LogEntry) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Log.InsertBatch"); err != nil {
		return 0, err
	}
	for _, e := range entries {
		e.ID = int64(len(r.s.Logs) + 1)
		r.s.Logs = append(r.s.Logs, e)
	}
	return len(entries), nil
}

// LogCount returns the number of persisted log entries
func (s *MockStore) LogCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Logs)
}
