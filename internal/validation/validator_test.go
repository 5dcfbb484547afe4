package validation

import (
	"errors"
	"testing"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidateCreateArticleForm(t *testing.T) {
	v := New()

	valid := func() models.CreateArticleForm {
		return models.CreateArticleForm{
			Title:    "Hello",
			Headline: "A first post",
			Image:    "/media/hello.png",
			TagIDs:   []int64{1, 2},
			Chapters: []models.ChapterForm{{
				Title: "Intro",
				Index: 0,
				Contents: []models.ContentForm{
					{Index: 0, Kind: models.ContentKindText, Body: "hi"},
					{Index: 1, Kind: models.ContentKindCode, Body: "ls", Language: ptr(models.LanguageBash)},
				},
			}},
		}
	}

	tests := []struct {
		name       string
		mutate     func(f *models.CreateArticleForm)
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid form",
			mutate:     func(f *models.CreateArticleForm) {},
			wantErrors: 0,
		},
		{
			name:       "missing title",
			mutate:     func(f *models.CreateArticleForm) { f.Title = "" },
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "negative chapter index",
			mutate:     func(f *models.CreateArticleForm) { f.Chapters[0].Index = -1 },
			wantErrors: 1,
			wantFields: []string{"chapters[0].index"},
		},
		{
			name:       "negative content index",
			mutate:     func(f *models.CreateArticleForm) { f.Chapters[0].Contents[1].Index = -3 },
			wantErrors: 1,
			wantFields: []string{"chapters[0].contents[1].index"},
		},
		{
			name:       "zero tag id",
			mutate:     func(f *models.CreateArticleForm) { f.TagIDs = []int64{0} },
			wantErrors: 1,
			wantFields: []string{"tag_ids[0]"},
		},
		{
			name: "unknown kind and bad url",
			mutate: func(f *models.CreateArticleForm) {
				f.Chapters[0].Contents[0].Kind = "Video"
				f.Chapters[0].Contents[0].URL = ptr("not a url")
			},
			wantErrors: 2,
			wantFields: []string{"chapters[0].contents[0].kind", "chapters[0].contents[0].url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid()
			tt.mutate(&form)

			err := v.Validate(form)
			if tt.wantErrors == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected *apperr.Error, got %T", err)
			}
			if appErr.Kind != apperr.KindValidation {
				t.Errorf("Expected validation kind, got %s", appErr.Kind)
			}
			if len(appErr.Details) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %v", tt.wantErrors, len(appErr.Details), appErr.Details)
			}
			for _, field := range tt.wantFields {
				if _, ok := appErr.Details[field]; !ok {
					t.Errorf("Expected error on field %q, got %v", field, appErr.Details)
				}
			}
		})
	}
}

func TestValidateUpdateForms(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		form    any
		wantErr bool
	}{
		{"empty article update", models.UpdateArticleForm{}, false},
		{"blank title", models.UpdateArticleForm{Title: ptr("")}, true},
		{"tag ids replaced by empty set", models.UpdateArticleForm{TagIDs: &[]int64{}}, false},
		{"chapter moved to 0", models.UpdateChapterForm{Index: ptr(0)}, false},
		{"chapter moved to -1", models.UpdateChapterForm{Index: ptr(-1)}, true},
		{"content kind change", models.UpdateContentForm{Kind: ptr(models.ContentKindImage)}, false},
		{"content url cleared", models.UpdateContentForm{URL: ptr("")}, false},
		{"content url replaced", models.UpdateContentForm{URL: ptr("https://guimauve.io")}, false},
		{"content url malformed", models.UpdateContentForm{URL: ptr("not a url")}, true},
		{"publish without flag", models.PublishForm{}, true},
		{"publish false", models.PublishForm{Published: ptr(false)}, false},
		{"chapter without article", models.NewChapterForm{Title: "x"}, true},
		{"tag without label", models.NewTagForm{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.form)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("Expected validation kind, got %s", apperr.KindOf(err))
			}
		})
	}
}

func TestFriendlyMessages(t *testing.T) {
	err := New().Validate(models.NewTagForm{})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected *apperr.Error, got %T", err)
	}
	if got := appErr.Details["label"]; got != "is required" {
		t.Errorf("Expected 'is required', got %q", got)
	}
}
