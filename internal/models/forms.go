package models

// Request forms for the editable surface. The yaml tags let seed fixtures
// reuse the same shapes.

// CreateArticleForm is the payload of POST /articles
type CreateArticleForm struct {
	Title        string        `json:"title" yaml:"title" validate:"required,max=255"`
	Headline     string        `json:"headline" yaml:"headline" validate:"required"`
	Image        string        `json:"image" yaml:"image" validate:"required"`
	ImageCredits *string       `json:"image_credits" yaml:"image_credits"`
	Published    bool          `json:"published" yaml:"published"`
	TagIDs       []int64       `json:"tag_ids" yaml:"tag_ids" validate:"dive,gt=0"`
	Chapters     []ChapterForm `json:"chapters" yaml:"chapters" validate:"dive"`
}

// ChapterForm describes one chapter inside CreateArticleForm
type ChapterForm struct {
	Title    string        `json:"title" yaml:"title" validate:"required,max=255"`
	Index    int           `json:"index" yaml:"index" validate:"gte=0"`
	Contents []ContentForm `json:"contents" yaml:"contents" validate:"dive"`
}

// ContentForm describes one content inside ChapterForm
type ContentForm struct {
	Index    int         `json:"index" yaml:"index" validate:"gte=0"`
	Kind     ContentKind `json:"kind" yaml:"kind" validate:"omitempty,oneof=Text Comment Link Code Image"`
	Body     string      `json:"body" yaml:"body"`
	Language *Language   `json:"language" yaml:"language" validate:"omitempty,oneof=Rust Bash Python Sql Html Css Javascript Typescript Yaml"`
	URL      *string     `json:"url" yaml:"url" validate:"omitempty,url"`
}

// UpdateArticleForm is the payload of PATCH /articles/:id.
// A non-nil TagIDs replaces the whole tag set.
type UpdateArticleForm struct {
	Title        *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Headline     *string  `json:"headline" validate:"omitempty,min=1"`
	Image        *string  `json:"image" validate:"omitempty,min=1"`
	ImageCredits *string  `json:"image_credits"`
	Published    *bool    `json:"published"`
	TagIDs       *[]int64 `json:"tag_ids" validate:"omitempty,dive,gt=0"`
}

// PublishForm is the payload of PATCH /articles/publish/:id
type PublishForm struct {
	Published *bool `json:"published" validate:"required"`
}

// NewChapterForm is the payload of POST /chapters
type NewChapterForm struct {
	ArticleID int64  `json:"article_id" validate:"required,gt=0"`
	Index     int    `json:"index" validate:"gte=0"`
	Title     string `json:"title" validate:"required,max=255"`
}

// UpdateChapterForm is the payload of PATCH /chapters/:id; a set Index moves the chapter
type UpdateChapterForm struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=255"`
	Index *int    `json:"index" validate:"omitempty,gte=0"`
}

// NewContentForm is the payload of POST /contents
type NewContentForm struct {
	ChapterID int64       `json:"chapter_id" validate:"required,gt=0"`
	Index     int         `json:"index" validate:"gte=0"`
	Kind      ContentKind `json:"kind" validate:"omitempty,oneof=Text Comment Link Code Image"`
	Body      string      `json:"body"`
	Language  *Language   `json:"language" validate:"omitempty,oneof=Rust Bash Python Sql Html Css Javascript Typescript Yaml"`
	URL       *string     `json:"url" validate:"omitempty,url"`
}

// UpdateContentForm is the payload of PATCH /contents/:id. Nil fields keep
// their stored value; a set Index moves the content and an empty URL clears it.
type UpdateContentForm struct {
	Index    *int         `json:"index" validate:"omitempty,gte=0"`
	Kind     *ContentKind `json:"kind" validate:"omitempty,oneof=Text Comment Link Code Image"`
	Body     *string      `json:"body"`
	Language *Language    `json:"language" validate:"omitempty,oneof=Rust Bash Python Sql Html Css Javascript Typescript Yaml"`
	URL      *string      `json:"url" validate:"omitempty,url_or_empty"`
}

// NewTagForm is the payload of POST /tags
type NewTagForm struct {
	Label string `json:"label" yaml:"label" validate:"required,max=64"`
}

// CreateProjectForm is the payload of POST /projects
type CreateProjectForm struct {
	Title        string          `json:"title" yaml:"title" validate:"required,max=255"`
	Image        string          `json:"image" yaml:"image" validate:"required"`
	Description  string          `json:"description" yaml:"description" validate:"required"`
	Features     string          `json:"features" yaml:"features"`
	VisitLink    *string         `json:"visit_link" yaml:"visit_link" validate:"omitempty,url"`
	LiveLink     *string         `json:"live_link" yaml:"live_link" validate:"omitempty,url"`
	DownloadLink *string         `json:"download_link" yaml:"download_link" validate:"omitempty,url"`
	Git          *string         `json:"git" yaml:"git" validate:"omitempty,url"`
	Category     ProjectCategory `json:"category" yaml:"category" validate:"omitempty,oneof=WebApplication DesktopApplication"`
	TagIDs       []int64         `json:"tag_ids" yaml:"tag_ids" validate:"dive,gt=0"`
	Gallery      []string        `json:"gallery" yaml:"gallery" validate:"dive,required"`
}
