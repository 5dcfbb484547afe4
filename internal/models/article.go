package models

import (
	"time"
)

// Article is the header row of a blog post
type Article struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	PubDate      time.Time `json:"pub_date" db:"pub_date"`
	Published    bool      `json:"published" db:"published"`
	Headline     string    `json:"headline" db:"headline"`
	Image        string    `json:"image" db:"image"`
	ImageCredits *string   `json:"image_credits,omitempty" db:"image_credits"`
}

// ArticleUpdate holds the header fields to overwrite; nil fields are left untouched
type ArticleUpdate struct {
	Title        *string
	Headline     *string
	Image        *string
	ImageCredits *string
	Published    *bool
}

// IsEmpty reports whether no field is set
func (u ArticleUpdate) IsEmpty() bool {
	return u.Title == nil && u.Headline == nil && u.Image == nil && u.ImageCredits == nil && u.Published == nil
}

// Chapter is an ordered section of an article
type Chapter struct {
	ID        int64  `json:"id" db:"id"`
	ArticleID int64  `json:"article_id" db:"article_id"`
	Index     int    `json:"index" db:"index"`
	Title     string `json:"title" db:"title"`
}

// CodeBlock carries the fields only a Code content has
type CodeBlock struct {
	Language        Language
	HighlightedHTML string
}

// Content is a typed block inside a chapter.
// Code is non-nil exactly when Kind is ContentKindCode.
type Content struct {
	ID        int64
	ArticleID int64
	ChapterID int64
	Index     int
	Kind      ContentKind
	Body      string
	URL       *string
	Code      *CodeBlock
}

// Language returns the code language, nil for non-code kinds
func (c *Content) Language() *Language {
	if c.Code == nil {
		return nil
	}
	lang := c.Code.Language
	return &lang
}

// HighlightedHTML returns the stored highlight, nil for non-code kinds
func (c *Content) HighlightedHTML() *string {
	if c.Code == nil {
		return nil
	}
	html := c.Code.HighlightedHTML
	return &html
}

// Coherent reports whether Kind and Code agree
func (c *Content) Coherent() bool {
	if c.Kind == ContentKindCode {
		return c.Code != nil && c.Code.Language.IsValid() && c.Code.HighlightedHTML != ""
	}
	return c.Code == nil
}

// Tag is a label shared by articles and projects
type Tag struct {
	ID    int64  `json:"id" db:"id"`
	Label string `json:"label" db:"label"`
}

// LogEntry is a persisted log line
type LogEntry struct {
	ID        int64     `json:"id" db:"id"`
	Level     string    `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
