package models

import (
	"time"
)

// NestedArticle is the fully assembled read model of an article
type NestedArticle struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	PubDate      time.Time       `json:"pub_date"`
	Published    bool            `json:"published"`
	Headline     string          `json:"headline"`
	Image        string          `json:"image"`
	ImageCredits *string         `json:"image_credits"`
	Tags         []Tag           `json:"tags"`
	Chapters     []NestedChapter `json:"chapters"`
}

// NestedChapter is a chapter with its ordered contents
type NestedChapter struct {
	ID        int64           `json:"id"`
	ArticleID int64           `json:"article_id"`
	Index     int             `json:"index"`
	Title     string          `json:"title"`
	Contents  []NestedContent `json:"contents"`
}

// NestedContent is the flat wire shape of a Content.
// Language and HighlightedHTML are only present for code blocks.
type NestedContent struct {
	ID              int64       `json:"id"`
	ArticleID       int64       `json:"article_id"`
	ChapterID       int64       `json:"chapter_id"`
	Index           int         `json:"index"`
	Kind            ContentKind `json:"kind"`
	Body            string      `json:"body"`
	BodyURL         string      `json:"body_url"`
	Language        *Language   `json:"language,omitempty"`
	HighlightedHTML *string     `json:"highlighted_html,omitempty"`
	URL             *string     `json:"url,omitempty"`
}

// NestedProject is the fully assembled read model of a project
type NestedProject struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Image        string          `json:"image"`
	Description  string          `json:"description"`
	Features     string          `json:"features"`
	VisitLink    *string         `json:"visit_link"`
	LiveLink     *string         `json:"live_link"`
	DownloadLink *string         `json:"download_link"`
	Git          *string         `json:"git"`
	Category     ProjectCategory `json:"category"`
	Tags         []Tag           `json:"tags"`
	Gallery      []ProjectImage  `json:"gallery"`
}

// SearchResults is the dual map returned by search and tag lookups
type SearchResults struct {
	Articles IDMap[NestedArticle] `json:"articles"`
	Projects IDMap[NestedProject] `json:"projects"`
}

// StatusResponse is returned by commands that have nothing to assemble
type StatusResponse struct {
	Status string `json:"status"`
}

// Stats holds the entity counts reported by /metrics
type Stats struct {
	Articles int `json:"articles"`
	Projects int `json:"projects"`
	Tags     int `json:"tags"`
}
