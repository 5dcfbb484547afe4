package models

// Project is a portfolio entry
type Project struct {
	ID           int64           `json:"id" db:"id"`
	Title        string          `json:"title" db:"title"`
	Image        string          `json:"image" db:"image"`
	Description  string          `json:"description" db:"description"`
	Features     string          `json:"features" db:"features"`
	VisitLink    *string         `json:"visit_link,omitempty" db:"visit_link"`
	LiveLink     *string         `json:"live_link,omitempty" db:"live_link"`
	DownloadLink *string         `json:"download_link,omitempty" db:"download_link"`
	Git          *string         `json:"git,omitempty" db:"git"`
	Category     ProjectCategory `json:"category" db:"category"`
}

// ProjectImage is one picture of a project gallery
type ProjectImage struct {
	ID        int64  `json:"id" db:"id"`
	ProjectID int64  `json:"project_id" db:"project_id"`
	Image     string `json:"image" db:"image"`
}
