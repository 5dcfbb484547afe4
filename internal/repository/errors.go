package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"

	"github.com/guimauveb/guimauve.io/internal/apperr"
)

// constraintMessages gives client-facing wording for known constraints
var constraintMessages = map[string]string{
	"tags_label_key":                 "tag label already exists",
	"article_tags_pair_key":          "tag already attached to article",
	"project_tags_pair_key":          "tag already attached to project",
	"article_tags_tag_id_fkey":       "unknown tag id",
	"project_tags_tag_id_fkey":       "unknown tag id",
	"article_tags_article_id_fkey":   "unknown article id",
	"project_tags_project_id_fkey":   "unknown project id",
	"project_images_project_id_fkey": "unknown project id",
	"chapters_article_id_fkey":       "unknown article id",
	"contents_chapter_fkey":          "content must belong to its chapter's article",
	"contents_code_coherence":        "code content requires a language and highlighted html",
	"chapters_article_index_key":     "chapter index collision",
	"contents_chapter_index_key":     "content index collision",
}

// wrapErr classifies storage errors; errors that are already classified pass through
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s: not found", op)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return apperr.Transient(err, op)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		msg := constraintMessages[pqErr.Constraint]
		if msg == "" {
			msg = pqErr.Message
		}
		switch pqErr.Code {
		case "23505":
			return &apperr.Error{Kind: apperr.KindConflict, Message: msg, Err: err}
		case "23503", "23514", "23502", "22P02":
			return &apperr.Error{Kind: apperr.KindValidation, Message: msg, Err: err}
		case "40001", "40P01", "53300", "57P01", "57014":
			return apperr.Transient(err, op)
		}
		if pqErr.Code.Class() == "08" {
			return apperr.Transient(err, op)
		}
	}

	return apperr.Internal(err, op)
}
