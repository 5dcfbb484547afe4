package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/guimauveb/guimauve.io/internal/models"
)

// logRepo is the concrete implementation of LogRepository.
// It always runs on the pool: COPY needs its own transaction.
type logRepo struct {
	db *sql.DB
}

// NewLogRepo creates a new log repository
func NewLogRepo(db *sql.DB) LogRepository {
	return &logRepo{db: db}
}

// InsertBatch inserts log entries using PostgreSQL COPY
func (r *logRepo) InsertBatch(ctx context.Context, entries []models.LogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr("begin log batch", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("logs", "level", "message", "created_at"))
	if err != nil {
		return 0, wrapErr("prepare log copy", err)
	}
	defer stmt.Close()

	now := time.Now()
	inserted := 0
	for _, e := range entries {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx, e.Level, e.Message, createdAt); err != nil {
			return 0, wrapErr("copy log entry", err)
		}
		inserted++
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, wrapErr("flush log copy", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapErr("commit log batch", err)
	}
	return inserted, nil
}
