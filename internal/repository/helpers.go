package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/ordering"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func expectRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "rows affected")
	}
	if n == 0 {
		return apperr.NotFound("%s %d not found", entity, id)
	}
	return nil
}

func queryIDs(ctx context.Context, q Querier, op string, b sq.SelectBuilder) ([]int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, apperr.Internal(err, op)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr(op, err)
		}
		ids = append(ids, id)
	}
	return ids, wrapErr(op, rows.Err())
}

func count(ctx context.Context, q Querier, op string, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, apperr.Internal(err, op)
	}
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, wrapErr(op, err)
	}
	return n, nil
}

// reflow applies an ordering shift to the children of one parent
func reflow(ctx context.Context, q Querier, table, parentColumn string, parentID int64, s ordering.Shift) error {
	if s.Empty() {
		return nil
	}
	query, args, err := psql.Update(table).
		Set(`"index"`, sq.Expr(`"index" + ?`, s.Delta)).
		Where(sq.Eq{parentColumn: parentID}).
		Where(`"index" BETWEEN ? AND ?`, s.From, s.To).
		ToSql()
	if err != nil {
		return apperr.Internal(err, "build reflow")
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return wrapErr(fmt.Sprintf("reflow %s", table), err)
	}
	return nil
}

func siblingCount(ctx context.Context, q Querier, table, parentColumn string, parentID int64) (int, error) {
	return count(ctx, q, "count "+table, psql.Select("COUNT(*)").From(table).Where(sq.Eq{parentColumn: parentID}))
}
