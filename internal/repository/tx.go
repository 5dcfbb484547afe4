package repository

import (
	"context"
	"database/sql"
)

// pgTransactor opens read committed transactions on the pool
type pgTransactor struct {
	db  *sql.DB
	log LogRepository
}

func (t *pgTransactor) InTx(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	// No-op after Commit; releases the connection on every other path
	defer tx.Rollback()

	repos := bind(tx)
	repos.Log = t.log
	repos.Tx = openTx{repos: repos}

	if err := fn(repos); err != nil {
		return err
	}

	// Deferred unique constraints are checked here
	if err := tx.Commit(); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// openTx is the transactor of repositories already bound to a transaction
type openTx struct {
	repos *Repositories
}

func (o openTx) InTx(_ context.Context, fn func(repos *Repositories) error) error {
	return fn(o.repos)
}
