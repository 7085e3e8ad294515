package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/errs"
)

const (
	txMaxAttempts = 3
	txRetryDelay  = 50 * time.Millisecond
	lockTimeout   = `set local lock_timeout = '3s'`
)

// WithinTx runs fn in a transaction whose row locks serialize every
// coordinator unit touching the same shelf/request/checkout rows. Lock
// waiting is bounded; transient contention retries the whole unit a fixed
// number of times, then surfaces ErrUnavailable. Any error rolls back.
func (r *repository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		lastErr = r.runTx(ctx, fn)
		if lastErr == nil || !isTransient(lastErr) {
			return lastErr
		}
		r.log.Warn("tx contention, retrying",
			zap.Int("attempt", attempt), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(txRetryDelay):
		}
	}
	return errors.Wrap(errs.ErrUnavailable, lastErr.Error())
}

func (r *repository) runTx(ctx context.Context, fn func(tx Tx) error) error {
	txx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	if _, err := txx.ExecContext(ctx, lockTimeout); err != nil {
		_ = txx.Rollback()
		return err
	}
	if err := fn(&txStore{tx: txx, log: r.log}); err != nil {
		_ = txx.Rollback()
		return err
	}
	return txx.Commit()
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.LockNotAvailable:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}
