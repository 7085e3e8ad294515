package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
)

// Tx exposes the row-locked primitives a coordinator unit is built from.
// The ...ForUpdate reads pin their rows until commit; writes assume the row
// was locked earlier in the same unit.
type Tx interface {
	GetRequestForUpdate(ctx context.Context, id int) (model.Request, error)
	GetShelfEntryForUpdate(ctx context.Context, teacherID, bookID int) (model.ShelfEntry, error)
	GetCheckoutForUpdate(ctx context.Context, id int) (model.Checkout, error)
	// GetStudentForUpdate pins the student row so units counting or changing
	// that student's active checkouts serialize; the bag cap has no
	// store-level constraint backing it. Units lock the student before the
	// shelf entry.
	GetStudentForUpdate(ctx context.Context, id int) (model.Student, error)

	GetBook(ctx context.Context, id int) (model.Book, error)

	HasPendingRequest(ctx context.Context, bookID, studentID int) (bool, error)
	HasActiveCheckout(ctx context.Context, bookID, studentID int) (bool, error)
	CountActiveCheckouts(ctx context.Context, studentID int) (int, error)

	InsertShelfEntry(ctx context.Context, teacherID, bookID, copies int) (model.ShelfEntry, error)
	SetShelfCounts(ctx context.Context, entryID, total, available int) (model.ShelfEntry, error)
	AdjustAvailable(ctx context.Context, entryID, delta int) (model.ShelfEntry, error)

	InsertRequest(ctx context.Context, bookID, studentID int) (model.Request, error)
	ResolveRequest(ctx context.Context, id int, status model.RequestStatus) (model.Request, error)

	InsertCheckout(ctx context.Context, bookID, studentID int) (model.Checkout, error)
	SetReturnRequested(ctx context.Context, id int) (model.Checkout, error)
	CloseCheckout(ctx context.Context, id int, notes string) (model.Checkout, error)
}

type txStore struct {
	tx  *sqlx.Tx
	log *zap.Logger
}

var (
	requestColumns  = []string{"id", "book_id", "student_id", "status", "created_at", "resolved_at"}
	checkoutColumns = []string{"id", "book_id", "student_id", "status", "return_requested", "return_notes", "checkout_date", "return_date"}
	shelfColumns    = []string{"id", "teacher_id", "book_id", "total", "available", "created_at"}
)

func (t *txStore) GetRequestForUpdate(ctx context.Context, id int) (model.Request, error) {
	q, args, err := qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.Request{}, err
	}
	var req model.Request
	if err := t.tx.GetContext(ctx, &req, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, errors.Wrap(errs.ErrNotFound, "request not found")
		}
		return model.Request{}, err
	}
	return req, nil
}

func (t *txStore) GetShelfEntryForUpdate(ctx context.Context, teacherID, bookID int) (model.ShelfEntry, error) {
	q, args, err := qb.Select(shelfColumns...).
		From(shelfTableName).
		Where(sq.Eq{"teacher_id": teacherID, "book_id": bookID}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.ShelfEntry{}, err
	}
	var entry model.ShelfEntry
	if err := t.tx.GetContext(ctx, &entry, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ShelfEntry{}, errors.Wrap(errs.ErrNotFound, "shelf entry not found")
		}
		return model.ShelfEntry{}, err
	}
	return entry, nil
}

func (t *txStore) GetCheckoutForUpdate(ctx context.Context, id int) (model.Checkout, error) {
	q, args, err := qb.Select(checkoutColumns...).
		From(checkoutsTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.Checkout{}, err
	}
	var c model.Checkout
	if err := t.tx.GetContext(ctx, &c, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Checkout{}, errors.Wrap(errs.ErrNotFound, "checkout not found")
		}
		return model.Checkout{}, err
	}
	return c, nil
}

func (t *txStore) GetBook(ctx context.Context, id int) (model.Book, error) {
	q, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := t.tx.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errors.Wrap(errs.ErrNotFound, "book not found")
		}
		return model.Book{}, err
	}
	return book, nil
}

func (t *txStore) GetStudentForUpdate(ctx context.Context, id int) (model.Student, error) {
	q, args, err := qb.Select(studentColumns...).
		From(studentsTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.Student{}, err
	}
	var s model.Student
	if err := t.tx.GetContext(ctx, &s, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Student{}, errors.Wrap(errs.ErrNotFound, "student not found")
		}
		return model.Student{}, err
	}
	return s, nil
}

func (t *txStore) HasPendingRequest(ctx context.Context, bookID, studentID int) (bool, error) {
	return t.exists(ctx, requestsTableName, sq.Eq{
		"book_id": bookID, "student_id": studentID, "status": model.RequestPending,
	})
}

func (t *txStore) HasActiveCheckout(ctx context.Context, bookID, studentID int) (bool, error) {
	return t.exists(ctx, checkoutsTableName, sq.Eq{
		"book_id": bookID, "student_id": studentID, "status": model.CheckedOut,
	})
}

func (t *txStore) exists(ctx context.Context, table string, pred sq.Eq) (bool, error) {
	q, args, err := qb.Select("1").From(table).Where(pred).Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	if err := t.tx.GetContext(ctx, &one, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *txStore) CountActiveCheckouts(ctx context.Context, studentID int) (int, error) {
	q, args, err := qb.Select("count(*)").
		From(checkoutsTableName).
		Where(sq.Eq{"student_id": studentID, "status": model.CheckedOut}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := t.tx.GetContext(ctx, &count, q, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func (t *txStore) InsertShelfEntry(ctx context.Context, teacherID, bookID, copies int) (model.ShelfEntry, error) {
	q, args, err := qb.Insert(shelfTableName).
		Columns("teacher_id", "book_id", "total", "available").
		Values(teacherID, bookID, copies, copies).
		Suffix("returning " + strings.Join(shelfColumns, ", ")).
		ToSql()
	if err != nil {
		return model.ShelfEntry{}, err
	}
	var entry model.ShelfEntry
	if err := t.tx.GetContext(ctx, &entry, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.ShelfEntry{}, errors.Wrap(errs.ErrConflict, "shelf entry already exists")
		}
		return model.ShelfEntry{}, err
	}
	return entry, nil
}

// SetShelfCounts writes both counters; used by teacher copy-count edits where
// the delta applies to total and available alike.
func (t *txStore) SetShelfCounts(ctx context.Context, entryID, total, available int) (model.ShelfEntry, error) {
	q, args, err := qb.Update(shelfTableName).
		Set("total", total).
		Set("available", available).
		Where(sq.Eq{"id": entryID}).
		Suffix("returning " + strings.Join(shelfColumns, ", ")).
		ToSql()
	if err != nil {
		return model.ShelfEntry{}, err
	}
	var entry model.ShelfEntry
	if err := t.tx.GetContext(ctx, &entry, q, args...); err != nil {
		if isCheckViolation(err) {
			return model.ShelfEntry{}, errors.Wrap(errs.ErrConsistency, "shelf counters out of bounds")
		}
		t.log.Error("SetShelfCounts", zap.String("q", q), zap.Any("args", args))
		return model.ShelfEntry{}, err
	}
	return entry, nil
}

// AdjustAvailable moves availability alone (approval -1, return +1). The
// table CHECK keeps available inside [0, total]; tripping it means the
// counters were already inconsistent before this unit.
func (t *txStore) AdjustAvailable(ctx context.Context, entryID, delta int) (model.ShelfEntry, error) {
	q, args, err := qb.Update(shelfTableName).
		Set("available", sq.Expr("available + ?", delta)).
		Where(sq.Eq{"id": entryID}).
		Suffix("returning " + strings.Join(shelfColumns, ", ")).
		ToSql()
	if err != nil {
		return model.ShelfEntry{}, err
	}
	var entry model.ShelfEntry
	if err := t.tx.GetContext(ctx, &entry, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ShelfEntry{}, errors.Wrap(errs.ErrNotFound, "shelf entry not found")
		}
		if isCheckViolation(err) {
			return model.ShelfEntry{}, errors.Wrap(errs.ErrConsistency, "availability outside [0, total]")
		}
		return model.ShelfEntry{}, err
	}
	return entry, nil
}

func (t *txStore) InsertRequest(ctx context.Context, bookID, studentID int) (model.Request, error) {
	q, args, err := qb.Insert(requestsTableName).
		Columns("book_id", "student_id", "status").
		Values(bookID, studentID, model.RequestPending).
		Suffix("returning " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}
	var req model.Request
	if err := t.tx.GetContext(ctx, &req, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Request{}, errors.Wrap(errs.ErrConflict, "request already pending")
		}
		return model.Request{}, err
	}
	return req, nil
}

func (t *txStore) ResolveRequest(ctx context.Context, id int, status model.RequestStatus) (model.Request, error) {
	q, args, err := qb.Update(requestsTableName).
		Set("status", status).
		Set("resolved_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("returning " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Request{}, err
	}
	var req model.Request
	if err := t.tx.GetContext(ctx, &req, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, errors.Wrap(errs.ErrNotFound, "request not found")
		}
		return model.Request{}, err
	}
	return req, nil
}

func (t *txStore) InsertCheckout(ctx context.Context, bookID, studentID int) (model.Checkout, error) {
	q, args, err := qb.Insert(checkoutsTableName).
		Columns("book_id", "student_id", "status", "return_requested", "return_notes").
		Values(bookID, studentID, model.CheckedOut, false, "").
		Suffix("returning " + strings.Join(checkoutColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Checkout{}, err
	}
	var c model.Checkout
	if err := t.tx.GetContext(ctx, &c, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Checkout{}, errors.Wrap(errs.ErrConflict, "already checked out")
		}
		return model.Checkout{}, err
	}
	return c, nil
}

func (t *txStore) SetReturnRequested(ctx context.Context, id int) (model.Checkout, error) {
	q, args, err := qb.Update(checkoutsTableName).
		Set("return_requested", true).
		Where(sq.Eq{"id": id}).
		Suffix("returning " + strings.Join(checkoutColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Checkout{}, err
	}
	var c model.Checkout
	if err := t.tx.GetContext(ctx, &c, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Checkout{}, errors.Wrap(errs.ErrNotFound, "checkout not found")
		}
		return model.Checkout{}, err
	}
	return c, nil
}

func (t *txStore) CloseCheckout(ctx context.Context, id int, notes string) (model.Checkout, error) {
	q, args, err := qb.Update(checkoutsTableName).
		Set("status", model.Returned).
		Set("return_notes", notes).
		Set("return_date", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("returning " + strings.Join(checkoutColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Checkout{}, err
	}
	var c model.Checkout
	if err := t.tx.GetContext(ctx, &c, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Checkout{}, errors.Wrap(errs.ErrNotFound, "checkout not found")
		}
		return model.Checkout{}, err
	}
	return c, nil
}
