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

// Store is the persistence boundary of the lending core. Reads that feed a
// mutation run inside WithinTx against the Tx primitives, which take row
// locks; everything else is a plain snapshot read.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// catalog (global, append-only)
	FindBookMatch(ctx context.Context, externalID, title string, authors model.StringList) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)

	// class snapshot
	ListCatalog(ctx context.Context, teacherID int) ([]model.Book, error)
	ListShelf(ctx context.Context, teacherID int) ([]model.ShelfEntry, error)
	ListStudents(ctx context.Context, teacherID int) ([]model.Student, error)
	ListRequests(ctx context.Context, teacherID int, resolvedSince time.Time) ([]model.Request, error)
	ListCheckouts(ctx context.Context, teacherID int) ([]model.Checkout, error)

	// accounts
	CreateTeacher(ctx context.Context, t model.Teacher) (model.Teacher, error)
	CreateStudent(ctx context.Context, s model.Student) (model.Student, error)
	TeacherByEmail(ctx context.Context, email string) (model.Teacher, error)
	StudentByEmail(ctx context.Context, email string) (model.Student, error)
	TeacherByShelfCode(ctx context.Context, code string) (model.Teacher, error)
	FirstTeacher(ctx context.Context) (model.Teacher, error)
	UpdateShelfCode(ctx context.Context, teacherID int, code string) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	teachersTableName  = `teachers`
	studentsTableName  = `students`
	booksTableName     = `books`
	shelfTableName     = `shelf_entries`
	requestsTableName  = `requests`
	checkoutsTableName = `checkouts`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var bookColumns = []string{
	"id", "external_id", "title", "authors", "isbn", "cover_url",
	"description", "genre", "reading_level", "interest", "source", "created_at",
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	q, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errors.Wrap(errs.ErrNotFound, "book not found")
		}
		return model.Book{}, err
	}
	return book, nil
}

// FindBookMatch deduplicates catalog entries: the external identifier wins,
// else case-insensitive (title, joined authors) equality.
func (r *repository) FindBookMatch(ctx context.Context, externalID, title string, authors model.StringList) (model.Book, error) {
	if externalID != "" {
		q, args, err := qb.Select(bookColumns...).
			From(booksTableName).
			Where(sq.Eq{"external_id": externalID}).
			Limit(1).
			ToSql()
		if err != nil {
			return model.Book{}, err
		}
		var book model.Book
		err = r.db.GetContext(ctx, &book, q, args...)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, err
		}
	}

	q, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Expr("lower(title) = lower(?)", title)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var candidates []model.Book
	if err := r.db.SelectContext(ctx, &candidates, q, args...); err != nil {
		return model.Book{}, err
	}
	want := joinedAuthors(authors)
	for _, c := range candidates {
		if joinedAuthors(c.Authors) == want {
			return c, nil
		}
	}
	return model.Book{}, errors.Wrap(errs.ErrNotFound, "no catalog match")
}

func joinedAuthors(authors model.StringList) string {
	return strings.ToLower(strings.Join(authors, ", "))
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	q, args, err := qb.Insert(booksTableName).
		Columns("external_id", "title", "authors", "isbn", "cover_url",
			"description", "genre", "reading_level", "interest", "source").
		Values(book.ExternalID, book.Title, book.Authors, book.Isbn, book.CoverURL,
			book.Description, book.Genre, book.ReadLevel, book.Interest, book.Source).
		Suffix("returning " + strings.Join(bookColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var created model.Book
	if err := r.db.GetContext(ctx, &created, q, args...); err != nil {
		if isUniqueViolation(err) {
			// lost a create race on external_id; the winner is the match
			return r.FindBookMatch(ctx, book.ExternalID.String, book.Title, book.Authors)
		}
		r.log.Error("CreateBook", zap.String("q", q), zap.Error(err))
		return model.Book{}, err
	}
	return created, nil
}

func (r *repository) ListCatalog(ctx context.Context, teacherID int) ([]model.Book, error) {
	cols := make([]string, len(bookColumns))
	for i, c := range bookColumns {
		cols[i] = "b." + c
	}
	q, args, err := qb.Select(cols...).
		From(booksTableName + " b").
		Join(shelfTableName + " se on se.book_id = b.id").
		Where(sq.Eq{"se.teacher_id": teacherID}).
		OrderBy("b.created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) ListShelf(ctx context.Context, teacherID int) ([]model.ShelfEntry, error) {
	q, args, err := qb.Select("id", "teacher_id", "book_id", "total", "available", "created_at").
		From(shelfTableName).
		Where(sq.Eq{"teacher_id": teacherID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var entries []model.ShelfEntry
	if err := r.db.SelectContext(ctx, &entries, q, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListStudents(ctx context.Context, teacherID int) ([]model.Student, error) {
	q, args, err := qb.Select("id", "name", "email", "password_hash", "teacher_id", "created_at").
		From(studentsTableName).
		Where(sq.Eq{"teacher_id": teacherID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var students []model.Student
	if err := r.db.SelectContext(ctx, &students, q, args...); err != nil {
		return nil, err
	}
	return students, nil
}

// ListRequests returns the class's pending requests plus those resolved after
// resolvedSince, for transient client display.
func (r *repository) ListRequests(ctx context.Context, teacherID int, resolvedSince time.Time) ([]model.Request, error) {
	q, args, err := qb.Select("r.id", "r.book_id", "r.student_id", "r.status", "r.created_at", "r.resolved_at").
		From(requestsTableName + " r").
		Join(studentsTableName + " s on s.id = r.student_id").
		Where(sq.Eq{"s.teacher_id": teacherID}).
		Where(sq.Or{
			sq.Eq{"r.status": model.RequestPending},
			sq.GtOrEq{"r.resolved_at": resolvedSince},
		}).
		OrderBy("r.created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var requests []model.Request
	if err := r.db.SelectContext(ctx, &requests, q, args...); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) ListCheckouts(ctx context.Context, teacherID int) ([]model.Checkout, error) {
	q, args, err := qb.Select("c.id", "c.book_id", "c.student_id", "c.status",
		"c.return_requested", "c.return_notes", "c.checkout_date", "c.return_date").
		From(checkoutsTableName + " c").
		Join(studentsTableName + " s on s.id = c.student_id").
		Where(sq.Eq{"s.teacher_id": teacherID}).
		OrderBy("c.checkout_date desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var checkouts []model.Checkout
	if err := r.db.SelectContext(ctx, &checkouts, q, args...); err != nil {
		return nil, err
	}
	return checkouts, nil
}
