package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
)

var (
	teacherColumns = []string{"id", "name", "email", "password_hash", "shelf_code", "created_at"}
	studentColumns = []string{"id", "name", "email", "password_hash", "teacher_id", "created_at"}
)

func (r *repository) CreateTeacher(ctx context.Context, t model.Teacher) (model.Teacher, error) {
	q, args, err := qb.Insert(teachersTableName).
		Columns("name", "email", "password_hash", "shelf_code").
		Values(t.Name, t.Email, t.PasswordHash, t.ShelfCode).
		Suffix("returning id, name, email, password_hash, shelf_code, created_at").
		ToSql()
	if err != nil {
		return model.Teacher{}, err
	}
	var created model.Teacher
	if err := r.db.GetContext(ctx, &created, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Teacher{}, errors.Wrap(errs.ErrConflict, "email or shelf code already in use")
		}
		return model.Teacher{}, err
	}
	return created, nil
}

func (r *repository) CreateStudent(ctx context.Context, s model.Student) (model.Student, error) {
	q, args, err := qb.Insert(studentsTableName).
		Columns("name", "email", "password_hash", "teacher_id").
		Values(s.Name, s.Email, s.PasswordHash, s.TeacherID).
		Suffix("returning id, name, email, password_hash, teacher_id, created_at").
		ToSql()
	if err != nil {
		return model.Student{}, err
	}
	var created model.Student
	if err := r.db.GetContext(ctx, &created, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Student{}, errors.Wrap(errs.ErrConflict, "email already in use")
		}
		if isForeignKeyViolation(err) {
			return model.Student{}, errors.Wrap(errs.ErrValidation, "unknown teacher")
		}
		return model.Student{}, err
	}
	return created, nil
}

func (r *repository) TeacherByEmail(ctx context.Context, email string) (model.Teacher, error) {
	return r.teacherWhere(ctx, sq.Eq{"email": email})
}

func (r *repository) TeacherByShelfCode(ctx context.Context, code string) (model.Teacher, error) {
	return r.teacherWhere(ctx, sq.Eq{"shelf_code": code})
}

func (r *repository) teacherWhere(ctx context.Context, pred any) (model.Teacher, error) {
	q, args, err := qb.Select(teacherColumns...).
		From(teachersTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Teacher{}, err
	}
	var t model.Teacher
	if err := r.db.GetContext(ctx, &t, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Teacher{}, errors.Wrap(errs.ErrNotFound, "teacher not found")
		}
		return model.Teacher{}, err
	}
	return t, nil
}

func (r *repository) FirstTeacher(ctx context.Context) (model.Teacher, error) {
	q, args, err := qb.Select(teacherColumns...).
		From(teachersTableName).
		OrderBy("created_at").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Teacher{}, err
	}
	var t model.Teacher
	if err := r.db.GetContext(ctx, &t, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Teacher{}, errors.Wrap(errs.ErrNotFound, "no teachers registered")
		}
		return model.Teacher{}, err
	}
	return t, nil
}

func (r *repository) StudentByEmail(ctx context.Context, email string) (model.Student, error) {
	q, args, err := qb.Select(studentColumns...).
		From(studentsTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Student{}, err
	}
	var s model.Student
	if err := r.db.GetContext(ctx, &s, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Student{}, errors.Wrap(errs.ErrNotFound, "student not found")
		}
		return model.Student{}, err
	}
	return s, nil
}

func (r *repository) UpdateShelfCode(ctx context.Context, teacherID int, code string) error {
	q, args, err := qb.Update(teachersTableName).
		Set("shelf_code", code).
		Where(sq.Eq{"id": teacherID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(errs.ErrConflict, "shelf code already in use")
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(errs.ErrNotFound, "teacher not found")
	}
	return nil
}
