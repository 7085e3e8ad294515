package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/pkg/shelfcode"
)

const shelfCodeAttempts = 5

// Register creates a teacher (with a fresh class-join code) or a student.
// Students attach to a class via shelf code, explicit teacherId, or — as a
// last resort — the oldest registered teacher.
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.AuthResponse{}, err
	}

	switch req.Role {
	case model.RoleTeacher:
		teacher, err := s.registerTeacher(ctx, req, string(hash))
		if err != nil {
			return model.AuthResponse{}, err
		}
		return s.issueToken(teacher.ID, teacher.ID, model.RoleTeacher, teacher.Name, teacher.Email, teacher.ShelfCode)
	case model.RoleStudent:
		student, err := s.registerStudent(ctx, req, string(hash))
		if err != nil {
			return model.AuthResponse{}, err
		}
		return s.issueToken(student.ID, student.TeacherID, model.RoleStudent, student.Name, student.Email, "")
	default:
		return model.AuthResponse{}, errors.Wrap(errs.ErrValidation, "unknown role")
	}
}

func (s *Service) registerTeacher(ctx context.Context, req model.RegisterRequest, hash string) (model.Teacher, error) {
	var lastErr error
	for i := 0; i < shelfCodeAttempts; i++ {
		code, err := shelfcode.New(shelfcode.DefaultLen)
		if err != nil {
			return model.Teacher{}, err
		}
		teacher, err := s.repo.CreateTeacher(ctx, model.Teacher{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			ShelfCode:    code,
		})
		if err == nil {
			s.log.Info("teacher registered", zap.Int("teacherId", teacher.ID))
			return teacher, nil
		}
		lastErr = err
		if !errors.Is(err, errs.ErrConflict) {
			break
		}
		// either the email or the code collided; a used email collides
		// again immediately, a used code re-rolls
		if _, emailErr := s.repo.TeacherByEmail(ctx, req.Email); emailErr == nil {
			break
		}
	}
	return model.Teacher{}, lastErr
}

func (s *Service) registerStudent(ctx context.Context, req model.RegisterRequest, hash string) (model.Student, error) {
	teacher, err := s.resolveClass(ctx, req)
	if err != nil {
		return model.Student{}, err
	}
	student, err := s.repo.CreateStudent(ctx, model.Student{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		TeacherID:    teacher.ID,
	})
	if err != nil {
		return model.Student{}, err
	}
	s.log.Info("student registered",
		zap.Int("studentId", student.ID), zap.Int("teacherId", teacher.ID))
	return student, nil
}

func (s *Service) resolveClass(ctx context.Context, req model.RegisterRequest) (model.Teacher, error) {
	if req.ShelfCode != "" {
		teacher, err := s.repo.TeacherByShelfCode(ctx, req.ShelfCode)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return model.Teacher{}, errors.Wrap(errs.ErrValidation, "unknown shelf code")
			}
			return model.Teacher{}, err
		}
		return teacher, nil
	}
	if req.TeacherID != 0 {
		return model.Teacher{ID: req.TeacherID}, nil
	}
	teacher, err := s.repo.FirstTeacher(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Teacher{}, errors.Wrap(errs.ErrValidation, "create a teacher account first")
		}
		return model.Teacher{}, err
	}
	return teacher, nil
}

// Login verifies credentials against teachers first, then students, and
// issues a capability-scoped token.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	teacher, err := s.repo.TeacherByEmail(ctx, req.Email)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(req.Password)) != nil {
			return model.AuthResponse{}, errors.Wrap(errs.ErrForbidden, "invalid credentials")
		}
		return s.issueToken(teacher.ID, teacher.ID, model.RoleTeacher, teacher.Name, teacher.Email, teacher.ShelfCode)
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return model.AuthResponse{}, err
	}

	student, err := s.repo.StudentByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errors.Wrap(errs.ErrNotFound, "user not found")
		}
		return model.AuthResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)) != nil {
		return model.AuthResponse{}, errors.Wrap(errs.ErrForbidden, "invalid credentials")
	}
	return s.issueToken(student.ID, student.TeacherID, model.RoleStudent, student.Name, student.Email, "")
}

// RotateShelfCode replaces the teacher's class-join code.
func (s *Service) RotateShelfCode(ctx context.Context, teacherID int) (string, error) {
	var lastErr error
	for i := 0; i < shelfCodeAttempts; i++ {
		code, err := shelfcode.New(shelfcode.DefaultLen)
		if err != nil {
			return "", err
		}
		if err := s.repo.UpdateShelfCode(ctx, teacherID, code); err != nil {
			lastErr = err
			if errors.Is(err, errs.ErrConflict) {
				continue
			}
			return "", err
		}
		return code, nil
	}
	return "", lastErr
}

func (s *Service) issueToken(userID, classID int, role model.Role, name, email, code string) (model.AuthResponse, error) {
	token, err := s.jwt.Sign(userID, classID, role)
	if err != nil {
		return model.AuthResponse{}, err
	}
	resp := model.AuthResponse{
		ID:          userID,
		Role:        role,
		Name:        name,
		Email:       email,
		ShelfCode:   code,
		AccessToken: token,
		ExpiresIn:   int(s.jwt.TTL().Seconds()),
	}
	if role == model.RoleStudent {
		resp.TeacherID = classID
	}
	return resp, nil
}
