package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/internal/repository"
	"github.com/MadiBrom/ClassShelf/pkg/kafka"
)

// SubmitRequest queues a student's ask for a copy. Availability is not
// checked here: a request at zero availability is a waitlist signal, enforced
// at approval. Duplicate pending requests and duplicate active holds are
// rejected.
func (s *Service) SubmitRequest(ctx context.Context, studentID, bookID int) (model.Request, error) {
	var result model.Request
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetBook(ctx, bookID); err != nil {
			return err
		}
		pending, err := tx.HasPendingRequest(ctx, bookID, studentID)
		if err != nil {
			return err
		}
		if pending {
			return errors.Wrap(errs.ErrConflict, "request already pending")
		}
		active, err := tx.HasActiveCheckout(ctx, bookID, studentID)
		if err != nil {
			return err
		}
		if active {
			return errors.Wrap(errs.ErrConflict, "already checked out")
		}
		result, err = tx.InsertRequest(ctx, bookID, studentID)
		return err
	})
	if err != nil {
		return model.Request{}, err
	}
	return result, nil
}

// ApproveRequest is the central coordinator unit: it consumes one available
// copy, opens a checkout, and resolves the request in a single transaction.
// Every precondition re-reads post-lock state, so a concurrent approval of
// the last copy loses cleanly with "no available copies".
func (s *Service) ApproveRequest(ctx context.Context, teacherID, requestID int) (model.Request, model.Checkout, error) {
	var (
		request  model.Request
		checkout model.Checkout
	)
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != model.RequestPending {
			return errors.Wrap(errs.ErrState, "not pending")
		}

		// the student lock serializes concurrent approvals for the same
		// student across different titles, keeping the bag count honest
		student, err := tx.GetStudentForUpdate(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if student.TeacherID != teacherID {
			return errors.Wrap(errs.ErrForbidden, "request belongs to another class")
		}

		active, err := tx.HasActiveCheckout(ctx, req.BookID, req.StudentID)
		if err != nil {
			return err
		}
		if active {
			return errors.Wrap(errs.ErrConflict, "already checked out")
		}

		entry, err := tx.GetShelfEntryForUpdate(ctx, teacherID, req.BookID)
		if err != nil {
			return err
		}
		if entry.Available <= 0 {
			return errors.Wrap(errs.ErrConflict, "no available copies")
		}

		bag, err := tx.CountActiveCheckouts(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if bag >= model.MaxBag {
			return errors.Wrap(errs.ErrConstraint, "bag limit reached")
		}

		if _, err := tx.AdjustAvailable(ctx, entry.ID, -1); err != nil {
			return err
		}
		if checkout, err = tx.InsertCheckout(ctx, req.BookID, req.StudentID); err != nil {
			return err
		}
		request, err = tx.ResolveRequest(ctx, requestID, model.RequestApproved)
		return err
	})
	if err != nil {
		return model.Request{}, model.Checkout{}, err
	}

	s.log.Info("request approved",
		zap.Int("requestId", request.ID), zap.Int("checkoutId", checkout.ID),
		zap.Int("bookId", request.BookID), zap.Int("studentId", request.StudentID))
	s.publishResolution(kafka.EventResolution{
		Kind:      "request_approved",
		RequestID: request.ID, CheckoutID: checkout.ID,
		BookID: request.BookID, StudentID: request.StudentID, TeacherID: teacherID,
	})
	return request, checkout, nil
}

// DenyRequest resolves a pending request without touching the shelf. The row
// lock serializes it against a concurrent approval; the loser sees "not
// pending".
func (s *Service) DenyRequest(ctx context.Context, teacherID, requestID int) (model.Request, error) {
	var request model.Request
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != model.RequestPending {
			return errors.Wrap(errs.ErrState, "not pending")
		}
		student, err := tx.GetStudentForUpdate(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if student.TeacherID != teacherID {
			return errors.Wrap(errs.ErrForbidden, "request belongs to another class")
		}
		request, err = tx.ResolveRequest(ctx, requestID, model.RequestDenied)
		return err
	})
	if err != nil {
		return model.Request{}, err
	}

	s.publishResolution(kafka.EventResolution{
		Kind:      "request_denied",
		RequestID: request.ID,
		BookID:    request.BookID, StudentID: request.StudentID, TeacherID: teacherID,
	})
	return request, nil
}
