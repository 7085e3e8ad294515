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

// RequestReturn flags an active checkout for return. Repeat calls are a
// no-op; flagging a returned book is a state error.
func (s *Service) RequestReturn(ctx context.Context, studentID, checkoutID int) (model.Checkout, error) {
	var result model.Checkout
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		c, err := tx.GetCheckoutForUpdate(ctx, checkoutID)
		if err != nil {
			return err
		}
		if c.StudentID != studentID {
			return errors.Wrap(errs.ErrForbidden, "checkout belongs to another student")
		}
		if c.Status != model.CheckedOut {
			return errors.Wrap(errs.ErrState, "cannot flag a returned book")
		}
		if c.ReturnRequested {
			result = c
			return nil
		}
		result, err = tx.SetReturnRequested(ctx, checkoutID)
		return err
	})
	if err != nil {
		return model.Checkout{}, err
	}
	return result, nil
}

// ReturnCheckout closes a loan and releases its copy atomically. A shelf
// already at full availability means the counters were corrupted before this
// call; that surfaces as a consistency failure instead of exceeding the cap.
func (s *Service) ReturnCheckout(ctx context.Context, teacherID, checkoutID int, notes string) (model.Checkout, error) {
	var result model.Checkout
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		c, err := tx.GetCheckoutForUpdate(ctx, checkoutID)
		if err != nil {
			return err
		}
		if c.Status == model.Returned {
			return errors.Wrap(errs.ErrState, "already returned")
		}

		student, err := tx.GetStudentForUpdate(ctx, c.StudentID)
		if err != nil {
			return err
		}
		if student.TeacherID != teacherID {
			return errors.Wrap(errs.ErrForbidden, "checkout belongs to another class")
		}

		entry, err := tx.GetShelfEntryForUpdate(ctx, teacherID, c.BookID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errors.Wrap(errs.ErrConsistency, "active checkout without shelf entry")
			}
			return err
		}
		if entry.Available >= entry.Total {
			return errors.Wrap(errs.ErrConsistency, "shelf already at full availability")
		}

		if _, err := tx.AdjustAvailable(ctx, entry.ID, 1); err != nil {
			return err
		}
		result, err = tx.CloseCheckout(ctx, checkoutID, notes)
		return err
	})
	if err != nil {
		return model.Checkout{}, err
	}

	s.log.Info("checkout returned",
		zap.Int("checkoutId", result.ID), zap.Int("bookId", result.BookID),
		zap.Int("studentId", result.StudentID))
	s.publishResolution(kafka.EventResolution{
		Kind:       "checkout_returned",
		CheckoutID: result.ID,
		BookID:     result.BookID, StudentID: result.StudentID, TeacherID: teacherID,
	})
	return result, nil
}
