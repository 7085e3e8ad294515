package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/internal/repository"
)

// AdjustShelf applies a teacher copy-count edit. The delta moves total and
// available together: ad-hoc added/removed copies are by definition not out
// on loan. The floor check runs against the post-lock state, so a racing
// approval cannot slip a checkout under a shrinking total.
func (s *Service) AdjustShelf(ctx context.Context, teacherID, bookID, delta int) (model.ShelfEntry, error) {
	var result model.ShelfEntry
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetBook(ctx, bookID); err != nil {
			return err
		}
		entry, err := tx.GetShelfEntryForUpdate(ctx, teacherID, bookID)
		if err != nil {
			if !errors.Is(err, errs.ErrNotFound) {
				return err
			}
			if delta <= 0 {
				return errors.Wrap(errs.ErrValidation, "copies must be at least 1")
			}
			result, err = tx.InsertShelfEntry(ctx, teacherID, bookID, delta)
			return err
		}

		checkedOut := entry.CheckedOut()
		if delta < 0 && entry.Total+delta < checkedOut {
			return errors.Wrap(errs.ErrConstraint, "cannot reduce copies below number checked out")
		}
		result, err = tx.SetShelfCounts(ctx, entry.ID, entry.Total+delta, entry.Available+delta)
		return err
	})
	if err != nil {
		return model.ShelfEntry{}, err
	}
	s.log.Debug("shelf adjusted",
		zap.Int("teacherId", teacherID), zap.Int("bookId", bookID),
		zap.Int("delta", delta), zap.Int("total", result.Total), zap.Int("available", result.Available))
	return result, nil
}
