package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
)

// CreateBook reconciles against the shared catalog before creating: an
// existing match is returned as-is, never duplicated.
func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Book{}, errors.Wrap(errs.ErrValidation, "title is required")
	}

	matched, err := s.repo.FindBookMatch(ctx, req.ExternalID, title, req.Authors)
	if err == nil {
		return matched, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return model.Book{}, err
	}

	source := req.Source
	if source == "" {
		source = model.SourceManual
	}
	book := model.Book{
		Title:       title,
		Authors:     req.Authors,
		CoverURL:    req.CoverURL,
		Description: req.Description,
		Genre:       req.Tags.Genre,
		ReadLevel:   req.Tags.ReadingLevel,
		Interest:    req.Tags.Interest,
		Source:      source,
	}
	if req.ExternalID != "" {
		book.ExternalID = sql.NullString{String: req.ExternalID, Valid: true}
	}
	if req.Isbn != "" {
		book.Isbn = sql.NullString{String: req.Isbn, Valid: true}
	}
	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.log.Info("catalog create",
		zap.Int("bookId", created.ID), zap.String("title", created.Title))
	return created, nil
}

// AddToShelf reconciles the catalog entry and stocks copies in one teacher
// action.
func (s *Service) AddToShelf(ctx context.Context, teacherID int, req model.CreateBookRequest, copies int) (model.Book, model.ShelfEntry, error) {
	if copies <= 0 {
		return model.Book{}, model.ShelfEntry{}, errors.Wrap(errs.ErrValidation, "copies must be at least 1")
	}
	book, err := s.CreateBook(ctx, req)
	if err != nil {
		return model.Book{}, model.ShelfEntry{}, err
	}
	entry, err := s.AdjustShelf(ctx, teacherID, book.ID, copies)
	if err != nil {
		return model.Book{}, model.ShelfEntry{}, err
	}
	return book, entry, nil
}
