package service

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/internal/repository"
	"github.com/MadiBrom/ClassShelf/pkg/auth"
)

// MetadataClient is the external book-search provider. Best-effort: callers
// fall back to manual entry when it fails.
type MetadataClient interface {
	Search(ctx context.Context, query string) ([]model.BookCandidate, error)
}

// resolvedDisplayWindow keeps freshly resolved requests visible in the class
// snapshot for transient client display.
const resolvedDisplayWindow = 24 * time.Hour

// Service coordinates every mutation of the shared shelf/request/checkout
// state. Multi-row units run inside repo.WithinTx so no concurrent reader
// observes a partial step.
type Service struct {
	log      *zap.Logger
	repo     repository.Store
	metadata MetadataClient
	producer sarama.SyncProducer
	jwt      *auth.Manager
}

func NewService(repo repository.Store, metadata MetadataClient, producer sarama.SyncProducer, jwtMgr *auth.Manager, log *zap.Logger) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		metadata: metadata,
		producer: producer,
		jwt:      jwtMgr,
	}
}

// Library assembles the class-scoped snapshot for both teacher and student
// panels.
func (s *Service) Library(ctx context.Context, teacherID int) (model.Library, error) {
	books, err := s.repo.ListCatalog(ctx, teacherID)
	if err != nil {
		return model.Library{}, err
	}
	shelf, err := s.repo.ListShelf(ctx, teacherID)
	if err != nil {
		return model.Library{}, err
	}
	students, err := s.repo.ListStudents(ctx, teacherID)
	if err != nil {
		return model.Library{}, err
	}
	requests, err := s.repo.ListRequests(ctx, teacherID, time.Now().Add(-resolvedDisplayWindow))
	if err != nil {
		return model.Library{}, err
	}
	checkouts, err := s.repo.ListCheckouts(ctx, teacherID)
	if err != nil {
		return model.Library{}, err
	}

	lib := model.Library{
		Catalog:   make([]model.BookView, 0, len(books)),
		Shelf:     shelf,
		Students:  make([]model.StudentView, 0, len(students)),
		Requests:  requests,
		Checkouts: checkouts,
	}
	for _, b := range books {
		lib.Catalog = append(lib.Catalog, b.View())
	}
	for _, st := range students {
		lib.Students = append(lib.Students, model.StudentView{ID: st.ID, Name: st.Name, Email: st.Email})
	}
	return lib, nil
}

// Search queries the metadata provider. Provider trouble is non-fatal and
// yields an empty result.
func (s *Service) Search(ctx context.Context, query string) ([]model.BookCandidate, error) {
	if s.metadata == nil {
		return []model.BookCandidate{}, nil
	}
	candidates, err := s.metadata.Search(ctx, query)
	if err != nil {
		s.log.Warn("metadata search failed", zap.String("query", query), zap.Error(err))
		return []model.BookCandidate{}, nil
	}
	return candidates, nil
}
