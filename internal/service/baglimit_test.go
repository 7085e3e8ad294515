package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/internal/repository"
	"github.com/MadiBrom/ClassShelf/internal/service"
	"github.com/MadiBrom/ClassShelf/pkg/auth"
)

// rowLockStore swaps fakeStore's unit-wide mutex for row-granular locks, the
// way FOR UPDATE behaves: a unit holds only the rows it read for update until
// it finishes, so units touching disjoint rows genuinely interleave. The
// store mutex guards map access only, never a whole unit.
type rowLockStore struct {
	*fakeStore

	lockMu sync.Mutex
	rows   map[string]*sync.Mutex
}

func newRowLockStore() *rowLockStore {
	return &rowLockStore{
		fakeStore: newFakeStore(),
		rows:      map[string]*sync.Mutex{},
	}
}

var _ repository.Store = (*rowLockStore)(nil)

func (s *rowLockStore) row(kind string, id int) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	key := fmt.Sprintf("%s:%d", kind, id)
	m, ok := s.rows[key]
	if !ok {
		m = &sync.Mutex{}
		s.rows[key] = m
	}
	return m
}

// WithinTx holds no unit-wide lock and does no rollback bookkeeping: the
// units under test fail before their first write or not at all.
func (s *rowLockStore) WithinTx(_ context.Context, fn func(tx repository.Tx) error) error {
	tx := &rowLockTx{fakeTx: fakeTx{s: s.fakeStore}, store: s}
	defer tx.release()
	return fn(tx)
}

type rowLockTx struct {
	fakeTx
	store *rowLockStore
	held  []*sync.Mutex
}

func (t *rowLockTx) lockRow(kind string, id int) {
	m := t.store.row(kind, id)
	m.Lock()
	t.held = append(t.held, m)
}

func (t *rowLockTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func (t *rowLockTx) GetRequestForUpdate(ctx context.Context, id int) (model.Request, error) {
	t.lockRow("request", id)
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.GetRequestForUpdate(ctx, id)
}

func (t *rowLockTx) GetStudentForUpdate(ctx context.Context, id int) (model.Student, error) {
	t.lockRow("student", id)
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.GetStudentForUpdate(ctx, id)
}

func (t *rowLockTx) GetShelfEntryForUpdate(ctx context.Context, teacherID, bookID int) (model.ShelfEntry, error) {
	t.store.mu.Lock()
	entry, err := t.fakeTx.GetShelfEntryForUpdate(ctx, teacherID, bookID)
	t.store.mu.Unlock()
	if err != nil {
		return model.ShelfEntry{}, err
	}
	t.lockRow("shelf", entry.ID)
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.GetShelfEntryForUpdate(ctx, teacherID, bookID)
}

// unlocked read, as under READ COMMITTED
func (t *rowLockTx) HasActiveCheckout(ctx context.Context, bookID, studentID int) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.HasActiveCheckout(ctx, bookID, studentID)
}

// unlocked read, as under READ COMMITTED
func (t *rowLockTx) CountActiveCheckouts(ctx context.Context, studentID int) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.CountActiveCheckouts(ctx, studentID)
}

func (t *rowLockTx) AdjustAvailable(ctx context.Context, entryID, delta int) (model.ShelfEntry, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.AdjustAvailable(ctx, entryID, delta)
}

func (t *rowLockTx) InsertCheckout(ctx context.Context, bookID, studentID int) (model.Checkout, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.InsertCheckout(ctx, bookID, studentID)
}

func (t *rowLockTx) ResolveRequest(ctx context.Context, id int, status model.RequestStatus) (model.Request, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.fakeTx.ResolveRequest(ctx, id, status)
}

// Two approvals for the same student on different titles lock different
// request rows and different shelf rows; without the student-row lock both
// would count the bag below the cap and both would insert. The lock
// serializes them: one checkout opens, the loser sees the bag limit, and the
// active count never exceeds the cap.
func TestApproveRequest_BagLimitRace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newRowLockStore()
	jwtMgr := auth.NewManager(auth.Config{JWTKey: "test-key", TTL: time.Hour})
	svc := service.NewService(store, nil, nil, jwtMgr, zap.NewNop())

	teacher, err := store.CreateTeacher(ctx, model.Teacher{
		Name: "Ms. Frizzle", Email: "frizzle@school.test", PasswordHash: "x", ShelfCode: "ABC234",
	})
	require.NoError(t, err)
	student, err := store.CreateStudent(ctx, model.Student{
		Name: "Arnold", Email: "arnold@school.test", PasswordHash: "x", TeacherID: teacher.ID,
	})
	require.NoError(t, err)

	stockAndRequest := func(title string) int {
		book, err := store.CreateBook(ctx, model.Book{Title: title, Source: model.SourceManual})
		require.NoError(t, err)
		_, err = svc.AdjustShelf(ctx, teacher.ID, book.ID, 1)
		require.NoError(t, err)
		req, err := svc.SubmitRequest(ctx, student.ID, book.ID)
		require.NoError(t, err)
		return req.ID
	}

	// fill the bag to one below the cap
	for i := 0; i < model.MaxBag-1; i++ {
		reqID := stockAndRequest(fmt.Sprintf("Filler %d", i))
		_, _, err := svc.ApproveRequest(ctx, teacher.ID, reqID)
		require.NoError(t, err)
	}

	// two pending requests racing for the last slot
	reqIDs := []int{
		stockAndRequest("Racer A"),
		stockAndRequest("Racer B"),
	}

	results := make([]error, 2)
	var g errgroup.Group
	for i, reqID := range reqIDs {
		i, reqID := i, reqID
		g.Go(func() error {
			_, _, results[i] = svc.ApproveRequest(ctx, teacher.ID, reqID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var won, lost int
	for _, err := range results {
		if err == nil {
			won++
		} else {
			lost++
			require.ErrorIs(t, err, errs.ErrConstraint)
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, 1, lost)

	checkouts, err := store.ListCheckouts(ctx, teacher.ID)
	require.NoError(t, err)
	active := 0
	for _, c := range checkouts {
		if c.Status == model.CheckedOut {
			active++
		}
	}
	require.LessOrEqual(t, active, model.MaxBag)
	require.Equal(t, model.MaxBag, active)
}
