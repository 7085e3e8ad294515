package handler

import (
	"context"

	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

// LendingService is everything the HTTP layer needs from the coordinator.
type LendingService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)

	Library(ctx context.Context, teacherID int) (model.Library, error)
	Search(ctx context.Context, query string) ([]model.BookCandidate, error)

	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	AddToShelf(ctx context.Context, teacherID int, req model.CreateBookRequest, copies int) (model.Book, model.ShelfEntry, error)
	AdjustShelf(ctx context.Context, teacherID, bookID, delta int) (model.ShelfEntry, error)

	SubmitRequest(ctx context.Context, studentID, bookID int) (model.Request, error)
	ApproveRequest(ctx context.Context, teacherID, requestID int) (model.Request, model.Checkout, error)
	DenyRequest(ctx context.Context, teacherID, requestID int) (model.Request, error)

	RequestReturn(ctx context.Context, studentID, checkoutID int) (model.Checkout, error)
	ReturnCheckout(ctx context.Context, teacherID, checkoutID int, notes string) (model.Checkout, error)

	RotateShelfCode(ctx context.Context, teacherID int) (string, error)
}

var _ LendingService = (*service.Service)(nil)
