package model

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

type BookSource string

const (
	SourceManual         BookSource = "manual"
	SourceExternalLookup BookSource = "external-lookup"
	SourceCatalogMatch   BookSource = "catalog-match"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
)

type CheckoutStatus string

const (
	CheckedOut CheckoutStatus = "checked_out"
	Returned   CheckoutStatus = "returned"
)

// MaxBag caps simultaneously active checkouts per student.
const MaxBag = 5

// StringList persists as jsonb. Author lists go through database/sql, which
// has no portable text[] scan path.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.Errorf("StringList: unsupported scan type %T", src)
	}
}

type Teacher struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	ShelfCode    string    `json:"shelfCode" db:"shelf_code"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

type Student struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	TeacherID    int       `json:"teacherId" db:"teacher_id"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

type BookTags struct {
	Genre        string `json:"genre"`
	ReadingLevel string `json:"readingLevel"`
	Interest     string `json:"interest"`
}

// Book is a shared catalog record, global across classes and append-only.
type Book struct {
	ID          int            `json:"id" db:"id"`
	ExternalID  sql.NullString `json:"-" db:"external_id"`
	Title       string         `json:"title" db:"title"`
	Authors     StringList     `json:"authors" db:"authors"`
	Isbn        sql.NullString `json:"-" db:"isbn"`
	CoverURL    string         `json:"coverUrl" db:"cover_url"`
	Description string         `json:"description" db:"description"`
	Genre       string         `json:"-" db:"genre"`
	ReadLevel   string         `json:"-" db:"reading_level"`
	Interest    string         `json:"-" db:"interest"`
	Source      BookSource     `json:"source" db:"source"`
	CreatedAt   time.Time      `json:"-" db:"created_at"`
}

// BookView is the wire projection of Book.
type BookView struct {
	ID          int        `json:"id"`
	ExternalID  string     `json:"externalId,omitempty"`
	Title       string     `json:"title"`
	Authors     StringList `json:"authors"`
	Isbn        string     `json:"isbn,omitempty"`
	CoverURL    string     `json:"coverUrl"`
	Description string     `json:"description"`
	Tags        BookTags   `json:"tags"`
	Source      BookSource `json:"source"`
}

func (b Book) View() BookView {
	return BookView{
		ID:          b.ID,
		ExternalID:  b.ExternalID.String,
		Title:       b.Title,
		Authors:     b.Authors,
		Isbn:        b.Isbn.String,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		Tags: BookTags{
			Genre:        b.Genre,
			ReadingLevel: b.ReadLevel,
			Interest:     b.Interest,
		},
		Source: b.Source,
	}
}

type ShelfEntry struct {
	ID        int       `json:"-" db:"id"`
	TeacherID int       `json:"-" db:"teacher_id"`
	BookID    int       `json:"bookId" db:"book_id"`
	Total     int       `json:"total" db:"total"`
	Available int       `json:"available" db:"available"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

func (e ShelfEntry) CheckedOut() int { return e.Total - e.Available }

type Request struct {
	ID         int           `json:"id" db:"id"`
	BookID     int           `json:"bookId" db:"book_id"`
	StudentID  int           `json:"studentId" db:"student_id"`
	Status     RequestStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
	ResolvedAt sql.NullTime  `json:"-" db:"resolved_at"`
}

type Checkout struct {
	ID              int            `json:"id" db:"id"`
	BookID          int            `json:"bookId" db:"book_id"`
	StudentID       int            `json:"studentId" db:"student_id"`
	Status          CheckoutStatus `json:"status" db:"status"`
	ReturnRequested bool           `json:"returnRequested" db:"return_requested"`
	ReturnNotes     string         `json:"returnNotes" db:"return_notes"`
	CheckoutDate    time.Time      `json:"checkoutDate" db:"checkout_date"`
	ReturnDate      sql.NullTime   `json:"-" db:"return_date"`
}

// BookCandidate is a metadata-lookup result offered for catalog matching.
type BookCandidate struct {
	ExternalID  string     `json:"externalId"`
	Title       string     `json:"title"`
	Authors     StringList `json:"authors"`
	Isbn13      string     `json:"isbn13"`
	CoverURL    string     `json:"coverUrl"`
	Description string     `json:"description"`
}

type CreateBookRequest struct {
	Title       string     `json:"title" validate:"required"`
	Authors     StringList `json:"authors"`
	ExternalID  string     `json:"externalId"`
	Isbn        string     `json:"isbn"`
	CoverURL    string     `json:"coverUrl"`
	Description string     `json:"description"`
	Tags        BookTags   `json:"tags"`
	Source      BookSource `json:"source" validate:"omitempty,oneof=manual external-lookup catalog-match"`
}

type AdjustShelfRequest struct {
	BookID int `json:"bookId" validate:"required"`
	Delta  int `json:"delta" validate:"required"`
}

type SubmitRequestRequest struct {
	BookID int `json:"bookId" validate:"required"`
}

type ReturnCheckoutRequest struct {
	ReturnNotes string `json:"returnNotes"`
}

type RegisterRequest struct {
	Role      Role   `json:"role" validate:"required,oneof=teacher student"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	TeacherID int    `json:"teacherId"`
	ShelfCode string `json:"shelfCode"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ID          int    `json:"id"`
	Role        Role   `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TeacherID   int    `json:"teacherId,omitempty"`
	ShelfCode   string `json:"shelfCode,omitempty"`
	AccessToken string `json:"token"`
	ExpiresIn   int    `json:"expiresIn"`
}

type StudentView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Library is the per-class snapshot served to both panels.
type Library struct {
	Catalog   []BookView    `json:"catalog"`
	Shelf     []ShelfEntry  `json:"shelf"`
	Students  []StudentView `json:"students"`
	Requests  []Request     `json:"requests"`
	Checkouts []Checkout    `json:"checkouts"`
}

type ApproveResponse struct {
	Request  Request  `json:"request"`
	Checkout Checkout `json:"checkout"`
}

type ShelfCodeResponse struct {
	ShelfCode string `json:"shelfCode"`
}
