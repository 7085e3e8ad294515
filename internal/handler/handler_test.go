package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/handler"
	service_mocks "github.com/MadiBrom/ClassShelf/internal/handler/mocks"
	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/pkg/auth"
)

func newTestRouter(svc handler.LendingService) (*echo.Echo, *auth.Manager) {
	mgr := auth.NewManager(auth.Config{JWTKey: "test-key", TTL: time.Hour})
	h := handler.New(svc, mgr, zap.NewExample().Named("test"))
	return h.NewRouter(), mgr
}

func bearer(t *testing.T, mgr *auth.Manager, userID, classID int, role model.Role) string {
	t.Helper()
	token, err := mgr.Sign(userID, classID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHandler_SubmitRequest(t *testing.T) {
	t.Parallel()
	type input struct {
		studentID int
		classID   int
		role      model.Role
		noAuth    bool
		body      string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService, inp input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {
				r.EXPECT().
					SubmitRequest(gomock.Any(), inp.studentID, 3).
					Return(model.Request{
						ID:        7,
						BookID:    3,
						StudentID: inp.studentID,
						Status:    model.RequestPending,
					}, nil)
			},
			input: input{studentID: 12, classID: 1, role: model.RoleStudent, body: `{"bookId":3}`},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":7,"bookId":3,"studentId":12,"status":"pending","createdAt":"0001-01-01T00:00:00Z"}`,
			},
		},
		{
			name: "err. duplicate pending",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {
				r.EXPECT().
					SubmitRequest(gomock.Any(), inp.studentID, 3).
					Return(model.Request{}, errors.Wrap(errs.ErrConflict, "request already pending"))
			},
			input: input{studentID: 12, classID: 1, role: model.RoleStudent, body: `{"bookId":3}`},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"request already pending: conflict"}`,
			},
		},
		{
			name:         "err. teacher token on student route",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {},
			input:        input{studentID: 1, classID: 1, role: model.RoleTeacher, body: `{"bookId":3}`},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"insufficient role"}`,
			},
		},
		{
			name:         "err. no token",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {},
			input:        input{noAuth: true, body: `{"bookId":3}`},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"No Authorization Header"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			e, mgr := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(tt.input.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if !tt.input.noAuth {
				r.Header.Set("Authorization", bearer(t, mgr, tt.input.studentID, tt.input.classID, tt.input.role))
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ApproveRequest(t *testing.T) {
	t.Parallel()
	type input struct {
		teacherID int
		requestID string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService, inp input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), inp.teacherID, 7).
					Return(
						model.Request{ID: 7, BookID: 3, StudentID: 12, Status: model.RequestApproved},
						model.Checkout{ID: 4, BookID: 3, StudentID: 12, Status: model.CheckedOut},
						nil,
					)
			},
			input: input{teacherID: 1, requestID: "7"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"request":{"id":7,"bookId":3,"studentId":12,"status":"approved","createdAt":"0001-01-01T00:00:00Z"},"checkout":{"id":4,"bookId":3,"studentId":12,"status":"checked_out","returnRequested":false,"returnNotes":"","checkoutDate":"0001-01-01T00:00:00Z"}}`,
			},
		},
		{
			name: "err. no available copies",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), inp.teacherID, 7).
					Return(model.Request{}, model.Checkout{}, errors.Wrap(errs.ErrConflict, "no available copies"))
			},
			input: input{teacherID: 1, requestID: "7"},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"no available copies: conflict"}`,
			},
		},
		{
			name: "err. bag limit",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), inp.teacherID, 7).
					Return(model.Request{}, model.Checkout{}, errors.Wrap(errs.ErrConstraint, "bag limit reached"))
			},
			input: input{teacherID: 1, requestID: "7"},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"bag limit reached: constraint"}`,
			},
		},
		{
			name: "err. unknown request",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), inp.teacherID, 404).
					Return(model.Request{}, model.Checkout{}, errors.Wrap(errs.ErrNotFound, "request"))
			},
			input: input{teacherID: 1, requestID: "404"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"request: not found"}`,
			},
		},
		{
			name:         "err. bad id",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {},
			input:        input{teacherID: 1, requestID: "seven"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid id"}`,
			},
		},
		{
			name: "err. store contention",
			mockBehavior: func(r *service_mocks.MockLendingService, inp input) {
				r.EXPECT().
					ApproveRequest(gomock.Any(), inp.teacherID, 7).
					Return(model.Request{}, model.Checkout{}, errors.Wrap(errs.ErrUnavailable, "lock contention"))
			},
			input: input{teacherID: 1, requestID: "7"},
			response: response{
				expectedCode: http.StatusServiceUnavailable,
				expectedBody: `{"message":"lock contention: temporarily unavailable"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			e, mgr := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/api/requests/%s/approve", tt.input.requestID), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.Header.Set("Authorization", bearer(t, mgr, tt.input.teacherID, tt.input.teacherID, model.RoleTeacher))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_AdjustShelf(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					AdjustShelf(gomock.Any(), 1, 3, 2).
					Return(model.ShelfEntry{BookID: 3, Total: 4, Available: 2}, nil)
			},
			body: `{"bookId":3,"delta":2}`,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"bookId":3,"total":4,"available":2}`,
			},
		},
		{
			name: "err. shrink below checked out",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					AdjustShelf(gomock.Any(), 1, 3, -4).
					Return(model.ShelfEntry{}, errors.Wrap(errs.ErrConstraint, "cannot reduce copies below number checked out"))
			},
			body: `{"bookId":3,"delta":-4}`,
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"cannot reduce copies below number checked out: constraint"}`,
			},
		},
		{
			name: "err. unknown book",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					AdjustShelf(gomock.Any(), 1, 99, 1).
					Return(model.ShelfEntry{}, errors.Wrap(errs.ErrNotFound, "book"))
			},
			body: `{"bookId":99,"delta":1}`,
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book: not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			e, mgr := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/shelf", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.Header.Set("Authorization", bearer(t, mgr, 1, 1, model.RoleTeacher))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnCheckout(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok with notes",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					ReturnCheckout(gomock.Any(), 1, 4, "torn cover").
					Return(model.Checkout{
						ID:          4,
						BookID:      3,
						StudentID:   12,
						Status:      model.Returned,
						ReturnNotes: "torn cover",
					}, nil)
			},
			body: `{"returnNotes":"torn cover"}`,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":4,"bookId":3,"studentId":12,"status":"returned","returnRequested":false,"returnNotes":"torn cover","checkoutDate":"0001-01-01T00:00:00Z"}`,
			},
		},
		{
			name: "err. already returned",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					ReturnCheckout(gomock.Any(), 1, 4, "").
					Return(model.Checkout{}, errors.Wrap(errs.ErrState, "already returned"))
			},
			body: `{}`,
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"already returned: invalid state"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			e, mgr := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/checkouts/4/return", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.Header.Set("Authorization", bearer(t, mgr, 1, 1, model.RoleTeacher))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Login(gomock.Any(), model.LoginRequest{Email: "frizzle@school.edu", Password: "seatbelts"}).
					Return(model.AuthResponse{
						ID:          1,
						Role:        model.RoleTeacher,
						Name:        "Ms. Frizzle",
						Email:       "frizzle@school.edu",
						ShelfCode:   "WVQ7PM",
						AccessToken: "tok",
						ExpiresIn:   3600,
					}, nil)
			},
			body: `{"email":"frizzle@school.edu","password":"seatbelts"}`,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"role":"teacher","name":"Ms. Frizzle","email":"frizzle@school.edu","shelfCode":"WVQ7PM","token":"tok","expiresIn":3600}`,
			},
		},
		{
			name: "err. bad credentials map to 401",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Login(gomock.Any(), gomock.Any()).
					Return(model.AuthResponse{}, errors.Wrap(errs.ErrForbidden, "invalid credentials"))
			},
			body: `{"email":"frizzle@school.edu","password":"wrong"}`,
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"invalid credentials: forbidden"}`,
			},
		},
		{
			name: "err. unknown user",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Login(gomock.Any(), gomock.Any()).
					Return(model.AuthResponse{}, errors.Wrap(errs.ErrNotFound, "user"))
			},
			body: `{"email":"nobody@school.edu","password":"whatever"}`,
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"user: not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			e, _ := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Search(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		query        string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Search(gomock.Any(), "magic school bus").
					Return([]model.BookCandidate{
						{
							ExternalID: "OL123W",
							Title:      "The Magic School Bus Inside the Earth",
							Authors:    model.StringList{"Joanna Cole"},
							Isbn13:     "9780590407601",
						},
					}, nil)
			},
			query: "q=magic+school+bus",
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"externalId":"OL123W","title":"The Magic School Bus Inside the Earth","authors":["Joanna Cole"],"isbn13":"9780590407601","coverUrl":"","description":""}]`,
			},
		},
		{
			name:         "err. missing query",
			mockBehavior: func(r *service_mocks.MockLendingService) {},
			query:        "",
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"q is required"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			e, mgr := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodGet, "/api/search?"+tt.query, http.NoBody)
			r.Header.Set("Authorization", bearer(t, mgr, 12, 1, model.RoleStudent))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_RotateShelfCode(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockLendingService(c)
	e, mgr := newTestRouter(svc)

	svc.EXPECT().
		RotateShelfCode(gomock.Any(), 1).
		Return("N4KP2R", nil)

	r := httptest.NewRequest(http.MethodPatch, "/api/teachers/shelf-code", http.NoBody)
	r.Header.Set("Authorization", bearer(t, mgr, 1, 1, model.RoleTeacher))
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"shelfCode":"N4KP2R"}`, strings.Trim(w.Body.String(), "\n"))
}
