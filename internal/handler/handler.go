package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/errs"
	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/pkg/auth"
	"github.com/MadiBrom/ClassShelf/pkg/validate"
)

type Handler struct {
	svc LendingService
	jwt *auth.Manager
	log *zap.Logger
}

func New(svc LendingService, jwtMgr *auth.Manager, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		jwt: jwtMgr,
		log: log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	authed := api.Group("", JwtAuthentication(h.jwt))
	authed.GET("/library", h.Library)
	authed.GET("/search", h.Search)

	teacher := authed.Group("", RequireRole(model.RoleTeacher))
	teacher.POST("/books", h.CreateBook)
	teacher.POST("/shelf", h.AdjustShelf)
	teacher.POST("/requests/:id/approve", h.ApproveRequest)
	teacher.POST("/requests/:id/deny", h.DenyRequest)
	teacher.POST("/checkouts/:id/return", h.ReturnCheckout)
	teacher.PATCH("/teachers/shelf-code", h.RotateShelfCode)

	student := authed.Group("", RequireRole(model.RoleStudent))
	student.POST("/requests", h.SubmitRequest)
	student.POST("/checkouts/:id/request-return", h.RequestReturn)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError translates coordinator error kinds to transport responses.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrConstraint),
		errors.Is(err, errs.ErrState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func idParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Library(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	lib, err := h.svc.Library(c.Request().Context(), claims.ClassID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lib)
}

func (h *Handler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	candidates, err := h.svc.Search(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, candidates)
}

type createBookPayload struct {
	model.CreateBookRequest
	// Copies > 0 stocks the shelf in the same action.
	Copies int `json:"copies"`
}

func (h *Handler) CreateBook(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var payload createBookPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&payload.CreateBookRequest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if payload.Copies > 0 {
		book, entry, err := h.svc.AddToShelf(ctx, claims.ClassID, payload.CreateBookRequest, payload.Copies)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, echo.Map{"book": book.View(), "shelf": entry})
	}
	book, err := h.svc.CreateBook(ctx, payload.CreateBookRequest)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book.View())
}

func (h *Handler) AdjustShelf(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req model.AdjustShelfRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.svc.AdjustShelf(c.Request().Context(), claims.ClassID, req.BookID, req.Delta)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) SubmitRequest(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req model.SubmitRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.SubmitRequest(c.Request().Context(), claims.UserID, req.BookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ApproveRequest(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	request, checkout, err := h.svc.ApproveRequest(c.Request().Context(), claims.ClassID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, model.ApproveResponse{Request: request, Checkout: checkout})
}

func (h *Handler) DenyRequest(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	request, err := h.svc.DenyRequest(c.Request().Context(), claims.ClassID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, request)
}

func (h *Handler) RequestReturn(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	checkout, err := h.svc.RequestReturn(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, checkout)
}

func (h *Handler) ReturnCheckout(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.ReturnCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	checkout, err := h.svc.ReturnCheckout(c.Request().Context(), claims.ClassID, id, req.ReturnNotes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, checkout)
}

func (h *Handler) RotateShelfCode(c echo.Context) error {
	claims, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	code, err := h.svc.RotateShelfCode(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, model.ShelfCodeResponse{ShelfCode: code})
}
