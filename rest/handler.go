package rest

import (
	"book-search/domain"
	"book-search/logger"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	bookNotFoundDetail  = "Книга не найдена"
	emptyQueryDetail    = "Укажи хотя бы один параметр поиска: q, author или title."
	invalidBookIDDetail = "Некорректный идентификатор книги"
)

type BookSearcher interface {
	Execute(ctx context.Context, query domain.SearchQuery) (domain.Outcome, error)
}

type BookReader interface {
	Execute(ctx context.Context, id int64) (*domain.Book, error)
}

type BookExporter interface {
	Execute(ctx context.Context, id int64) (*domain.ExportResult, error)
}

// Handler contains all HTTP handlers for the book search service
type Handler struct {
	search BookSearcher
	read   BookReader
	export BookExporter
}

// NewHandler creates a new Handler
func NewHandler(search BookSearcher, read BookReader, export BookExporter) *Handler {
	return &Handler{
		search: search,
		read:   read,
		export: export,
	}
}

// DetailResponse is the body of every non-2xx response.
type DetailResponse struct {
	Detail string `json:"detail"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SearchBooks answers GET /v1/books/search. Empty and overflowing outcomes are
// client-visible results, not server faults.
func (h *Handler) SearchBooks(c echo.Context) error {
	query := domain.NewSearchQuery(c.QueryParam("q"), c.QueryParam("author"), c.QueryParam("title"))
	if query.IsEmpty() {
		return c.JSON(http.StatusBadRequest, DetailResponse{Detail: emptyQueryDetail})
	}

	outcome, err := h.search.Execute(c.Request().Context(), query)
	if err != nil {
		return mapSearchError(err)
	}

	switch outcome.Kind {
	case domain.OutcomeEmpty:
		return c.JSON(http.StatusNotFound, DetailResponse{Detail: outcome.Reason})
	case domain.OutcomeOverflow:
		return c.JSON(http.StatusBadRequest, DetailResponse{Detail: outcome.Reason})
	default:
		return c.JSON(http.StatusOK, outcome.Books)
	}
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	ctx := logger.WithBookID(c.Request().Context(), id)

	book, err := h.read.Execute(ctx, id)
	if err != nil {
		return mapBookError(ctx, err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) ExportBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	ctx := logger.WithBookID(c.Request().Context(), id)

	result, err := h.export.Execute(ctx, id)
	if err != nil {
		return mapBookError(ctx, err)
	}
	return c.JSON(http.StatusOK, result)
}

func bookID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, invalidBookIDDetail)
	}
	return id, nil
}

func mapSearchError(err error) *echo.HTTPError {
	if errors.Is(err, domain.ErrSearchUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
}

func mapBookError(ctx context.Context, err error) *echo.HTTPError {
	var invalid *domain.InvalidBookError
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		return echo.NewHTTPError(http.StatusNotFound, bookNotFoundDetail)
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Reason)
	case errors.Is(err, domain.ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	default:
		logger.GlobalContext.LogError(ctx, "book_request", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}

// ErrorHandler renders echo errors as {"detail": message}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if writeErr := c.JSON(code, DetailResponse{Detail: detail}); writeErr != nil {
		logger.Logger.Error("failed to write error response", "err", writeErr)
	}
}
