// Package list implements the HTTP handler returning one book's ledger.
//
// Handler reads the filter from query parameters (date_from, date_to,
// keyword, min_amount, max_amount, account_subject_id), applies it and
// returns the matching entries with running balances.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/ledger"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	services "github.com/zenibo-dev/zenibo/internal/services/transaction"
)

// Handler manages HTTP requests for the ledger view.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the ledger listing business logic.
type Service interface {
	List(ctx context.Context, bookID, userID int, filter ledger.Filter) (*services.LedgerView, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// parseFilter builds the ledger filter from the query string. An invalid
// value reports which parameter was malformed.
func parseFilter(q map[string][]string) (ledger.Filter, string) {
	var f ledger.Filter
	get := func(key string) string {
		if vals := q[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	if v := get("date_from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, "date_from"
		}
		f.DateFrom = &d
	}
	if v := get("date_to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, "date_to"
		}
		f.DateTo = &d
	}
	f.Keyword = get("keyword")
	if v := get("min_amount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, "min_amount"
		}
		f.MinAmount = &n
	}
	if v := get("max_amount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, "max_amount"
		}
		f.MaxAmount = &n
	}
	if v := get("account_subject_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, "account_subject_id"
		}
		f.AccountSubjectID = &n
	}
	return f, ""
}

// ServeHTTP godoc
// @Summary List a book's ledger
// @Description Returns the book's entries restricted by the filter, with running balances.
// @Tags Transactions
// @Produce json
// @Param id path int true "Book ID"
// @Param date_from query string false "Inclusive start date (2006-01-02)"
// @Param date_to query string false "Inclusive end date (2006-01-02)"
// @Param keyword query string false "Substring of the description or client name"
// @Param min_amount query int false "Inclusive minimum amount"
// @Param max_amount query int false "Inclusive maximum amount"
// @Param account_subject_id query int false "Account subject restriction"
// @Success 200 {object} map[string]any "Ledger view"
// @Failure 400 {object} response.ErrorResponse "Malformed ID or filter"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Book not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /books/{id}/transactions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	filter, badParam := parseFilter(r.URL.Query())
	if badParam != "" {
		log.Error("malformed filter parameter", slog.String("param", badParam))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed filter parameter: "+badParam))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(int)
	if !ok || userID == 0 {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	view, err := h.service.List(r.Context(), bookID, userID, filter)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
			return
		}
		log.Error("failed to list transactions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list transactions"))
		return
	}

	render.JSON(w, r, response.OKWithData(view))
}
