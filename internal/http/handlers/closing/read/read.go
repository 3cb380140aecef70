// Package read implements the HTTP handler for monthly closing
// summaries.
package read

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
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	closing "github.com/zenibo-dev/zenibo/internal/services/closing"
)

// Handler manages HTTP requests for monthly closings.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the closing business logic.
type Service interface {
	Close(ctx context.Context, bookID, userID int, month time.Time) (*closing.MonthlySummary, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Monthly closing
// @Description Returns opening balance, totals and closing balance of one book for one calendar month.
// @Tags Closings
// @Produce json
// @Param id path int true "Book ID"
// @Param month path string true "Month in YYYY-MM form"
// @Success 200 {object} closing.MonthlySummary "Closing summary"
// @Failure 400 {object} response.ErrorResponse "Malformed ID or month"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Book not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /books/{id}/closing/{month} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.closing.read"
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

	month, err := closing.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		log.Error("failed to decode month from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("month must be in YYYY-MM form"))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(int)
	if !ok || userID == 0 {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	summary, err := h.service.Close(r.Context(), bookID, userID, month)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Error("book not found", slog.Int("book_id", bookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
			return
		}
		log.Error("failed to close month", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not close month"))
		return
	}

	log.Info("month closed",
		slog.Int("book_id", bookID),
		slog.String("month", month.Format("2006-01")),
	)
	render.JSON(w, r, response.OKWithData(summary))
}
