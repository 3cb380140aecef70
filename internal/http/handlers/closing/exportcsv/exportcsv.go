// Package exportcsv implements the HTTP handler streaming a month of a
// book as a CSV download.
package exportcsv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/export"
	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	closing "github.com/zenibo-dev/zenibo/internal/services/closing"
)

// Handler manages HTTP requests for CSV exports.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the export business logic.
type Service interface {
	Export(ctx context.Context, bookID, userID int, month time.Time, format string) (*export.Result, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Export a month as CSV
// @Description Renders one month of a book in the requested accounting-software dialect and returns it as a file download.
// @Tags Closings
// @Produce text/csv
// @Param id path int true "Book ID"
// @Param month query string true "Month in YYYY-MM form"
// @Param format query string false "Export dialect: basic, yayoi, freee or mf (defaults to the book's preference)"
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} response.ErrorResponse "Malformed ID, month or unknown format"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 403 {object} response.ErrorResponse "Format not allowed on current plan"
// @Failure 404 {object} response.ErrorResponse "Book not found or month empty"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /books/{id}/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.closing.export"
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

	month, err := closing.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		log.Error("failed to decode month from query", sl.Err(err))
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

	format := r.URL.Query().Get("format")

	result, err := h.service.Export(r.Context(), bookID, userID, month, format)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			log.Error("book not found", slog.Int("book_id", bookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
		case errors.Is(err, export.ErrNoData):
			log.Info("no data for month",
				slog.Int("book_id", bookID),
				slog.String("month", month.Format("2006-01")),
			)
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no transactions in requested month"))
		case errors.Is(err, export.ErrUnknownFormat):
			log.Error("unknown export format", slog.String("format", format))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown export format"))
		case errors.Is(err, models.ErrForbiddenFormat):
			log.Error("format not allowed on plan", slog.String("format", format))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("export format not allowed on current plan"))
		default:
			log.Error("failed to export month", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not export month"))
		}
		return
	}

	log.Info("month exported",
		slog.Int("book_id", bookID),
		slog.String("month", month.Format("2006-01")),
		slog.String("format", result.Format),
	)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data) //nolint:errcheck
}
