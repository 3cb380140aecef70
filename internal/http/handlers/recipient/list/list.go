// Package list implements the HTTP handler for listing recipients.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Handler manages HTTP requests for listing recipients.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the recipient listing business logic.
type Service interface {
	List(ctx context.Context, userID int) ([]*models.Recipient, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List recipients
// @Description Returns every recipient of the authenticated user, ordered by sort order, with their book assignments.
// @Tags Recipients
// @Produce json
// @Success 200 {object} map[string]any "Recipient list"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /recipients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipient.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(int)
	if !ok || userID == 0 {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	recipients, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Error("failed to list recipients", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list recipients"))
		return
	}

	log.Info("recipients listed", slog.Int("count", len(recipients)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"recipients": recipients,
		"count":      len(recipients),
	}))
}
