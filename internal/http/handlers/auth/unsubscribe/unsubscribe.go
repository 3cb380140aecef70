// Package unsubscribe implements the HTTP handler for canceling a
// subscription. The paid plan stays usable until the current expiry.
package unsubscribe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Handler manages HTTP requests for cancellations.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the cancellation business logic.
type Service interface {
	Unsubscribe(ctx context.Context, userID int) (*models.User, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Cancel the subscription
// @Description Marks the subscription canceled; the plan stays until expiry.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any "Updated profile"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /auth/unsubscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.unsubscribe"
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

	user, err := h.service.Unsubscribe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel subscription"))
		return
	}

	log.Info("subscription canceled", slog.Int("user_id", userID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan":                user.Plan,
		"subscription_status": user.SubscriptionStatus,
		"subscription_expiry": user.SubscriptionExpiry,
	}))
}
