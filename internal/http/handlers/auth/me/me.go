// Package me implements the HTTP handler returning the authenticated
// user's profile and subscription state.
package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	"github.com/zenibo-dev/zenibo/internal/plan"
)

// Handler manages HTTP requests for the profile endpoint.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the profile business logic.
type Service interface {
	Me(ctx context.Context, userID int) (*models.User, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Current user profile
// @Description Returns the authenticated user together with the plan and subscription state.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any "Profile"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"
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

	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to read profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read profile"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":                  user.ID,
		"uid":                 user.UID,
		"email":               user.Email,
		"plan":                user.Plan,
		"subscription_status": user.SubscriptionStatus,
		"subscription_expiry": user.SubscriptionExpiry,
		"capabilities":        plan.Get(user.EffectivePlan(time.Now())),
	}))
}
