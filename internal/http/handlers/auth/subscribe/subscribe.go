// Package subscribe implements the HTTP handler for plan changes.
//
// Handler accepts a JSON request with the target plan and an optional
// coupon code, redeems the coupon when given and extends the subscription
// by one month.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Handler manages HTTP requests for plan changes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the subscription business logic.
type Service interface {
	Subscribe(ctx context.Context, userID int, req models.DummySubscribe) (*models.User, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Change the subscription plan
// @Description Switches the user to the requested plan, optionally applying a coupon.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.DummySubscribe true "Target plan and optional coupon"
// @Success 200 {object} map[string]any "Updated profile"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or invalid coupon"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /auth/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.subscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscribe
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(int)
	if !ok || userID == 0 {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.service.Subscribe(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCoupon) {
			log.Info("coupon rejected", slog.String("code", req.CouponCode))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("coupon is not valid"))
			return
		}
		log.Error("failed to change plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not change plan"))
		return
	}

	log.Info("plan changed", slog.Int("user_id", userID), slog.String("plan", user.Plan))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan":                user.Plan,
		"subscription_status": user.SubscriptionStatus,
		"subscription_expiry": user.SubscriptionExpiry,
	}))
}
