// Package list implements the admin HTTP handler for listing coupons.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Handler manages HTTP requests for listing coupons.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the coupon listing business logic.
type Service interface {
	List(ctx context.Context) ([]*models.Coupon, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List coupons
// @Description Returns every coupon, active and inactive.
// @Tags Coupons
// @Produce json
// @Success 200 {object} map[string]any "Coupon list"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /coupons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupon.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	coupons, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list coupons", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list coupons"))
		return
	}

	log.Info("coupons listed", slog.Int("count", len(coupons)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"coupons": coupons,
		"count":   len(coupons),
	}))
}
