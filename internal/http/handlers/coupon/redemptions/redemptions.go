// Package redemptions implements the admin HTTP handler for listing a
// coupon's redemption history.
package redemptions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Handler manages HTTP requests for coupon redemption history.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service describes the redemption listing business logic.
type Service interface {
	Redemptions(ctx context.Context, id int) ([]*models.CouponRedemption, error)
}

// New creates a new Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Coupon redemption history
// @Description Returns every redemption of one coupon with the plan and yen discounted at redemption time.
// @Tags Coupons
// @Produce json
// @Param id path int true "Coupon ID"
// @Success 200 {object} map[string]any "Redemption list"
// @Failure 400 {object} response.ErrorResponse "Malformed ID"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Coupon not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /coupons/{id}/redemptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupon.redemptions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	redemptions, err := h.service.Redemptions(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Error("coupon not found", slog.Int("coupon_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("coupon not found"))
			return
		}
		log.Error("failed to list redemptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list redemptions"))
		return
	}

	log.Info("redemptions listed",
		slog.Int("coupon_id", id),
		slog.Int("count", len(redemptions)),
	)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"redemptions": redemptions,
		"count":       len(redemptions),
	}))
}
