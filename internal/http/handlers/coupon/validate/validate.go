// Package validate implements the public HTTP handler for checking a
// coupon code against a plan before subscribing.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/zenibo-dev/zenibo/internal/http/response"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Handler manages HTTP requests for coupon validation.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service describes the coupon validation business logic.
type Service interface {
	Validate(ctx context.Context, code, planName string) (*models.CouponQuote, error)
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
// @Summary Validate a coupon
// @Description Checks a coupon code against a plan and returns the discounted price. Does not consume the coupon.
// @Tags Coupons
// @Accept json
// @Produce json
// @Param request body models.DummyValidateCoupon true "Code and plan"
// @Success 200 {object} models.CouponQuote "Price quote"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or invalid coupon"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /coupons/validate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupon.validate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyValidateCoupon
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

	quote, err := h.service.Validate(r.Context(), req.Code, req.Plan)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCoupon) {
			log.Info("coupon rejected", slog.String("code", req.Code))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("coupon is not valid"))
			return
		}
		log.Error("failed to validate coupon", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not validate coupon"))
		return
	}

	log.Info("coupon validated", slog.String("code", req.Code))
	render.JSON(w, r, response.OKWithData(quote))
}
