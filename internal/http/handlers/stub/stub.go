// Package stub implements placeholder endpoints for integrations that
// are routed but not yet wired to a provider.
package stub

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenibo-dev/zenibo/internal/http/response"
)

// Handler answers 501 for every request it receives.
type Handler struct {
	log  *slog.Logger
	name string
}

// New creates a stub for the named integration.
func New(log *slog.Logger, name string) *Handler {
	return &Handler{
		log:  log,
		name: name,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stub"

	h.log.Info("stubbed endpoint called",
		slog.String("op", op),
		slog.String("integration", h.name),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	w.WriteHeader(http.StatusNotImplemented)
	render.JSON(w, r, response.Error("not implemented"))
}
