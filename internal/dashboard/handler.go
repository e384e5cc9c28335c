package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus/pkg/platform/httputil"
)

type Handler struct {
	service     *Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

func NewHandler(service *Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, requireAuth: requireAuth}
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.requireAuth).Get("/dashboard/{role}", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.For(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
