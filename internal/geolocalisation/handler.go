package geolocalisation

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/artisan-erp/artisan-erp/internal/auth"
	"github.com/artisan-erp/artisan-erp/internal/platform/httpx"
	"github.com/artisan-erp/artisan-erp/internal/shared"
)

type Handler struct {
	logger *slog.Logger
	store  *Store
}

func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/positions", h.Positions)
	r.Post("/positions", h.Enregistrer)
}

func (h *Handler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.Dernieres(r.Context(), auth.ArtisanID(r))
	if err != nil {
		h.logger.Error("list positions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].TechnicienID < positions[j].TechnicienID
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"positions": positions})
}

func (h *Handler) Enregistrer(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.store.Enregistrer(r.Context(), auth.ArtisanID(r), req)
	if err != nil {
		h.logger.Error("store position failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}
