package assistant

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/artisan-erp/artisan-erp/internal/auth"
	"github.com/artisan-erp/artisan-erp/internal/platform/httpx"
	"github.com/artisan-erp/artisan-erp/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/devis", h.SuggererDevis)
}

func (h *Handler) SuggererDevis(w http.ResponseWriter, r *http.Request) {
	var req SuggestionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	suggestion, err := h.service.Suggerer(r.Context(), auth.ArtisanID(r), req)
	if err != nil {
		h.logger.Error("suggestion devis failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, suggestion)
}
