package notifications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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
	r.Get("/", h.List)
	r.Post("/{id}/lue", h.MarquerLue)
	r.Post("/toutes-lues", h.MarquerToutesLues)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	pagination := shared.NewPagination(page, perPage, 0)

	artisanID := auth.ArtisanID(r)
	req := ListNotificationsRequest{
		ArtisanID: artisanID,
		NonLues:   q.Get("non_lues") == "true",
		Limit:     pagination.PerPage,
		Offset:    pagination.Offset(),
	}
	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list notifications failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	nonLues, err := h.service.CountNonLues(r.Context(), artisanID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"non_lues":      nonLues,
		"pagination":    shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) MarquerLue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "identifiant invalide")
		return
	}
	if err := h.service.MarquerLue(r.Context(), auth.ArtisanID(r), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "notification introuvable")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "lue"})
}

func (h *Handler) MarquerToutesLues(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarquerToutesLues(r.Context(), auth.ArtisanID(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "lues"})
}
