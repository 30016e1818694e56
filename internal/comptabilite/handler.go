package comptabilite

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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
	r.Get("/fec", h.ExportFEC)
	r.Get("/export-csv", h.ExportCSV)
	r.Get("/integrations", h.ListIntegrations)
	r.Post("/integrations", h.CreateIntegration)
	r.Put("/integrations/{id}", h.UpdateIntegration)
	r.Delete("/integrations/{id}", h.DeleteIntegration)
}

func (h *Handler) ExportFEC(w http.ResponseWriter, r *http.Request) {
	exercice, err := strconv.Atoi(r.URL.Query().Get("exercice"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "paramètre exercice invalide")
		return
	}
	contenu, nom, err := h.service.ExportFEC(r.Context(), auth.ArtisanID(r), exercice)
	if err != nil {
		h.respond(w, err)
		return
	}
	servirFichier(w, contenu, nom, "text/plain; charset=utf-8")
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	du, err := time.Parse("2006-01-02", q.Get("dateDebut"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "paramètre dateDebut invalide (attendu AAAA-MM-JJ)")
		return
	}
	au, err := time.Parse("2006-01-02", q.Get("dateFin"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "paramètre dateFin invalide (attendu AAAA-MM-JJ)")
		return
	}
	contenu, nom, err := h.service.ExportJournalVentes(r.Context(), auth.ArtisanID(r), du, au)
	if err != nil {
		h.respond(w, err)
		return
	}
	servirFichier(w, contenu, nom, "text/csv; charset=utf-8")
}

func (h *Handler) ListIntegrations(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListIntegrations(r.Context(), auth.ArtisanID(r))
	if err != nil {
		h.logger.Error("list integrations failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"integrations": list})
}

func (h *Handler) CreateIntegration(w http.ResponseWriter, r *http.Request) {
	var req CreateIntegrationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	i, err := h.service.CreateIntegration(r.Context(), auth.ArtisanID(r), req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, i)
}

func (h *Handler) UpdateIntegration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "identifiant invalide")
		return
	}
	var req UpdateIntegrationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	i, err := h.service.UpdateIntegration(r.Context(), auth.ArtisanID(r), id, req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, i)
}

func (h *Handler) DeleteIntegration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "identifiant invalide")
		return
	}
	if err := h.service.DeleteIntegration(r.Context(), auth.ArtisanID(r), id); err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func servirFichier(w http.ResponseWriter, contenu []byte, nom, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, nom))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(contenu)
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "intégration introuvable")
	case errors.Is(err, ErrExerciceInvalide):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "période d'export invalide")
	default:
		httpx.RespondError(w, err)
	}
}
