package interventions

import (
	"errors"
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
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/deplacer", h.Deplacer)
}

// MountCalendrier expose la vue agenda, montée à part sous /calendrier.
func (h *Handler) MountCalendrier(r chi.Router) {
	r.Get("/", h.Calendrier)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	pagination := shared.NewPagination(page, perPage, 0)

	req := ListInterventionsRequest{
		ArtisanID: auth.ArtisanID(r),
		Limit:     pagination.PerPage,
		Offset:    pagination.Offset(),
	}
	if raw := q.Get("chantier_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			req.ChantierID = &id
		}
	}
	if raw := q.Get("technicien_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			req.TechnicienID = &id
		}
	}
	if raw := q.Get("statut"); raw != "" {
		statut := StatutIntervention(raw)
		req.Statut = &statut
	}
	if du, err := time.Parse("2006-01-02", q.Get("du")); err == nil {
		req.Du = &du
	}
	if au, err := time.Parse("2006-01-02", q.Get("au")); err == nil {
		req.Au = &au
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list interventions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"interventions": list,
		"pagination":    shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Calendrier(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	du, err := time.Parse("2006-01-02", q.Get("du"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "paramètre 'du' attendu au format AAAA-MM-JJ")
		return
	}
	au, err := time.Parse("2006-01-02", q.Get("au"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "paramètre 'au' attendu au format AAAA-MM-JJ")
		return
	}

	jours, err := h.service.Calendrier(r.Context(), auth.ArtisanID(r), du, au)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jours": jours})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.interventionID(w, r)
	if !ok {
		return
	}
	iv, err := h.service.Get(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, iv)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInterventionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	iv, err := h.service.Create(r.Context(), auth.ArtisanID(r), req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, iv)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.interventionID(w, r)
	if !ok {
		return
	}
	var req UpdateInterventionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	iv, err := h.service.Update(r.Context(), auth.ArtisanID(r), id, req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, iv)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.interventionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), auth.ArtisanID(r), id); err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Deplacer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.interventionID(w, r)
	if !ok {
		return
	}
	var req DeplacerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	iv, err := h.service.Deplacer(r.Context(), auth.ArtisanID(r), id, req.Jours)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, iv)
}

func (h *Handler) interventionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "identifiant invalide")
		return 0, false
	}
	return id, true
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "intervention introuvable")
	case errors.Is(err, ErrDatesIncoherentes), errors.Is(err, ErrPlageInvalide):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
