package devis

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/artisan-erp/artisan-erp/internal/auth"
	"github.com/artisan-erp/artisan-erp/internal/clients"
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
	r.Get("/non-signes", h.NonSignes)
	r.Post("/relances", h.RelancesAutomatiques)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/envoyer", h.Envoyer)
	r.Post("/{id}/refuser", h.Refuser)
	r.Post("/{id}/relancer", h.Relancer)
	r.Get("/{id}/relances", h.Relances)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	pagination := shared.NewPagination(page, perPage, 0)

	req := ListDevisRequest{
		ArtisanID: auth.ArtisanID(r),
		Search:    q.Get("recherche"),
		Limit:     pagination.PerPage,
		Offset:    pagination.Offset(),
	}
	if raw := q.Get("client_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			req.ClientID = &id
		}
	}
	if raw := q.Get("statut"); raw != "" {
		statut := StatutDevis(raw)
		req.Statut = &statut
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list devis failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"devis":      list,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) NonSignes(w http.ResponseWriter, r *http.Request) {
	jours, _ := strconv.Atoi(r.URL.Query().Get("jours_minimum"))
	list, err := h.service.DevisEnAttenteDeRelance(r.Context(), auth.ArtisanID(r), jours)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"devis": list})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.devisID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Get(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDevisRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	d, err := h.service.Create(r.Context(), auth.ArtisanID(r), req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.devisID(w, r)
	if !ok {
		return
	}
	var req UpdateDevisRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	d, err := h.service.Update(r.Context(), auth.ArtisanID(r), id, req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.devisID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), auth.ArtisanID(r), id); err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Envoyer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.devisID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Envoyer(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) Refuser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.devisID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Refuser(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

type relanceRequest struct {
	Message string `json:"message" validate:"omitempty,max=2000"`
}

func (h *Handler) Relancer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.devisID(w, r)
	if !ok {
		return
	}
	var req relanceRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		if err := shared.Validate(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}
	if err := h.service.EnvoyerRelance(r.Context(), auth.ArtisanID(r), id, req.Message, false); err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "relance envoyée"})
}

func (h *Handler) Relances(w http.ResponseWriter, r *http.Request) {
	id, ok := h.devisID(w, r)
	if !ok {
		return
	}
	list, err := h.service.Relances(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"relances": list})
}

type relancesAutoRequest struct {
	JoursAvantPremiere int `json:"jours_avant_premiere" validate:"gte=0,lte=90"`
	JoursEntre         int `json:"jours_entre" validate:"gte=0,lte=90"`
	MaxRelances        int `json:"max_relances" validate:"gte=0,lte=10"`
}

func (h *Handler) RelancesAutomatiques(w http.ResponseWriter, r *http.Request) {
	req := relancesAutoRequest{JoursAvantPremiere: 7, JoursEntre: 7, MaxRelances: 3}
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		if err := shared.Validate(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}
	result, err := h.service.EnvoyerRelancesAutomatiques(r.Context(), auth.ArtisanID(r), req.JoursAvantPremiere, req.JoursEntre, req.MaxRelances)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) devisID(w http.ResponseWriter, r *http.Request) (int64, bool) {
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "devis introuvable")
	case errors.Is(err, clients.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "client introuvable")
	case errors.Is(err, ErrNonModifiable):
		httpx.Problem(w, http.StatusConflict, "Conflict", "seul un devis en brouillon peut être modifié ou supprimé")
	case errors.Is(err, ErrStatutInvalide):
		httpx.Problem(w, http.StatusConflict, "Conflict", "le statut du devis ne permet pas cette opération")
	case errors.Is(err, ErrDejaSigne):
		httpx.Problem(w, http.StatusConflict, "Conflict", "le devis est déjà signé")
	case errors.Is(err, ErrClientSansEmail):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "le client n'a pas d'adresse email")
	default:
		httpx.RespondError(w, err)
	}
}
