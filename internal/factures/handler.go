package factures

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/artisan-erp/artisan-erp/internal/auth"
	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/devis"
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
	r.Post("/depuis-devis/{devisID}", h.CreateFromDevis)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/envoyer", h.Envoyer)
	r.Post("/{id}/paiement", h.EnregistrerPaiement)
	r.Post("/{id}/annuler", h.Annuler)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	pagination := shared.NewPagination(page, perPage, 0)

	req := ListFacturesRequest{
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
		statut := StatutFacture(raw)
		req.Statut = &statut
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list factures failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"factures":   list,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.factureID(w, r, "id")
	if !ok {
		return
	}
	f, err := h.service.Get(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFactureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	f, err := h.service.Create(r.Context(), auth.ArtisanID(r), req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) CreateFromDevis(w http.ResponseWriter, r *http.Request) {
	devisID, ok := h.factureID(w, r, "devisID")
	if !ok {
		return
	}
	f, err := h.service.CreateFromDevis(r.Context(), auth.ArtisanID(r), devisID)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.factureID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateFactureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	f, err := h.service.Update(r.Context(), auth.ArtisanID(r), id, req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.factureID(w, r, "id")
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
	id, ok := h.factureID(w, r, "id")
	if !ok {
		return
	}
	f, err := h.service.Envoyer(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) EnregistrerPaiement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.factureID(w, r, "id")
	if !ok {
		return
	}
	var req PaiementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	f, err := h.service.EnregistrerPaiement(r.Context(), auth.ArtisanID(r), id, req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) Annuler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.factureID(w, r, "id")
	if !ok {
		return
	}
	f, err := h.service.Annuler(r.Context(), auth.ArtisanID(r), id)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) factureID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "identifiant invalide")
		return 0, false
	}
	return id, true
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "facture introuvable")
	case errors.Is(err, devis.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "devis introuvable")
	case errors.Is(err, clients.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "client introuvable")
	case errors.Is(err, ErrNonModifiable):
		httpx.Problem(w, http.StatusConflict, "Conflict", "seule une facture en brouillon peut être modifiée ou supprimée")
	case errors.Is(err, ErrStatutInvalide):
		httpx.Problem(w, http.StatusConflict, "Conflict", "le statut de la facture ne permet pas cette opération")
	case errors.Is(err, ErrDevisNonAccepte):
		httpx.Problem(w, http.StatusConflict, "Conflict", "seul un devis accepté peut être converti en facture")
	case errors.Is(err, ErrClientSansEmail):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "le client n'a pas d'adresse email")
	default:
		httpx.RespondError(w, err)
	}
}
