package signature

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/platform/httpx"
	"github.com/artisan-erp/artisan-erp/internal/shared"
)

// Handler exposes the public signature flow. These routes are mounted under
// /api/public and are reachable without a session: the token is the
// credential.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{token}", h.Consulter)
	r.Post("/{token}/info", h.RenseignerInfo)
	r.Post("/{token}/code", h.VerifierCode)
	r.Post("/{token}/code/renvoyer", h.RenvoyerCode)
	r.Post("/{token}/signer", h.Signer)
}

func (h *Handler) Consulter(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Consulter(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) RenseignerInfo(w http.ResponseWriter, r *http.Request) {
	var req InfoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	resp, err := h.service.RenseignerInfo(r.Context(), chi.URLParam(r, "token"), req)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) VerifierCode(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.VerifierCode(r.Context(), chi.URLParam(r, "token"), req.Code); err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"etape": string(EtapeSignature)})
}

func (h *Handler) RenvoyerCode(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.RenvoyerCode(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Signer(w http.ResponseWriter, r *http.Request) {
	var req SignerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.Signer(r.Context(), chi.URLParam(r, "token"), req, clientIP(r))
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// clientIP tolère un RemoteAddr avec ou sans port : le middleware RealIP le
// remplace par l'adresse nue quand un proxy est devant.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLienInconnu), errors.Is(err, devis.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "lien de signature inconnu")
	case errors.Is(err, ErrLienExpire):
		httpx.Problem(w, http.StatusGone, "Gone", "ce lien de signature a expiré, demandez un nouveau devis")
	case errors.Is(err, ErrDejaSigne):
		httpx.Problem(w, http.StatusConflict, "Conflict", "ce devis a déjà été signé")
	case errors.Is(err, ErrEtapeInvalide):
		httpx.Problem(w, http.StatusConflict, "Conflict", "cette étape n'est pas accessible")
	case errors.Is(err, ErrSignatureManquante):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "le tracé de la signature est requis")
	case errors.Is(err, ErrTelephoneInvalide):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "un numéro de mobile français est attendu")
	case errors.Is(err, ErrCodeInvalide):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "code de vérification incorrect")
	case errors.Is(err, ErrTropDeTentatives):
		httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "trop de tentatives, demandez un nouveau code")
	default:
		h.logger.Error("signature flow error", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
