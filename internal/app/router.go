package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/artisan-erp/artisan-erp/internal/assistant"
	"github.com/artisan-erp/artisan-erp/internal/auth"
	"github.com/artisan-erp/artisan-erp/internal/chantiers"
	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/comptabilite"
	"github.com/artisan-erp/artisan-erp/internal/contrats"
	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/factures"
	"github.com/artisan-erp/artisan-erp/internal/fournisseurs"
	"github.com/artisan-erp/artisan-erp/internal/geolocalisation"
	"github.com/artisan-erp/artisan-erp/internal/interventions"
	"github.com/artisan-erp/artisan-erp/internal/notifications"
	"github.com/artisan-erp/artisan-erp/internal/observability"
	"github.com/artisan-erp/artisan-erp/internal/rapports"
	"github.com/artisan-erp/artisan-erp/internal/relances"
	"github.com/artisan-erp/artisan-erp/internal/shared"
	"github.com/artisan-erp/artisan-erp/internal/signature"
	"github.com/artisan-erp/artisan-erp/internal/stocks"
	"github.com/artisan-erp/artisan-erp/internal/techniciens"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler            *auth.Handler
	ClientsHandler         *clients.Handler
	FournisseursHandler    *fournisseurs.Handler
	StocksHandler          *stocks.Handler
	DevisHandler           *devis.Handler
	FacturesHandler        *factures.Handler
	ContratsHandler        *contrats.Handler
	ChantiersHandler       *chantiers.Handler
	InterventionsHandler   *interventions.Handler
	TechniciensHandler     *techniciens.Handler
	RapportsHandler        *rapports.Handler
	ComptabiliteHandler    *comptabilite.Handler
	GeolocalisationHandler *geolocalisation.Handler
	NotificationsHandler   *notifications.Handler
	RelancesHandler        *relances.Handler
	AssistantHandler       *assistant.Handler
	SignatureHandler       *signature.Handler
}

// NewRouter constructs the chi.Router serving the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.Config != nil && params.Config.IsDevelopment() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)

		// Parcours de signature publique : le token du lien fait office
		// d'authentification, pas de session.
		api.Route("/public/signature", params.SignatureHandler.MountRoutes)

		api.Group(func(priv chi.Router) {
			priv.Use(auth.RequireAuth)

			priv.Route("/clients", params.ClientsHandler.MountRoutes)
			priv.Route("/fournisseurs", params.FournisseursHandler.MountRoutes)
			priv.Route("/articles", params.StocksHandler.MountRoutes)
			priv.Route("/devis", params.DevisHandler.MountRoutes)
			priv.Route("/factures", params.FacturesHandler.MountRoutes)
			priv.Route("/contrats", params.ContratsHandler.MountRoutes)
			priv.Route("/chantiers", params.ChantiersHandler.MountRoutes)
			priv.Route("/interventions", params.InterventionsHandler.MountRoutes)
			priv.Route("/calendrier", params.InterventionsHandler.MountCalendrier)
			priv.Route("/techniciens", params.TechniciensHandler.MountRoutes)
			priv.Route("/rapports", params.RapportsHandler.MountRoutes)
			priv.Route("/comptabilite", params.ComptabiliteHandler.MountRoutes)
			priv.Route("/geolocalisation", params.GeolocalisationHandler.MountRoutes)
			priv.Route("/notifications", params.NotificationsHandler.MountRoutes)
			priv.Route("/relances", params.RelancesHandler.MountRoutes)
			priv.Route("/assistant", params.AssistantHandler.MountRoutes)
		})
	})

	return r
}
