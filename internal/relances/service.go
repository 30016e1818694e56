package relances

import (
	"context"
	"log/slog"
	"time"

	"github.com/artisan-erp/artisan-erp/internal/devis"
)

// Lanceur déclenche le lot de relances d'un artisan. Implémenté par
// devis.Service.
type Lanceur interface {
	EnvoyerRelancesAutomatiques(ctx context.Context, artisanID int64, joursAvantPremiere, joursEntre, maxRelances int) (*devis.RelanceBatchResult, error)
}

// Notificateur signale à l'artisan que des relances sont parties ;
// nil accepté.
type Notificateur interface {
	RelancesEnvoyees(ctx context.Context, artisanID int64, nombre int)
}

type Service struct {
	logger  *slog.Logger
	repo    Repository
	lanceur Lanceur
	notifs  Notificateur
	now     func() time.Time
}

func NewService(logger *slog.Logger, repo Repository, lanceur Lanceur, notifs Notificateur) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		lanceur: lanceur,
		notifs:  notifs,
		now:     time.Now,
	}
}

func (s *Service) GetConfig(ctx context.Context, artisanID int64) (*Config, error) {
	return s.repo.GetConfig(ctx, artisanID)
}

func (s *Service) UpdateConfig(ctx context.Context, artisanID int64, req UpdateConfigRequest) (*Config, error) {
	c, err := s.repo.GetConfig(ctx, artisanID)
	if err != nil {
		return nil, err
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if req.JoursAvantPremiere != nil {
		c.JoursAvantPremiere = *req.JoursAvantPremiere
	}
	if req.JoursEntre != nil {
		c.JoursEntre = *req.JoursEntre
	}
	if req.MaxRelances != nil {
		c.MaxRelances = *req.MaxRelances
	}
	if req.HeureEnvoi != nil {
		c.HeureEnvoi = *req.HeureEnvoi
	}
	if req.JoursSemaine != nil {
		c.JoursSemaine = *req.JoursSemaine
	}
	if err := s.repo.SaveConfig(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ExecuterScan runs every artisan's batch whose schedule matches the current
// hour. Called hourly by the worker.
func (s *Service) ExecuterScan(ctx context.Context) (*ScanResult, error) {
	now := s.now()
	configs, err := s.repo.ListConfigsActives(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Configs: len(configs)}
	for _, c := range configs {
		if !c.EstPlanifiee(now) {
			continue
		}
		result.Lances++

		batch, err := s.lanceur.EnvoyerRelancesAutomatiques(ctx, c.ArtisanID, c.JoursAvantPremiere, c.JoursEntre, c.MaxRelances)
		if err != nil {
			result.Erreurs++
			s.logger.Error("lot de relances échoué",
				slog.Int64("artisan_id", c.ArtisanID),
				slog.Any("error", err))
			continue
		}
		result.Envoyees += batch.Envoyees
		if batch.Envoyees > 0 && s.notifs != nil {
			s.notifs.RelancesEnvoyees(ctx, c.ArtisanID, batch.Envoyees)
		}
	}
	return result, nil
}
