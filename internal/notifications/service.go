package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

// Service écrit et relit le fil de notifications. Les émetteurs métier
// passent par les méthodes Notifier* : une notification qui échoue se logge
// mais ne fait jamais échouer l'opération qui l'a déclenchée.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) List(ctx context.Context, req ListNotificationsRequest) ([]Notification, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) CountNonLues(ctx context.Context, artisanID int64) (int, error) {
	return s.repo.CountNonLues(ctx, artisanID)
}

func (s *Service) MarquerLue(ctx context.Context, artisanID, id int64) error {
	return s.repo.MarquerLue(ctx, artisanID, id)
}

func (s *Service) MarquerToutesLues(ctx context.Context, artisanID int64) error {
	return s.repo.MarquerToutesLues(ctx, artisanID)
}

func (s *Service) notifier(ctx context.Context, n Notification) {
	if err := s.repo.Create(ctx, &n); err != nil {
		s.logger.Error("création notification échouée",
			slog.String("type", string(n.Type)),
			slog.Int64("artisan_id", n.ArtisanID),
			slog.Any("error", err))
	}
}

func (s *Service) DevisSigne(ctx context.Context, artisanID, devisID int64, numero, signataire string) {
	entite := "devis"
	s.notifier(ctx, Notification{
		ArtisanID:  artisanID,
		Type:       TypeDevisSigne,
		Titre:      fmt.Sprintf("Devis %s signé", numero),
		Message:    fmt.Sprintf("Le devis %s a été signé par %s.", numero, signataire),
		EntiteType: &entite,
		EntiteID:   &devisID,
	})
}

func (s *Service) StockBas(ctx context.Context, artisanID, articleID int64, designation string, quantite, seuil float64) {
	entite := "article"
	s.notifier(ctx, Notification{
		ArtisanID:  artisanID,
		Type:       TypeStockBas,
		Titre:      fmt.Sprintf("Stock bas : %s", designation),
		Message:    fmt.Sprintf("Il reste %.2f unités de « %s » (seuil d'alerte : %.2f).", quantite, designation, seuil),
		EntiteType: &entite,
		EntiteID:   &articleID,
	})
}

func (s *Service) RelancesEnvoyees(ctx context.Context, artisanID int64, nombre int) {
	s.notifier(ctx, Notification{
		ArtisanID: artisanID,
		Type:      TypeRelanceEnvoyee,
		Titre:     "Relances de devis envoyées",
		Message:   fmt.Sprintf("%d relance(s) automatique(s) envoyée(s) à vos clients.", nombre),
	})
}

func (s *Service) FactureEnRetard(ctx context.Context, artisanID, factureID int64, numero string, joursRetard int) {
	entite := "facture"
	s.notifier(ctx, Notification{
		ArtisanID:  artisanID,
		Type:       TypeFactureEnRetard,
		Titre:      fmt.Sprintf("Facture %s en retard", numero),
		Message:    fmt.Sprintf("La facture %s est impayée depuis %d jour(s).", numero, joursRetard),
		EntiteType: &entite,
		EntiteID:   &factureID,
	})
}

func (s *Service) ContratFacture(ctx context.Context, artisanID, factureID int64, numero, libelle string) {
	entite := "facture"
	s.notifier(ctx, Notification{
		ArtisanID:  artisanID,
		Type:       TypeContratFacture,
		Titre:      fmt.Sprintf("Facture %s émise", numero),
		Message:    fmt.Sprintf("La facture périodique du contrat « %s » a été émise.", libelle),
		EntiteType: &entite,
		EntiteID:   &factureID,
	})
}
