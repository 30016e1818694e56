package contrats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/factures"
)

// Facturier émet la facture périodique d'un contrat. Implémenté par
// factures.Service.
type Facturier interface {
	CreateFromContrat(ctx context.Context, artisanID, clientID, contratID int64, libelle string, montantHT, tauxTVA float64, periode string) (*factures.Facture, error)
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	clientsRepo clients.Repository
	factures    Facturier
	renderer    PDFRenderer
	now         func() time.Time
}

// NewService wires the contract domain. renderer may be nil when no Gotenberg
// instance is configured; PDF generation then returns ErrPDFIndisponible.
func NewService(logger *slog.Logger, repo Repository, clientsRepo clients.Repository, factures Facturier, renderer PDFRenderer) *Service {
	return &Service{
		logger:      logger,
		repo:        repo,
		clientsRepo: clientsRepo,
		factures:    factures,
		renderer:    renderer,
		now:         time.Now,
	}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Contrat, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, req ListContratsRequest) ([]Contrat, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateContratRequest) (*Contrat, error) {
	if _, err := s.clientsRepo.Get(ctx, artisanID, req.ClientID); err != nil {
		return nil, err
	}

	debut := s.now()
	if req.DateDebut != nil {
		debut = *req.DateDebut
	}
	c := &Contrat{
		ArtisanID:            artisanID,
		ClientID:             req.ClientID,
		Libelle:              strings.TrimSpace(req.Libelle),
		Description:          req.Description,
		MontantHT:            req.MontantHT,
		TauxTVA:              req.TauxTVA,
		Periodicite:          req.Periodicite,
		DateDebut:            debut,
		DateFin:              req.DateFin,
		ProchaineFacturation: debut,
		Actif:                true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateContratRequest) (*Contrat, error) {
	c, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.Libelle != nil {
		c.Libelle = strings.TrimSpace(*req.Libelle)
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.MontantHT != nil {
		c.MontantHT = *req.MontantHT
	}
	if req.TauxTVA != nil {
		c.TauxTVA = *req.TauxTVA
	}
	if req.Periodicite != nil {
		c.Periodicite = *req.Periodicite
	}
	if req.DateFin != nil {
		c.DateFin = req.DateFin
	}
	if req.Actif != nil {
		c.Actif = *req.Actif
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	return s.repo.Delete(ctx, artisanID, id)
}

// FacturerEchues bills every contract whose next billing date has passed,
// then pushes that date forward by one period. One failing contract never
// blocks the others.
func (s *Service) FacturerEchues(ctx context.Context) (*FacturationResult, error) {
	now := s.now()
	echus, err := s.repo.ListEchus(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &FacturationResult{Echus: len(echus)}
	for _, c := range echus {
		periode := libellePeriode(c.ProchaineFacturation, c.Periodicite)
		_, err := s.factures.CreateFromContrat(ctx, c.ArtisanID, c.ClientID, c.ID, c.Libelle, c.MontantHT, c.TauxTVA, periode)
		if err != nil {
			result.Erreurs++
			s.logger.Error("facturation contrat échouée",
				slog.Int64("contrat_id", c.ID),
				slog.Int64("artisan_id", c.ArtisanID),
				slog.Any("error", err))
			continue
		}
		prochaine := c.ProchaineFacturation.AddDate(0, c.Periodicite.Mois(), 0)
		if err := s.repo.AvancerFacturation(ctx, c.ID, prochaine); err != nil {
			result.Erreurs++
			s.logger.Error("avancement facturation échoué", slog.Int64("contrat_id", c.ID), slog.Any("error", err))
			continue
		}
		result.Factures++
	}
	return result, nil
}

var moisFrancais = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

func libellePeriode(date time.Time, p Periodicite) string {
	switch p {
	case PeriodiciteTrimestrielle:
		trimestre := (int(date.Month())-1)/3 + 1
		return fmt.Sprintf("T%d %d", trimestre, date.Year())
	case PeriodiciteAnnuelle:
		return fmt.Sprintf("année %d", date.Year())
	default:
		return fmt.Sprintf("%s %d", moisFrancais[date.Month()-1], date.Year())
	}
}
