package rapports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/artisan-erp/artisan-erp/internal/interventions"
	"github.com/artisan-erp/artisan-erp/internal/stocks"
)

var ErrSignatureInvalide = errors.New("rapports: la signature doit être une image en data-URL base64")

type Service struct {
	repo              Repository
	interventionsRepo interventions.Repository
	stocks            *stocks.Service
}

func NewService(repo Repository, interventionsRepo interventions.Repository, stocksSvc *stocks.Service) *Service {
	return &Service{repo: repo, interventionsRepo: interventionsRepo, stocks: stocksSvc}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Rapport, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) ListByIntervention(ctx context.Context, artisanID, interventionID int64) ([]Rapport, error) {
	return s.repo.ListByIntervention(ctx, artisanID, interventionID)
}

func (s *Service) ListByChantier(ctx context.Context, artisanID, chantierID int64) ([]Rapport, error) {
	return s.repo.ListByChantier(ctx, artisanID, chantierID)
}

// Create records the report, attaches it to the intervention's chantier and
// decrements tracked stock for every declared material.
func (s *Service) Create(ctx context.Context, artisanID int64, req CreateRapportRequest) (*Rapport, error) {
	iv, err := s.interventionsRepo.Get(ctx, artisanID, req.InterventionID)
	if err != nil {
		return nil, err
	}
	if err := validerSignature(req.SignatureClient); err != nil {
		return nil, err
	}

	rap := &Rapport{
		ArtisanID:       artisanID,
		InterventionID:  iv.ID,
		ChantierID:      iv.ChantierID,
		Contenu:         strings.TrimSpace(req.Contenu),
		Photos:          req.Photos,
		SignatureClient: req.SignatureClient,
		SignataireNom:   req.SignataireNom,
	}
	if rap.Photos == nil {
		rap.Photos = []string{}
	}

	for _, m := range req.Materiaux {
		article, err := s.stocks.Get(ctx, artisanID, m.ArticleID)
		if err != nil {
			return nil, err
		}
		rap.Materiaux = append(rap.Materiaux, Materiau{
			ArticleID:   article.ID,
			Designation: article.Designation,
			Quantite:    m.Quantite,
		})
	}

	if err := s.repo.Create(ctx, rap); err != nil {
		return nil, err
	}

	motif := fmt.Sprintf("rapport #%d", rap.ID)
	for _, m := range rap.Materiaux {
		if err := s.stocks.Consommer(ctx, artisanID, m.ArticleID, m.Quantite, motif); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, artisanID, rap.ID)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateRapportRequest) (*Rapport, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.Contenu != nil {
		existing.Contenu = strings.TrimSpace(*req.Contenu)
	}
	if req.Photos != nil {
		existing.Photos = req.Photos
	}
	if req.SignatureClient != nil {
		if err := validerSignature(req.SignatureClient); err != nil {
			return nil, err
		}
		existing.SignatureClient = req.SignatureClient
	}
	if req.SignataireNom != nil {
		existing.SignataireNom = req.SignataireNom
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	return s.repo.Delete(ctx, artisanID, id)
}

func validerSignature(sig *string) error {
	if sig == nil || *sig == "" {
		return nil
	}
	if !strings.HasPrefix(*sig, "data:image/") || !strings.Contains(*sig, ";base64,") {
		return ErrSignatureInvalide
	}
	return nil
}
