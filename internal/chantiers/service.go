package chantiers

import (
	"context"
	"strings"

	"github.com/artisan-erp/artisan-erp/internal/clients"
)

type Service struct {
	repo        Repository
	clientsRepo clients.Repository
}

func NewService(repo Repository, clientsRepo clients.Repository) *Service {
	return &Service{repo: repo, clientsRepo: clientsRepo}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Chantier, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, req ListChantiersRequest) ([]Chantier, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateChantierRequest) (*Chantier, error) {
	if _, err := s.clientsRepo.Get(ctx, artisanID, req.ClientID); err != nil {
		return nil, err
	}
	c := Chantier{
		ArtisanID: artisanID,
		ClientID:  req.ClientID,
		Nom:       strings.TrimSpace(req.Nom),
		Adresse:   req.Adresse,
		Statut:    StatutEnPreparation,
		Budget:    req.Budget,
		DateDebut: req.DateDebut,
		DateFin:   req.DateFin,
		Notes:     req.Notes,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateChantierRequest) (*Chantier, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.Nom != nil {
		existing.Nom = strings.TrimSpace(*req.Nom)
	}
	if req.Adresse != nil {
		existing.Adresse = req.Adresse
	}
	if req.Statut != nil {
		existing.Statut = *req.Statut
	}
	if req.Budget != nil {
		existing.Budget = req.Budget
	}
	if req.DateDebut != nil {
		existing.DateDebut = req.DateDebut
	}
	if req.DateFin != nil {
		existing.DateFin = req.DateFin
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	return s.repo.Delete(ctx, artisanID, id)
}
