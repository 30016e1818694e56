package techniciens

import (
	"context"
	"errors"
	"strings"
)

// Default palette entry for new technicians without an explicit colour.
const defaultCouleur = "#2563eb"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Technicien, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, artisanID int64, actifsSeulement bool) ([]Technicien, error) {
	return s.repo.List(ctx, artisanID, actifsSeulement)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateTechnicienRequest) (*Technicien, error) {
	if strings.TrimSpace(req.Nom) == "" {
		return nil, errors.New("le nom du technicien est requis")
	}
	couleur := req.Couleur
	if couleur == "" {
		couleur = defaultCouleur
	}
	id, err := s.repo.Create(ctx, Technicien{
		ArtisanID: artisanID,
		Nom:       strings.TrimSpace(req.Nom),
		Telephone: req.Telephone,
		Email:     req.Email,
		Couleur:   couleur,
		Actif:     true,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateTechnicienRequest) (*Technicien, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.Nom != nil && strings.TrimSpace(*req.Nom) != "" {
		existing.Nom = strings.TrimSpace(*req.Nom)
	}
	if req.Telephone != nil {
		existing.Telephone = req.Telephone
	}
	if req.Email != nil {
		existing.Email = req.Email
	}
	if req.Couleur != nil && *req.Couleur != "" {
		existing.Couleur = *req.Couleur
	}
	if req.Actif != nil {
		existing.Actif = *req.Actif
	}
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	return s.repo.Delete(ctx, artisanID, id)
}
