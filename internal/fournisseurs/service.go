package fournisseurs

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(f Fournisseur) error {
	if strings.TrimSpace(f.Nom) == "" {
		return errors.New("le nom du fournisseur est requis")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Fournisseur, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, artisanID int64, search string, limit, offset int) ([]Fournisseur, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.List(ctx, artisanID, search, limit, offset)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateFournisseurRequest) (*Fournisseur, error) {
	f := Fournisseur{
		ArtisanID: artisanID,
		Nom:       strings.TrimSpace(req.Nom),
		Contact:   req.Contact,
		Email:     req.Email,
		Telephone: req.Telephone,
		Adresse:   req.Adresse,
		Siret:     req.Siret,
		Notes:     req.Notes,
	}
	if err := s.validate(f); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateFournisseurRequest) (*Fournisseur, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.Nom != nil {
		existing.Nom = strings.TrimSpace(*req.Nom)
	}
	if req.Contact != nil {
		existing.Contact = req.Contact
	}
	if req.Email != nil {
		existing.Email = req.Email
	}
	if req.Telephone != nil {
		existing.Telephone = req.Telephone
	}
	if req.Adresse != nil {
		existing.Adresse = req.Adresse
	}
	if req.Siret != nil {
		existing.Siret = req.Siret
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	if err := s.validate(*existing); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	return s.repo.Delete(ctx, artisanID, id)
}
