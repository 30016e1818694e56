package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrHasReferences is returned when deleting a client that devis, factures,
// chantiers or contrats still point to.
var ErrHasReferences = errors.New("clients: des documents référencent ce client")

// Service wraps client business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Client, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateClientRequest) (*Client, error) {
	if strings.TrimSpace(req.Nom) == "" {
		return nil, errors.New("le nom du client est requis")
	}
	clientType := ClientType(req.Type)
	if clientType == "" {
		clientType = ClientTypeParticulier
	}

	c := Client{
		ArtisanID:  artisanID,
		Nom:        strings.TrimSpace(req.Nom),
		Entreprise: req.Entreprise,
		Email:      req.Email,
		Telephone:  req.Telephone,
		Adresse:    req.Adresse,
		CodePostal: req.CodePostal,
		Ville:      req.Ville,
		Type:       clientType,
		Notes:      req.Notes,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateClientRequest) (*Client, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}

	if req.Nom != nil && strings.TrimSpace(*req.Nom) != "" {
		existing.Nom = strings.TrimSpace(*req.Nom)
	}
	if req.Entreprise != nil {
		existing.Entreprise = req.Entreprise
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
	if req.CodePostal != nil {
		existing.CodePostal = req.CodePostal
	}
	if req.Ville != nil {
		existing.Ville = req.Ville
	}
	if req.Type != nil {
		existing.Type = ClientType(*req.Type)
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	if _, err := s.repo.Get(ctx, artisanID, id); err != nil {
		return err
	}
	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if refs > 0 {
		return ErrHasReferences
	}
	return s.repo.Delete(ctx, artisanID, id)
}
