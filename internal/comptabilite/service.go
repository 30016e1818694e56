package comptabilite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrExerciceInvalide = errors.New("comptabilite: exercice invalide")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ExportFEC builds the statutory accounting file for a fiscal year and
// records the export timestamp on the artisan's integrations.
func (s *Service) ExportFEC(ctx context.Context, artisanID int64, exercice int) ([]byte, string, error) {
	if exercice < 2000 || exercice > s.now().Year()+1 {
		return nil, "", ErrExerciceInvalide
	}
	du := time.Date(exercice, time.January, 1, 0, 0, 0, 0, time.UTC)
	au := du.AddDate(1, 0, 0)

	factures, err := s.repo.ListFacturesFinalisees(ctx, artisanID, du, au)
	if err != nil {
		return nil, "", err
	}

	contenu := BuildFEC(factures)
	if err := s.repo.MarquerExport(ctx, artisanID, s.now()); err != nil {
		return nil, "", err
	}
	nom := fmt.Sprintf("FEC%d1231.txt", exercice)
	return []byte(contenu), nom, nil
}

// ExportJournalVentes builds the sales journal CSV over [du, au].
func (s *Service) ExportJournalVentes(ctx context.Context, artisanID int64, du, au time.Time) ([]byte, string, error) {
	if !au.After(du) {
		return nil, "", ErrExerciceInvalide
	}
	// Borne haute inclusive côté appelant, exclusive en SQL.
	factures, err := s.repo.ListFacturesFinalisees(ctx, artisanID, du, au.AddDate(0, 0, 1))
	if err != nil {
		return nil, "", err
	}

	contenu, err := BuildJournalVentesCSV(factures)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.MarquerExport(ctx, artisanID, s.now()); err != nil {
		return nil, "", err
	}
	nom := fmt.Sprintf("journal-ventes-%s-%s.csv", du.Format("2006-01-02"), au.Format("2006-01-02"))
	return contenu, nom, nil
}

func (s *Service) ListIntegrations(ctx context.Context, artisanID int64) ([]IntegrationComptable, error) {
	return s.repo.ListIntegrations(ctx, artisanID)
}

func (s *Service) CreateIntegration(ctx context.Context, artisanID int64, req CreateIntegrationRequest) (*IntegrationComptable, error) {
	i := &IntegrationComptable{
		ArtisanID:    artisanID,
		Logiciel:     strings.TrimSpace(req.Logiciel),
		EmailCabinet: req.EmailCabinet,
		Actif:        true,
	}
	if err := s.repo.CreateIntegration(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *Service) UpdateIntegration(ctx context.Context, artisanID, id int64, req UpdateIntegrationRequest) (*IntegrationComptable, error) {
	i, err := s.repo.GetIntegration(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.Logiciel != nil {
		i.Logiciel = strings.TrimSpace(*req.Logiciel)
	}
	if req.EmailCabinet != nil {
		i.EmailCabinet = req.EmailCabinet
	}
	if req.Actif != nil {
		i.Actif = *req.Actif
	}
	if err := s.repo.UpdateIntegration(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *Service) DeleteIntegration(ctx context.Context, artisanID, id int64) error {
	return s.repo.DeleteIntegration(ctx, artisanID, id)
}
