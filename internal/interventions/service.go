package interventions

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrDatesIncoherentes = errors.New("interventions: la fin doit être postérieure au début")
	ErrPlageInvalide     = errors.New("interventions: plage de calendrier invalide")
)

// plageMaxCalendrier borne les requêtes du calendrier à trois mois.
const plageMaxCalendrier = 92

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Intervention, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, req ListInterventionsRequest) ([]Intervention, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateInterventionRequest) (*Intervention, error) {
	if !req.DateFin.After(req.DateDebut) {
		return nil, ErrDatesIncoherentes
	}
	iv := Intervention{
		ArtisanID:    artisanID,
		ClientID:     req.ClientID,
		ChantierID:   req.ChantierID,
		TechnicienID: req.TechnicienID,
		Titre:        strings.TrimSpace(req.Titre),
		Description:  req.Description,
		Statut:       StatutPlanifiee,
		DateDebut:    req.DateDebut,
		DateFin:      req.DateFin,
	}
	id, err := s.repo.Create(ctx, iv)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateInterventionRequest) (*Intervention, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		existing.ClientID = *req.ClientID
	}
	if req.ChantierID != nil {
		existing.ChantierID = req.ChantierID
	}
	if req.TechnicienID != nil {
		existing.TechnicienID = req.TechnicienID
	}
	if req.Titre != nil {
		existing.Titre = strings.TrimSpace(*req.Titre)
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Statut != nil {
		existing.Statut = *req.Statut
	}
	if req.DateDebut != nil {
		existing.DateDebut = *req.DateDebut
	}
	if req.DateFin != nil {
		existing.DateFin = *req.DateFin
	}
	if !existing.DateFin.After(existing.DateDebut) {
		return nil, ErrDatesIncoherentes
	}
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	return s.repo.Delete(ctx, artisanID, id)
}

// Deplacer shifts an intervention by whole days, keeping the hours intact.
func (s *Service) Deplacer(ctx context.Context, artisanID, id int64, jours int) (*Intervention, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	existing.DateDebut = existing.DateDebut.AddDate(0, 0, jours)
	existing.DateFin = existing.DateFin.AddDate(0, 0, jours)
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

// Jour regroupe les interventions d'une journée du calendrier.
type Jour struct {
	Date          string         `json:"date"`
	Interventions []Intervention `json:"interventions"`
}

// Calendrier buckets every intervention overlapping [du, au] per day. An
// intervention spanning several days appears in each day it covers.
func (s *Service) Calendrier(ctx context.Context, artisanID int64, du, au time.Time) ([]Jour, error) {
	du = truncateDay(du)
	au = truncateDay(au)
	if au.Before(du) || au.Sub(du) > plageMaxCalendrier*24*time.Hour {
		return nil, ErrPlageInvalide
	}

	list, err := s.repo.ListEntre(ctx, artisanID, du, au.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]Intervention)
	for _, iv := range list {
		debut := truncateDay(iv.DateDebut)
		if debut.Before(du) {
			debut = du
		}
		fin := truncateDay(iv.DateFin)
		if fin.After(au) {
			fin = au
		}
		for jour := debut; !jour.After(fin); jour = jour.AddDate(0, 0, 1) {
			key := jour.Format("2006-01-02")
			buckets[key] = append(buckets[key], iv)
		}
	}

	jours := make([]Jour, 0, len(buckets))
	for date, ivs := range buckets {
		jours = append(jours, Jour{Date: date, Interventions: ivs})
	}
	sort.Slice(jours, func(i, j int) bool { return jours[i].Date < jours[j].Date })
	return jours, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
