package factures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
)

var (
	ErrNonModifiable   = errors.New("factures: seul un brouillon est modifiable")
	ErrStatutInvalide  = errors.New("factures: transition de statut invalide")
	ErrDevisNonAccepte = errors.New("factures: seul un devis accepté peut être facturé")
	ErrClientSansEmail = errors.New("factures: le client n'a pas d'adresse email")
)

// echeanceParDefaut : paiement à 30 jours.
const echeanceParDefaut = 30 * 24 * time.Hour

type Service struct {
	repo        Repository
	clientsRepo clients.Repository
	devisRepo   devis.Repository
	mailer      mailer.Mailer
	now         func() time.Time
}

func NewService(repo Repository, clientsRepo clients.Repository, devisRepo devis.Repository, m mailer.Mailer) *Service {
	return &Service{
		repo:        repo,
		clientsRepo: clientsRepo,
		devisRepo:   devisRepo,
		mailer:      m,
		now:         time.Now,
	}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Facture, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, req ListFacturesRequest) ([]Facture, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateFactureRequest) (*Facture, error) {
	if _, err := s.clientsRepo.Get(ctx, artisanID, req.ClientID); err != nil {
		return nil, err
	}

	now := s.now()
	f := &Facture{
		ArtisanID:    artisanID,
		ClientID:     req.ClientID,
		Statut:       StatutBrouillon,
		Objet:        strings.TrimSpace(req.Objet),
		DateEmission: now,
		DateEcheance: now.Add(echeanceParDefaut),
		Notes:        req.Notes,
		Lignes:       buildLignes(req.Lignes),
	}
	if req.DateEcheance != nil {
		f.DateEcheance = *req.DateEcheance
	}
	CalculerTotaux(f)

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, f.ID)
}

// CreateFromDevis turns an accepted quote into a draft invoice, copying its
// lines verbatim.
func (s *Service) CreateFromDevis(ctx context.Context, artisanID, devisID int64) (*Facture, error) {
	d, err := s.devisRepo.Get(ctx, artisanID, devisID)
	if err != nil {
		return nil, err
	}
	if d.Statut != devis.StatutAccepte {
		return nil, ErrDevisNonAccepte
	}

	now := s.now()
	f := &Facture{
		ArtisanID:    artisanID,
		ClientID:     d.ClientID,
		DevisID:      &d.ID,
		Statut:       StatutBrouillon,
		Objet:        d.Objet,
		DateEmission: now,
		DateEcheance: now.Add(echeanceParDefaut),
		Notes:        d.Notes,
	}
	for _, l := range d.Lignes {
		f.Lignes = append(f.Lignes, Ligne{
			Designation:  l.Designation,
			Quantite:     l.Quantite,
			Unite:        l.Unite,
			PrixUnitaire: l.PrixUnitaire,
			TauxTVA:      l.TauxTVA,
		})
	}
	CalculerTotaux(f)

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, f.ID)
}

// CreateFromContrat issues a periodic invoice for a maintenance contract.
// Used by the daily billing job; the invoice goes straight to ENVOYEE and the
// email leaves immediately.
func (s *Service) CreateFromContrat(ctx context.Context, artisanID, clientID, contratID int64, libelle string, montantHT, tauxTVA float64, periode string) (*Facture, error) {
	client, err := s.clientsRepo.Get(ctx, artisanID, clientID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	objet := fmt.Sprintf("%s — %s", libelle, periode)
	f := &Facture{
		ArtisanID:    artisanID,
		ClientID:     clientID,
		ContratID:    &contratID,
		Statut:       StatutEnvoyee,
		Objet:        objet,
		DateEmission: now,
		DateEcheance: now.Add(echeanceParDefaut),
		Lignes: []Ligne{{
			Designation:  objet,
			Quantite:     1,
			Unite:        "forfait",
			PrixUnitaire: montantHT,
			TauxTVA:      tauxTVA,
		}},
	}
	CalculerTotaux(f)

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	if client.Email != nil && *client.Email != "" {
		sujet := fmt.Sprintf("Votre facture %s", f.Numero)
		corps := fmt.Sprintf(
			"Bonjour %s,\n\nVotre facture %s (%s) d'un montant de %.2f € TTC est disponible.\nElle est payable avant le %s.\n",
			client.Nom, f.Numero, objet, f.TotalTTC, f.DateEcheance.Format("02/01/2006"))
		if err := s.mailer.Send(ctx, *client.Email, sujet, corps); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, artisanID, f.ID)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateFactureRequest) (*Facture, error) {
	f, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if f.Statut != StatutBrouillon {
		return nil, ErrNonModifiable
	}
	if req.Objet != nil {
		f.Objet = strings.TrimSpace(*req.Objet)
	}
	if req.DateEcheance != nil {
		f.DateEcheance = *req.DateEcheance
	}
	if req.Notes != nil {
		f.Notes = req.Notes
	}
	if req.Lignes != nil {
		f.Lignes = buildLignes(req.Lignes)
	}
	CalculerTotaux(f)

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	f, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return err
	}
	if f.Statut != StatutBrouillon {
		return ErrNonModifiable
	}
	return s.repo.Delete(ctx, artisanID, id)
}

// Envoyer emails the invoice and moves it to ENVOYEE.
func (s *Service) Envoyer(ctx context.Context, artisanID, id int64) (*Facture, error) {
	f, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if f.Statut != StatutBrouillon && f.Statut != StatutEnvoyee {
		return nil, ErrStatutInvalide
	}

	client, err := s.clientsRepo.Get(ctx, artisanID, f.ClientID)
	if err != nil {
		return nil, err
	}
	if client.Email == nil || *client.Email == "" {
		return nil, ErrClientSansEmail
	}

	sujet := fmt.Sprintf("Votre facture %s", f.Numero)
	corps := fmt.Sprintf(
		"Bonjour %s,\n\nVeuillez trouver votre facture %s (%s) d'un montant de %.2f € TTC.\nElle est payable avant le %s.\n",
		client.Nom, f.Numero, f.Objet, f.TotalTTC, f.DateEcheance.Format("02/01/2006"))
	if err := s.mailer.Send(ctx, *client.Email, sujet, corps); err != nil {
		return nil, err
	}

	if err := s.repo.ChangerStatut(ctx, artisanID, id, StatutEnvoyee); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

// EnregistrerPaiement marks the invoice paid.
func (s *Service) EnregistrerPaiement(ctx context.Context, artisanID, id int64, req PaiementRequest) (*Facture, error) {
	f, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if f.Statut != StatutEnvoyee {
		return nil, ErrStatutInvalide
	}
	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	if err := s.repo.EnregistrerPaiement(ctx, artisanID, id, date, req.Moyen); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

// Annuler cancels an unpaid invoice.
func (s *Service) Annuler(ctx context.Context, artisanID, id int64) (*Facture, error) {
	f, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if f.Statut == StatutPayee {
		return nil, ErrStatutInvalide
	}
	if err := s.repo.ChangerStatut(ctx, artisanID, id, StatutAnnulee); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func buildLignes(reqs []LigneRequest) []Ligne {
	lignes := make([]Ligne, 0, len(reqs))
	for _, lr := range reqs {
		unite := strings.TrimSpace(lr.Unite)
		if unite == "" {
			unite = "u"
		}
		lignes = append(lignes, Ligne{
			Designation:  strings.TrimSpace(lr.Designation),
			Quantite:     lr.Quantite,
			Unite:        unite,
			PrixUnitaire: lr.PrixUnitaire,
			TauxTVA:      lr.TauxTVA,
		})
	}
	return lignes
}
