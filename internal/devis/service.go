package devis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
	"github.com/artisan-erp/artisan-erp/internal/observability"
)

var (
	ErrNonModifiable   = errors.New("devis: seul un brouillon est modifiable")
	ErrStatutInvalide  = errors.New("devis: transition de statut invalide")
	ErrClientSansEmail = errors.New("devis: le client n'a pas d'adresse email")
	ErrDejaSigne       = errors.New("devis: déjà signé")
)

// validiteParDefaut est la durée de validité appliquée quand l'artisan n'en
// précise pas.
const validiteParDefaut = 30 * 24 * time.Hour

// LienSignature produit l'URL publique de signature d'un devis, en
// réutilisant un jeton encore valide quand il existe.
type LienSignature interface {
	LienPourDevis(ctx context.Context, d *Devis) (string, error)
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	clientsRepo clients.Repository
	mailer      mailer.Mailer
	liens       LienSignature
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewService(logger *slog.Logger, repo Repository, clientsRepo clients.Repository, m mailer.Mailer, liens LienSignature, metrics *observability.Metrics) *Service {
	return &Service{
		logger:      logger,
		repo:        repo,
		clientsRepo: clientsRepo,
		mailer:      m,
		liens:       liens,
		metrics:     metrics,
		now:         time.Now,
	}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Devis, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, req ListDevisRequest) ([]Devis, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Relances(ctx context.Context, artisanID, id int64) ([]Relance, error) {
	if _, err := s.repo.Get(ctx, artisanID, id); err != nil {
		return nil, err
	}
	return s.repo.ListRelances(ctx, artisanID, id)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateDevisRequest) (*Devis, error) {
	if _, err := s.clientsRepo.Get(ctx, artisanID, req.ClientID); err != nil {
		return nil, err
	}

	now := s.now()
	d := &Devis{
		ArtisanID:    artisanID,
		ClientID:     req.ClientID,
		Statut:       StatutBrouillon,
		Objet:        strings.TrimSpace(req.Objet),
		DateEmission: now,
		DateValidite: now.Add(validiteParDefaut),
		Notes:        req.Notes,
		Lignes:       buildLignes(req.Lignes),
	}
	if req.DateValidite != nil {
		d.DateValidite = *req.DateValidite
	}
	CalculerTotaux(d)

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, d.ID)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateDevisRequest) (*Devis, error) {
	d, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if d.Statut != StatutBrouillon {
		return nil, ErrNonModifiable
	}
	if req.Objet != nil {
		d.Objet = strings.TrimSpace(*req.Objet)
	}
	if req.DateValidite != nil {
		d.DateValidite = *req.DateValidite
	}
	if req.Notes != nil {
		d.Notes = req.Notes
	}
	if req.Lignes != nil {
		d.Lignes = buildLignes(req.Lignes)
	}
	CalculerTotaux(d)

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	d, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return err
	}
	if d.Statut != StatutBrouillon {
		return ErrNonModifiable
	}
	return s.repo.Delete(ctx, artisanID, id)
}

// Envoyer emails the quote to the client with its signature link and moves it
// to ENVOYE. Re-sending an already sent quote is allowed and refreshes the
// send date.
func (s *Service) Envoyer(ctx context.Context, artisanID, id int64) (*Devis, error) {
	d, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if d.Statut != StatutBrouillon && d.Statut != StatutEnvoye {
		return nil, ErrStatutInvalide
	}

	client, err := s.clientsRepo.Get(ctx, artisanID, d.ClientID)
	if err != nil {
		return nil, err
	}
	if client.Email == nil || *client.Email == "" {
		return nil, ErrClientSansEmail
	}

	lien, err := s.liens.LienPourDevis(ctx, d)
	if err != nil {
		return nil, err
	}

	sujet := fmt.Sprintf("Votre devis %s", d.Numero)
	corps := fmt.Sprintf(
		"Bonjour %s,\n\nVeuillez trouver votre devis %s (%s) d'un montant de %.2f € TTC.\n\nVous pouvez le consulter et le signer en ligne :\n%s\n\nCe lien est valable jusqu'au %s.\n",
		client.Nom, d.Numero, d.Objet, d.TotalTTC, lien, d.DateValidite.Format("02/01/2006"))
	if err := s.mailer.Send(ctx, *client.Email, sujet, corps); err != nil {
		return nil, err
	}

	if err := s.repo.MarquerEnvoye(ctx, artisanID, id, s.now()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

// MarquerSigne records the client signature and accepts the quote. It is the
// entry point used by the public signature flow.
func (s *Service) MarquerSigne(ctx context.Context, artisanID, id int64, signataire string) (*Devis, error) {
	d, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if d.EstSigne() {
		return nil, ErrDejaSigne
	}
	if d.Statut != StatutEnvoye {
		return nil, ErrStatutInvalide
	}
	if err := s.repo.MarquerSigne(ctx, artisanID, id, signataire, s.now()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

// Refuser records a refusal of a sent quote.
func (s *Service) Refuser(ctx context.Context, artisanID, id int64) (*Devis, error) {
	d, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if d.Statut != StatutEnvoye {
		return nil, ErrStatutInvalide
	}
	if err := s.repo.ChangerStatut(ctx, artisanID, id, StatutRefuse); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

// DevisNonSignes lists sent, unsigned, still-valid quotes whose send date is
// at least joursMinimum days old.
func (s *Service) DevisNonSignes(ctx context.Context, artisanID int64, joursMinimum int) ([]Devis, error) {
	if joursMinimum < 0 {
		joursMinimum = 0
	}
	cutoff := s.now().AddDate(0, 0, -joursMinimum)
	return s.repo.ListNonSignes(ctx, artisanID, cutoff)
}

// DevisEnAttente annote un devis non signé pour l'écran de relance.
type DevisEnAttente struct {
	Devis
	JoursDepuisCreation int  `json:"jours_depuis_creation"`
	JoursDepuisRelance  *int `json:"jours_depuis_relance,omitempty"`
}

// DevisEnAttenteDeRelance returns the unsigned quotes with their age and the
// days elapsed since the last reminder.
func (s *Service) DevisEnAttenteDeRelance(ctx context.Context, artisanID int64, joursMinimum int) ([]DevisEnAttente, error) {
	list, err := s.DevisNonSignes(ctx, artisanID, joursMinimum)
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]DevisEnAttente, 0, len(list))
	for _, d := range list {
		entry := DevisEnAttente{
			Devis:               d,
			JoursDepuisCreation: int(now.Sub(d.CreatedAt).Hours() / 24),
		}
		if d.DerniereRelance != nil {
			jours := int(now.Sub(*d.DerniereRelance).Hours() / 24)
			entry.JoursDepuisRelance = &jours
		}
		result = append(result, entry)
	}
	return result, nil
}

// EnvoyerRelance emails one reminder for an unsigned quote. A non-empty
// message is joined to the email and kept with the relance record.
func (s *Service) EnvoyerRelance(ctx context.Context, artisanID, id int64, message string, automatique bool) error {
	d, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return err
	}
	if d.EstSigne() {
		return ErrDejaSigne
	}
	if d.StatutEffectif(s.now()) != StatutEnvoye {
		return ErrStatutInvalide
	}

	client, err := s.clientsRepo.Get(ctx, artisanID, d.ClientID)
	if err != nil {
		return err
	}
	if client.Email == nil || *client.Email == "" {
		return ErrClientSansEmail
	}

	lien, err := s.liens.LienPourDevis(ctx, d)
	if err != nil {
		return err
	}

	message = strings.TrimSpace(message)
	sujet := fmt.Sprintf("Rappel : votre devis %s est en attente", d.Numero)
	corps := fmt.Sprintf(
		"Bonjour %s,\n\nVotre devis %s (%s) d'un montant de %.2f € TTC est toujours en attente de signature.\n",
		client.Nom, d.Numero, d.Objet, d.TotalTTC)
	if message != "" {
		corps += fmt.Sprintf("\nMessage de votre artisan :\n%s\n", message)
	}
	corps += fmt.Sprintf(
		"\nVous pouvez le consulter et le signer en ligne :\n%s\n\nIl reste valable jusqu'au %s.\n",
		lien, d.DateValidite.Format("02/01/2006"))
	if err := s.mailer.Send(ctx, *client.Email, sujet, corps); err != nil {
		return err
	}

	var note *string
	if message != "" {
		note = &message
	}
	if err := s.repo.EnregistrerRelance(ctx, artisanID, id, note, automatique, s.now()); err != nil {
		return err
	}
	s.metrics.ObserveRelance()
	return nil
}

// RelanceBatchResult summarises one automatic reminder run.
type RelanceBatchResult struct {
	Candidats int `json:"candidats"`
	Envoyees  int `json:"envoyees"`
	Ignorees  int `json:"ignorees"`
}

// EnvoyerRelancesAutomatiques sends reminders for every eligible unsigned
// quote of the artisan. Candidates are quotes sent at least joursAvantPremiere
// days ago; a quote is skipped when the client has no email, when a reminder
// already went out less than joursEntre days ago, or when maxRelances
// reminders were already sent for it.
func (s *Service) EnvoyerRelancesAutomatiques(ctx context.Context, artisanID int64, joursAvantPremiere, joursEntre, maxRelances int) (*RelanceBatchResult, error) {
	candidats, err := s.DevisNonSignes(ctx, artisanID, joursAvantPremiere)
	if err != nil {
		return nil, err
	}

	result := &RelanceBatchResult{Candidats: len(candidats)}
	now := s.now()

	var retenus []Devis
	for _, d := range candidats {
		if maxRelances > 0 && d.NbRelances >= maxRelances {
			result.Ignorees++
			continue
		}
		if d.DerniereRelance != nil && now.Sub(*d.DerniereRelance) < time.Duration(joursEntre)*24*time.Hour {
			result.Ignorees++
			continue
		}
		retenus = append(retenus, d)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	envoyees := make(chan int64, len(retenus))
	for _, d := range retenus {
		g.Go(func() error {
			err := s.EnvoyerRelance(gctx, artisanID, d.ID, "", true)
			switch {
			case err == nil:
				envoyees <- d.ID
				return nil
			case errors.Is(err, ErrClientSansEmail), errors.Is(err, ErrDejaSigne), errors.Is(err, ErrStatutInvalide):
				s.logger.Info("relance ignorée", slog.Int64("devis_id", d.ID), slog.Any("raison", err))
				return nil
			default:
				return fmt.Errorf("relance du devis %d: %w", d.ID, err)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(envoyees)
	for range envoyees {
		result.Envoyees++
	}
	result.Ignorees = result.Candidats - result.Envoyees
	return result, nil
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
			ArticleID:    lr.ArticleID,
		})
	}
	return lignes
}
