package signature

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
)

// Service drives the public signature flow. Each link walks the quote
// through three steps: identity (info), mobile verification (sms), then the
// signature itself. Steps only ever advance, never rewind.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	devisRepo devis.Repository
	codes     *CodeStore
	sms       SMSSender
	mail      mailer.Mailer
	notifs    Notificateur
	baseURL   string
	devMode   bool
	now       func() time.Time
}

// Notificateur prévient l'artisan qu'un devis vient d'être signé.
// Implémenté par notifications.Service ; nil accepté.
type Notificateur interface {
	DevisSigne(ctx context.Context, artisanID, devisID int64, numero, signataire string)
}

func NewService(logger *slog.Logger, repo Repository, devisRepo devis.Repository, codes *CodeStore, sms SMSSender, mail mailer.Mailer, notifs Notificateur, baseURL string, devMode bool) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		devisRepo: devisRepo,
		codes:     codes,
		sms:       sms,
		mail:      mail,
		notifs:    notifs,
		baseURL:   strings.TrimRight(baseURL, "/"),
		devMode:   devMode,
		now:       time.Now,
	}
}

// etapesSuivantes encode l'unique chemin du parcours.
var etapesSuivantes = map[Etape]Etape{
	EtapeInfo:      EtapeSMS,
	EtapeSMS:       EtapeSignature,
	EtapeSignature: EtapeTerminee,
}

// LienPourDevis returns the public signature URL for a quote, reusing a
// still-valid link when one exists so reminder emails do not invalidate the
// original one.
func (s *Service) LienPourDevis(ctx context.Context, d *devis.Devis) (string, error) {
	now := s.now()
	if t, err := s.repo.FindActif(ctx, d.ID, now); err == nil {
		return s.url(t.Token), nil
	}

	t := Token{
		Token:     uuid.NewString(),
		ArtisanID: d.ArtisanID,
		DevisID:   d.ID,
		Etape:     EtapeInfo,
		ExpiresAt: now.Add(TTLToken),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return "", err
	}
	return s.url(t.Token), nil
}

func (s *Service) url(token string) string {
	return fmt.Sprintf("%s/signature/%s", s.baseURL, token)
}

// Consultation is the client-facing view of a quote behind a signature link.
type Consultation struct {
	Etape      Etape       `json:"etape"`
	ExpiresAt  time.Time   `json:"expires_at"`
	Signataire *string     `json:"signataire,omitempty"`
	Devis      *devisPub   `json:"devis"`
}

type devisPub struct {
	Numero       string        `json:"numero"`
	Objet        string        `json:"objet"`
	DateEmission time.Time     `json:"date_emission"`
	DateValidite time.Time     `json:"date_validite"`
	TotalHT      float64       `json:"total_ht"`
	TotalTVA     float64       `json:"total_tva"`
	TotalTTC     float64       `json:"total_ttc"`
	Lignes       []devis.Ligne `json:"lignes"`
}

// Consulter resolves a link and returns the quote it points at. A consumed
// link stays consultable so the signer can land back on the confirmation.
func (s *Service) Consulter(ctx context.Context, token string) (*Consultation, error) {
	t, d, err := s.resoudre(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Consultation{
		Etape:      t.Etape,
		ExpiresAt:  t.ExpiresAt,
		Signataire: t.Signataire,
		Devis: &devisPub{
			Numero:       d.Numero,
			Objet:        d.Objet,
			DateEmission: d.DateEmission,
			DateValidite: d.DateValidite,
			TotalHT:      d.TotalHT,
			TotalTVA:     d.TotalTVA,
			TotalTTC:     d.TotalTTC,
			Lignes:       d.Lignes,
		},
	}, nil
}

type InfoResponse struct {
	Etape Etape `json:"etape"`
	// CodeDev n'est renseigné qu'en développement, pour tester le parcours
	// sans passerelle SMS.
	CodeDev *string `json:"code_dev,omitempty"`
}

// RenseignerInfo records the signer's name and mobile, then sends the
// verification code.
func (s *Service) RenseignerInfo(ctx context.Context, token string, req InfoRequest) (*InfoResponse, error) {
	t, _, err := s.resoudre(ctx, token)
	if err != nil {
		return nil, err
	}
	if t.Etape != EtapeInfo {
		return nil, ErrEtapeInvalide
	}

	telephone, err := NormaliserTelephone(req.Telephone)
	if err != nil {
		return nil, err
	}
	nom := strings.TrimSpace(req.Nom)

	code, err := s.codes.Issue(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.sms.SendCode(ctx, telephone, code); err != nil {
		return nil, err
	}
	if err := s.repo.AvancerEtape(ctx, token, etapesSuivantes[EtapeInfo], &nom, &telephone); err != nil {
		return nil, err
	}

	resp := &InfoResponse{Etape: EtapeSMS}
	if s.devMode {
		resp.CodeDev = &code
	}
	return resp, nil
}

// RenvoyerCode reissues a verification code for a signer stuck at the SMS
// step, for instance after five failed attempts.
func (s *Service) RenvoyerCode(ctx context.Context, token string) (*InfoResponse, error) {
	t, _, err := s.resoudre(ctx, token)
	if err != nil {
		return nil, err
	}
	if t.Etape != EtapeSMS || t.Telephone == nil {
		return nil, ErrEtapeInvalide
	}

	code, err := s.codes.Issue(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.sms.SendCode(ctx, *t.Telephone, code); err != nil {
		return nil, err
	}

	resp := &InfoResponse{Etape: EtapeSMS}
	if s.devMode {
		resp.CodeDev = &code
	}
	return resp, nil
}

// VerifierCode checks the SMS code and unlocks the signature step.
func (s *Service) VerifierCode(ctx context.Context, token, code string) error {
	t, _, err := s.resoudre(ctx, token)
	if err != nil {
		return err
	}
	if t.Etape != EtapeSMS {
		return ErrEtapeInvalide
	}
	if err := s.codes.Verify(ctx, token, code); err != nil {
		return err
	}
	return s.repo.AvancerEtape(ctx, token, etapesSuivantes[EtapeSMS], nil, nil)
}

// Signer accepts the quote on behalf of the verified signer and consumes the
// link, keeping the drawn signature, the signer's email and the source IP as
// proof. The consume is the idempotency barrier: a double submit signs once.
func (s *Service) Signer(ctx context.Context, token string, req SignerRequest, ip string) (*Consultation, error) {
	t, d, err := s.resoudre(ctx, token)
	if err != nil {
		return nil, err
	}
	if t.ConsumedAt != nil || t.Etape == EtapeTerminee {
		return nil, ErrDejaSigne
	}
	if t.Etape != EtapeSignature || t.Signataire == nil {
		return nil, ErrEtapeInvalide
	}

	image, err := ValiderImageSignature(req.Signature)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	now := s.now()
	preuve := Preuve{Email: email, Image: image, IP: ip, Quand: now}
	if err := s.repo.Consommer(ctx, token, preuve); err != nil {
		return nil, err
	}
	if err := s.devisRepo.MarquerSigne(ctx, t.ArtisanID, t.DevisID, *t.Signataire, now); err != nil {
		return nil, err
	}

	s.logger.Info("devis signé en ligne",
		slog.String("numero", d.Numero),
		slog.Int64("devis_id", d.ID),
		slog.String("signataire", *t.Signataire),
		slog.String("ip", ip))

	s.envoyerConfirmation(ctx, d, *t.Signataire, email)
	if s.notifs != nil {
		s.notifs.DevisSigne(ctx, t.ArtisanID, t.DevisID, d.Numero, *t.Signataire)
	}

	return s.Consulter(ctx, token)
}

// envoyerConfirmation never blocks the signature: a mail failure is logged,
// the quote stays signed.
func (s *Service) envoyerConfirmation(ctx context.Context, d *devis.Devis, signataire, email string) {
	sujet := fmt.Sprintf("Confirmation de signature du devis %s", d.Numero)
	corps := fmt.Sprintf(
		"Bonjour %s,\n\nNous confirmons la signature de votre devis %s (%s) d'un montant de %.2f € TTC.\n\nVous recevrez prochainement les détails de l'intervention.\n",
		signataire, d.Numero, d.Objet, d.TotalTTC)
	if err := s.mail.Send(ctx, email, sujet, corps); err != nil {
		s.logger.Warn("email de confirmation de signature non envoyé",
			slog.String("numero", d.Numero), slog.Any("error", err))
	}
}

// resoudre loads the link and its quote, translating stale states into the
// public flow's typed errors.
func (s *Service) resoudre(ctx context.Context, token string) (*Token, *devis.Devis, error) {
	t, err := s.repo.Get(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.devisRepo.Get(ctx, t.ArtisanID, t.DevisID)
	if err != nil {
		return nil, nil, err
	}
	if t.ConsumedAt != nil || t.Etape == EtapeTerminee {
		return t, d, nil
	}
	if d.EstSigne() {
		return nil, nil, ErrDejaSigne
	}
	if t.Expire(s.now()) {
		return nil, nil, ErrLienExpire
	}
	return t, d, nil
}
