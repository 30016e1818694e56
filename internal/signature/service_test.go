package signature

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
)

type fakeTokens struct {
	tokens  map[string]*Token
	preuves map[string]Preuve
}

func (f *fakeTokens) Get(_ context.Context, token string) (*Token, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, ErrLienInconnu
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTokens) FindActif(_ context.Context, devisID int64, now time.Time) (*Token, error) {
	for _, t := range f.tokens {
		if t.DevisID == devisID && t.ConsumedAt == nil && t.ExpiresAt.After(now) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, ErrLienInconnu
}

func (f *fakeTokens) Create(_ context.Context, t Token) error {
	f.tokens[t.Token] = &t
	return nil
}

func (f *fakeTokens) AvancerEtape(_ context.Context, token string, etape Etape, signataire, telephone *string) error {
	t, ok := f.tokens[token]
	if !ok {
		return ErrLienInconnu
	}
	t.Etape = etape
	if signataire != nil {
		t.Signataire = signataire
	}
	if telephone != nil {
		t.Telephone = telephone
	}
	return nil
}

func (f *fakeTokens) Consommer(_ context.Context, token string, preuve Preuve) error {
	t, ok := f.tokens[token]
	if !ok || t.ConsumedAt != nil {
		return ErrDejaSigne
	}
	t.ConsumedAt = &preuve.Quand
	t.Etape = EtapeTerminee
	t.Email = &preuve.Email
	f.preuves[token] = preuve
	return nil
}

// fakeDevis implémente devis.Repository, seuls Get et MarquerSigne comptent ici.
type fakeDevis struct {
	devis map[int64]*devis.Devis
}

func (f *fakeDevis) Get(_ context.Context, artisanID, id int64) (*devis.Devis, error) {
	d, ok := f.devis[id]
	if !ok || d.ArtisanID != artisanID {
		return nil, devis.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDevis) MarquerSigne(_ context.Context, artisanID, id int64, signataire string, quand time.Time) error {
	d, ok := f.devis[id]
	if !ok || d.ArtisanID != artisanID || d.DateSignature != nil {
		return devis.ErrNotFound
	}
	d.Statut = devis.StatutAccepte
	d.SignataireNom = &signataire
	d.DateSignature = &quand
	return nil
}

func (f *fakeDevis) List(context.Context, devis.ListDevisRequest) ([]devis.Devis, int, error) {
	return nil, 0, nil
}
func (f *fakeDevis) Create(context.Context, *devis.Devis) error { return nil }
func (f *fakeDevis) Update(context.Context, *devis.Devis) error { return nil }
func (f *fakeDevis) Delete(context.Context, int64, int64) error { return nil }
func (f *fakeDevis) MarquerEnvoye(context.Context, int64, int64, time.Time) error {
	return nil
}
func (f *fakeDevis) ChangerStatut(context.Context, int64, int64, devis.StatutDevis) error {
	return nil
}
func (f *fakeDevis) ListNonSignes(context.Context, int64, time.Time) ([]devis.Devis, error) {
	return nil, nil
}
func (f *fakeDevis) EnregistrerRelance(context.Context, int64, int64, *string, bool, time.Time) error {
	return nil
}
func (f *fakeDevis) ListRelances(context.Context, int64, int64) ([]devis.Relance, error) {
	return nil, nil
}

type captureSMS struct {
	mu    sync.Mutex
	Codes []string
}

func (c *captureSMS) SendCode(_ context.Context, _, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Codes = append(c.Codes, code)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeTokens, *fakeDevis, *captureSMS, *mailer.NopMailer) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	envoi := time.Now().Add(-time.Hour)
	tokens := &fakeTokens{tokens: make(map[string]*Token), preuves: make(map[string]Preuve)}
	quotes := &fakeDevis{devis: map[int64]*devis.Devis{
		42: {
			ID: 42, ArtisanID: 1, ClientID: 10, Numero: "DEV-2026-0042",
			Statut: devis.StatutEnvoye, Objet: "Rénovation salle de bain",
			DateEmission: envoi, DateValidite: time.Now().AddDate(0, 0, 29), DateEnvoi: &envoi,
			TotalHT: 1000, TotalTVA: 100, TotalTTC: 1100,
		},
	}}
	sms := &captureSMS{}
	mail := &mailer.NopMailer{}
	svc := NewService(slog.Default(), tokens, quotes, NewCodeStore(rdb), sms, mail, nil, "https://app.example/", true)
	return svc, tokens, quotes, sms, mail
}

func paraphe() SignerRequest {
	return SignerRequest{
		Signature: "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAE=",
		Email:     "jean.dupont@example.fr",
	}
}

func lienToken(t *testing.T, svc *Service, quotes *fakeDevis) string {
	t.Helper()
	lien, err := svc.LienPourDevis(context.Background(), quotes.devis[42])
	require.NoError(t, err)
	return lien[len("https://app.example/signature/"):]
}

func TestParcoursCompletDeSignature(t *testing.T) {
	svc, tokens, quotes, sms, mail := newTestService(t)
	ctx := context.Background()
	token := lienToken(t, svc, quotes)

	c, err := svc.Consulter(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, EtapeInfo, c.Etape)
	assert.Equal(t, "DEV-2026-0042", c.Devis.Numero)

	resp, err := svc.RenseignerInfo(ctx, token, InfoRequest{Nom: "Jean Dupont", Telephone: "06 12 34 56 78"})
	require.NoError(t, err)
	assert.Equal(t, EtapeSMS, resp.Etape)
	require.NotNil(t, resp.CodeDev, "le mode développement doit renvoyer le code")
	require.Len(t, sms.Codes, 1)
	assert.Equal(t, sms.Codes[0], *resp.CodeDev)

	require.NoError(t, svc.VerifierCode(ctx, token, *resp.CodeDev))

	c, err = svc.Signer(ctx, token, paraphe(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, EtapeTerminee, c.Etape)
	require.NotNil(t, c.Signataire)
	assert.Equal(t, "Jean Dupont", *c.Signataire)

	d := quotes.devis[42]
	assert.Equal(t, devis.StatutAccepte, d.Statut)
	require.NotNil(t, d.DateSignature)

	preuve := tokens.preuves[token]
	assert.Equal(t, "jean.dupont@example.fr", preuve.Email)
	assert.Equal(t, paraphe().Signature, preuve.Image)
	assert.Equal(t, "203.0.113.7", preuve.IP)
	assert.False(t, preuve.Quand.IsZero())

	require.Len(t, mail.Sent, 1)
	assert.Equal(t, "jean.dupont@example.fr", mail.Sent[0].To)
	assert.Contains(t, mail.Sent[0].Subject, "Confirmation")
	assert.Contains(t, mail.Sent[0].Body, "DEV-2026-0042")
}

func TestSignerExigeLeTrace(t *testing.T) {
	svc, tokens, quotes, _, mail := newTestService(t)
	ctx := context.Background()
	token := lienToken(t, svc, quotes)

	resp, err := svc.RenseignerInfo(ctx, token, InfoRequest{Nom: "Jean Dupont", Telephone: "0612345678"})
	require.NoError(t, err)
	require.NoError(t, svc.VerifierCode(ctx, token, *resp.CodeDev))

	for _, image := range []string{"", "   ", "data:image/png;base64,", "iVBORw0KGgo=", "data:text/plain;base64,Qm9uam91cg=="} {
		_, err = svc.Signer(ctx, token, SignerRequest{Signature: image, Email: "jean@example.fr"}, "203.0.113.7")
		assert.ErrorIs(t, err, ErrSignatureManquante, image)
	}

	// rien ne doit avoir bougé : devis non signé, lien toujours actif
	assert.Nil(t, quotes.devis[42].DateSignature)
	assert.Nil(t, tokens.tokens[token].ConsumedAt)
	assert.Empty(t, mail.Sent)
}

func TestDoubleSignature(t *testing.T) {
	svc, _, quotes, _, mail := newTestService(t)
	ctx := context.Background()
	token := lienToken(t, svc, quotes)

	resp, err := svc.RenseignerInfo(ctx, token, InfoRequest{Nom: "Jean Dupont", Telephone: "0612345678"})
	require.NoError(t, err)
	require.NoError(t, svc.VerifierCode(ctx, token, *resp.CodeDev))
	_, err = svc.Signer(ctx, token, paraphe(), "203.0.113.7")
	require.NoError(t, err)

	_, err = svc.Signer(ctx, token, paraphe(), "203.0.113.7")
	assert.ErrorIs(t, err, ErrDejaSigne)
	require.Len(t, mail.Sent, 1, "une seule confirmation")
}

func TestLienReutiliseTantQueValide(t *testing.T) {
	svc, tokens, quotes, _, _ := newTestService(t)

	premier := lienToken(t, svc, quotes)
	second := lienToken(t, svc, quotes)
	assert.Equal(t, premier, second)
	assert.Len(t, tokens.tokens, 1)
}

func TestLienExpire(t *testing.T) {
	svc, _, quotes, _, _ := newTestService(t)
	token := lienToken(t, svc, quotes)

	svc.now = func() time.Time { return time.Now().Add(TTLToken + time.Hour) }

	_, err := svc.Consulter(context.Background(), token)
	assert.ErrorIs(t, err, ErrLienExpire)
}

func TestTelephoneInvalide(t *testing.T) {
	svc, _, quotes, _, _ := newTestService(t)
	token := lienToken(t, svc, quotes)

	for _, tel := range []string{"0112345678", "0612345", "+4915112345678", "abc"} {
		_, err := svc.RenseignerInfo(context.Background(), token, InfoRequest{Nom: "X", Telephone: tel})
		assert.ErrorIs(t, err, ErrTelephoneInvalide, tel)
	}
}

func TestNormaliserTelephone(t *testing.T) {
	for entree, attendu := range map[string]string{
		"06 12 34 56 78":  "+33612345678",
		"07.98.76.54.32":  "+33798765432",
		"+33 6 12 34 56 78": "+33612345678",
	} {
		got, err := NormaliserTelephone(entree)
		require.NoError(t, err, entree)
		assert.Equal(t, attendu, got)
	}
}

func TestCodeInvalidePuisBlocage(t *testing.T) {
	svc, _, quotes, _, _ := newTestService(t)
	ctx := context.Background()
	token := lienToken(t, svc, quotes)

	resp, err := svc.RenseignerInfo(ctx, token, InfoRequest{Nom: "Jean", Telephone: "0612345678"})
	require.NoError(t, err)

	mauvais := "000000"
	if *resp.CodeDev == mauvais {
		mauvais = "000001"
	}
	for i := 0; i < maxTentatives; i++ {
		err = svc.VerifierCode(ctx, token, mauvais)
		assert.ErrorIs(t, err, ErrCodeInvalide)
	}
	err = svc.VerifierCode(ctx, token, *resp.CodeDev)
	assert.ErrorIs(t, err, ErrTropDeTentatives)

	// un nouveau code débloque le parcours
	resp, err = svc.RenvoyerCode(ctx, token)
	require.NoError(t, err)
	require.NoError(t, svc.VerifierCode(ctx, token, *resp.CodeDev))
}

func TestEtapesDansLOrdre(t *testing.T) {
	svc, _, quotes, _, _ := newTestService(t)
	ctx := context.Background()
	token := lienToken(t, svc, quotes)

	err := svc.VerifierCode(ctx, token, "123456")
	assert.ErrorIs(t, err, ErrEtapeInvalide)
	_, err = svc.Signer(ctx, token, paraphe(), "203.0.113.7")
	assert.ErrorIs(t, err, ErrEtapeInvalide)
	_, err = svc.RenvoyerCode(ctx, token)
	assert.ErrorIs(t, err, ErrEtapeInvalide)
}

func TestDevisDejaSigneParAilleurs(t *testing.T) {
	svc, _, quotes, _, _ := newTestService(t)
	ctx := context.Background()
	token := lienToken(t, svc, quotes)

	quand := time.Now()
	nom := "Signé au bureau"
	quotes.devis[42].DateSignature = &quand
	quotes.devis[42].SignataireNom = &nom
	quotes.devis[42].Statut = devis.StatutAccepte

	_, err := svc.Consulter(ctx, token)
	assert.ErrorIs(t, err, ErrDejaSigne)
}

func TestCodeExpireAvecLeTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewCodeStore(rdb)

	code, err := store.Issue(context.Background(), "jeton")
	require.NoError(t, err)

	mr.FastForward(codeTTL + time.Second)
	err = store.Verify(context.Background(), "jeton", code)
	assert.ErrorIs(t, err, ErrCodeInvalide)
}
