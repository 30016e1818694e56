package factures

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/devis"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
)

type mockRepository struct {
	factures map[int64]*Facture
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{factures: make(map[int64]*Facture), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, artisanID, id int64) (*Facture, error) {
	f, ok := m.factures[id]
	if !ok || f.ArtisanID != artisanID {
		return nil, ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *mockRepository) List(_ context.Context, req ListFacturesRequest) ([]Facture, int, error) {
	var result []Facture
	for _, f := range m.factures {
		if f.ArtisanID == req.ArtisanID {
			result = append(result, *f)
		}
	}
	return result, len(result), nil
}

func (m *mockRepository) Create(_ context.Context, f *Facture) error {
	f.ID = m.nextID
	f.Numero = fmt.Sprintf("FAC-%d-%04d", f.DateEmission.Year(), m.nextID)
	m.nextID++
	copied := *f
	m.factures[f.ID] = &copied
	return nil
}

func (m *mockRepository) Update(_ context.Context, f *Facture) error {
	existing, ok := m.factures[f.ID]
	if !ok || existing.ArtisanID != f.ArtisanID {
		return ErrNotFound
	}
	copied := *f
	m.factures[f.ID] = &copied
	return nil
}

func (m *mockRepository) Delete(_ context.Context, artisanID, id int64) error {
	f, ok := m.factures[id]
	if !ok || f.ArtisanID != artisanID {
		return ErrNotFound
	}
	delete(m.factures, id)
	return nil
}

func (m *mockRepository) ChangerStatut(_ context.Context, artisanID, id int64, statut StatutFacture) error {
	f, ok := m.factures[id]
	if !ok || f.ArtisanID != artisanID {
		return ErrNotFound
	}
	f.Statut = statut
	return nil
}

func (m *mockRepository) EnregistrerPaiement(_ context.Context, artisanID, id int64, date time.Time, moyen string) error {
	f, ok := m.factures[id]
	if !ok || f.ArtisanID != artisanID {
		return ErrNotFound
	}
	f.Statut = StatutPayee
	f.PaiementDate = &date
	f.PaiementMoyen = &moyen
	return nil
}

func (m *mockRepository) ListNouveauxRetards(_ context.Context, depuis, jusqu time.Time) ([]Facture, error) {
	var result []Facture
	for _, f := range m.factures {
		if f.Statut == StatutEnvoyee && f.PaiementDate == nil &&
			!f.DateEcheance.Before(depuis) && f.DateEcheance.Before(jusqu) {
			result = append(result, *f)
		}
	}
	return result, nil
}

type mockClients struct {
	clients map[int64]clients.Client
}

func (m *mockClients) Get(_ context.Context, artisanID, id int64) (*clients.Client, error) {
	c, ok := m.clients[id]
	if !ok || c.ArtisanID != artisanID {
		return nil, clients.ErrNotFound
	}
	return &c, nil
}

func (m *mockClients) List(context.Context, clients.ListClientsRequest) ([]clients.Client, int, error) {
	return nil, 0, nil
}
func (m *mockClients) Create(context.Context, clients.Client) (int64, error) { return 0, nil }
func (m *mockClients) Update(context.Context, clients.Client) error          { return nil }
func (m *mockClients) Delete(context.Context, int64, int64) error            { return nil }
func (m *mockClients) CountReferences(context.Context, int64) (int, error)   { return 0, nil }

type fakeDevisRepo struct {
	devis map[int64]*devis.Devis
}

func (f *fakeDevisRepo) Get(_ context.Context, artisanID, id int64) (*devis.Devis, error) {
	d, ok := f.devis[id]
	if !ok || d.ArtisanID != artisanID {
		return nil, devis.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDevisRepo) List(context.Context, devis.ListDevisRequest) ([]devis.Devis, int, error) {
	return nil, 0, nil
}
func (f *fakeDevisRepo) Create(context.Context, *devis.Devis) error { return nil }
func (f *fakeDevisRepo) Update(context.Context, *devis.Devis) error { return nil }
func (f *fakeDevisRepo) Delete(context.Context, int64, int64) error { return nil }
func (f *fakeDevisRepo) MarquerEnvoye(context.Context, int64, int64, time.Time) error {
	return nil
}
func (f *fakeDevisRepo) MarquerSigne(context.Context, int64, int64, string, time.Time) error {
	return nil
}
func (f *fakeDevisRepo) ChangerStatut(context.Context, int64, int64, devis.StatutDevis) error {
	return nil
}
func (f *fakeDevisRepo) ListNonSignes(context.Context, int64, time.Time) ([]devis.Devis, error) {
	return nil, nil
}
func (f *fakeDevisRepo) EnregistrerRelance(context.Context, int64, int64, *string, bool, time.Time) error {
	return nil
}
func (f *fakeDevisRepo) ListRelances(context.Context, int64, int64) ([]devis.Relance, error) {
	return nil, nil
}

func ptr[T any](v T) *T { return &v }

func newTestService() (*Service, *fakeDevisRepo, *mailer.NopMailer) {
	clientsRepo := &mockClients{clients: map[int64]clients.Client{
		10: {ID: 10, ArtisanID: 1, Nom: "Dupont", Email: ptr("dupont@example.fr")},
	}}
	quotes := &fakeDevisRepo{devis: map[int64]*devis.Devis{
		42: {
			ID: 42, ArtisanID: 1, ClientID: 10, Numero: "DEV-2026-0042",
			Statut: devis.StatutAccepte, Objet: "Rénovation",
			Lignes: []devis.Ligne{
				{Designation: "Tableau", Quantite: 1, Unite: "u", PrixUnitaire: 850, TauxTVA: 10},
			},
		},
		43: {ID: 43, ArtisanID: 1, ClientID: 10, Statut: devis.StatutEnvoye, Objet: "En attente"},
	}}
	sent := &mailer.NopMailer{}
	return NewService(newMockRepository(), clientsRepo, quotes, sent), quotes, sent
}

func TestCreateNumeroteEtTotalise(t *testing.T) {
	svc, _, _ := newTestService()

	f, err := svc.Create(context.Background(), 1, CreateFactureRequest{
		ClientID: 10, Objet: "Dépannage",
		Lignes: []LigneRequest{{Designation: "Déplacement", Quantite: 1, PrixUnitaire: 60, TauxTVA: 20}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^FAC-\d{4}-\d{4}$`, f.Numero)
	assert.Equal(t, StatutBrouillon, f.Statut)
	assert.Equal(t, 60.0, f.TotalHT)
	assert.Equal(t, 72.0, f.TotalTTC)
}

func TestCreateFromDevisExigeAccepte(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	f, err := svc.CreateFromDevis(ctx, 1, 42)
	require.NoError(t, err)
	require.NotNil(t, f.DevisID)
	assert.Equal(t, int64(42), *f.DevisID)
	require.Len(t, f.Lignes, 1)
	assert.Equal(t, 850.0, f.TotalHT)

	_, err = svc.CreateFromDevis(ctx, 1, 43)
	assert.ErrorIs(t, err, ErrDevisNonAccepte)
}

func TestPaiementPasseAPayee(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	f, err := svc.Create(ctx, 1, CreateFactureRequest{
		ClientID: 10, Objet: "x",
		Lignes: []LigneRequest{{Designation: "x", Quantite: 1, PrixUnitaire: 100, TauxTVA: 20}},
	})
	require.NoError(t, err)

	_, err = svc.EnregistrerPaiement(ctx, 1, f.ID, PaiementRequest{Moyen: "VIREMENT"})
	assert.ErrorIs(t, err, ErrStatutInvalide, "un brouillon ne s'encaisse pas")

	f, err = svc.Envoyer(ctx, 1, f.ID)
	require.NoError(t, err)
	assert.Equal(t, StatutEnvoyee, f.Statut)

	f, err = svc.EnregistrerPaiement(ctx, 1, f.ID, PaiementRequest{Moyen: "VIREMENT"})
	require.NoError(t, err)
	assert.Equal(t, StatutPayee, f.Statut)
	require.NotNil(t, f.PaiementDate)
	assert.Equal(t, "VIREMENT", *f.PaiementMoyen)
}

func TestStatutEnRetardDerive(t *testing.T) {
	now := time.Now()
	f := Facture{Statut: StatutEnvoyee, DateEcheance: now.AddDate(0, 0, -1)}
	assert.Equal(t, StatutEnRetard, f.StatutEffectif(now))

	f.PaiementDate = &now
	f.Statut = StatutPayee
	assert.Equal(t, StatutPayee, f.StatutEffectif(now))

	f = Facture{Statut: StatutEnvoyee, DateEcheance: now.AddDate(0, 0, 10)}
	assert.Equal(t, StatutEnvoyee, f.StatutEffectif(now))
}

func TestAnnulerRefuseFacturePayee(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	f, err := svc.Create(ctx, 1, CreateFactureRequest{
		ClientID: 10, Objet: "x",
		Lignes: []LigneRequest{{Designation: "x", Quantite: 1, PrixUnitaire: 100, TauxTVA: 20}},
	})
	require.NoError(t, err)
	_, err = svc.Envoyer(ctx, 1, f.ID)
	require.NoError(t, err)
	_, err = svc.EnregistrerPaiement(ctx, 1, f.ID, PaiementRequest{Moyen: "CB"})
	require.NoError(t, err)

	_, err = svc.Annuler(ctx, 1, f.ID)
	assert.ErrorIs(t, err, ErrStatutInvalide)
}

func TestCreateFromContratEnvoieDirectement(t *testing.T) {
	svc, _, sent := newTestService()

	f, err := svc.CreateFromContrat(context.Background(), 1, 10, 5, "Entretien chaudière", 120, 10, "septembre 2026")
	require.NoError(t, err)
	assert.Equal(t, StatutEnvoyee, f.Statut)
	require.NotNil(t, f.ContratID)
	assert.Equal(t, 132.0, f.TotalTTC)
	require.Len(t, sent.Sent, 1)
	assert.Contains(t, sent.Sent[0].Subject, f.Numero)
}
