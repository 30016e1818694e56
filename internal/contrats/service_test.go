package contrats

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/clients"
	"github.com/artisan-erp/artisan-erp/internal/factures"
)

type mockRepository struct {
	contrats map[int64]*Contrat
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{contrats: make(map[int64]*Contrat), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, artisanID, id int64) (*Contrat, error) {
	c, ok := m.contrats[id]
	if !ok || c.ArtisanID != artisanID {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) List(_ context.Context, req ListContratsRequest) ([]Contrat, int, error) {
	var result []Contrat
	for _, c := range m.contrats {
		if c.ArtisanID == req.ArtisanID {
			result = append(result, *c)
		}
	}
	return result, len(result), nil
}

func (m *mockRepository) ListEchus(_ context.Context, date time.Time) ([]Contrat, error) {
	var result []Contrat
	for _, c := range m.contrats {
		if c.EstEchu(date) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockRepository) Create(_ context.Context, c *Contrat) error {
	c.ID = m.nextID
	m.nextID++
	copied := *c
	m.contrats[c.ID] = &copied
	return nil
}

func (m *mockRepository) Update(_ context.Context, c *Contrat) error {
	existing, ok := m.contrats[c.ID]
	if !ok || existing.ArtisanID != c.ArtisanID {
		return ErrNotFound
	}
	copied := *c
	m.contrats[c.ID] = &copied
	return nil
}

func (m *mockRepository) Delete(_ context.Context, artisanID, id int64) error {
	c, ok := m.contrats[id]
	if !ok || c.ArtisanID != artisanID {
		return ErrNotFound
	}
	delete(m.contrats, id)
	return nil
}

func (m *mockRepository) AvancerFacturation(_ context.Context, id int64, prochaine time.Time) error {
	c, ok := m.contrats[id]
	if !ok {
		return ErrNotFound
	}
	c.ProchaineFacturation = prochaine
	return nil
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

type fakeFacturier struct {
	periodes []string
	contrats []int64
	failFor  map[int64]error
}

func (f *fakeFacturier) CreateFromContrat(_ context.Context, _, _, contratID int64, _ string, _, _ float64, periode string) (*factures.Facture, error) {
	if err, ok := f.failFor[contratID]; ok {
		return nil, err
	}
	f.periodes = append(f.periodes, periode)
	f.contrats = append(f.contrats, contratID)
	return &factures.Facture{ID: int64(len(f.contrats)), ContratID: &contratID}, nil
}

func newTestService(facturier *fakeFacturier) (*Service, *mockRepository) {
	repo := newMockRepository()
	clientsRepo := &mockClients{clients: map[int64]clients.Client{
		10: {ID: 10, ArtisanID: 1, Nom: "Dupont"},
	}}
	svc := NewService(slog.Default(), repo, clientsRepo, facturier, nil)
	return svc, repo
}

func TestCreateInitialiseLaFacturation(t *testing.T) {
	svc, _ := newTestService(&fakeFacturier{})
	debut := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	c, err := svc.Create(context.Background(), 1, CreateContratRequest{
		ClientID:    10,
		Libelle:     "  Entretien chaudière  ",
		MontantHT:   120,
		TauxTVA:     10,
		Periodicite: PeriodiciteMensuelle,
		DateDebut:   &debut,
	})
	require.NoError(t, err)
	assert.Equal(t, "Entretien chaudière", c.Libelle)
	assert.True(t, c.Actif)
	assert.Equal(t, debut, c.ProchaineFacturation)
}

func TestCreateRefuseClientInconnu(t *testing.T) {
	svc, _ := newTestService(&fakeFacturier{})
	_, err := svc.Create(context.Background(), 1, CreateContratRequest{
		ClientID: 99, Libelle: "x", MontantHT: 10, Periodicite: PeriodiciteMensuelle,
	})
	assert.ErrorIs(t, err, clients.ErrNotFound)
}

func TestFacturerEchuesAvanceLaProchaineDate(t *testing.T) {
	facturier := &fakeFacturier{}
	svc, repo := newTestService(facturier)
	svc.now = func() time.Time { return time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC) }

	echeance := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo.contrats[1] = &Contrat{
		ID: 1, ArtisanID: 1, ClientID: 10, Libelle: "Entretien",
		MontantHT: 120, TauxTVA: 10, Periodicite: PeriodiciteMensuelle,
		ProchaineFacturation: echeance, Actif: true,
	}
	// Pas encore échu : rien à facturer.
	repo.contrats[2] = &Contrat{
		ID: 2, ArtisanID: 1, ClientID: 10, Libelle: "Ramonage",
		MontantHT: 80, Periodicite: PeriodiciteAnnuelle,
		ProchaineFacturation: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), Actif: true,
	}
	// Inactif : jamais facturé.
	repo.contrats[3] = &Contrat{
		ID: 3, ArtisanID: 1, ClientID: 10, Libelle: "Résilié",
		MontantHT: 50, Periodicite: PeriodiciteMensuelle,
		ProchaineFacturation: echeance, Actif: false,
	}
	repo.nextID = 4

	result, err := svc.FacturerEchues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Echus)
	assert.Equal(t, 1, result.Factures)
	assert.Equal(t, 0, result.Erreurs)
	assert.Equal(t, []int64{1}, facturier.contrats)
	assert.Equal(t, []string{"septembre 2026"}, facturier.periodes)
	assert.Equal(t, echeance.AddDate(0, 1, 0), repo.contrats[1].ProchaineFacturation)
}

func TestFacturerEchuesContinueApresErreur(t *testing.T) {
	facturier := &fakeFacturier{failFor: map[int64]error{1: errors.New("smtp down")}}
	svc, repo := newTestService(facturier)
	svc.now = func() time.Time { return time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC) }

	echeance := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo.contrats[1] = &Contrat{ID: 1, ArtisanID: 1, ClientID: 10, Libelle: "A", MontantHT: 10, Periodicite: PeriodiciteMensuelle, ProchaineFacturation: echeance, Actif: true}
	repo.contrats[2] = &Contrat{ID: 2, ArtisanID: 2, ClientID: 10, Libelle: "B", MontantHT: 20, Periodicite: PeriodiciteTrimestrielle, ProchaineFacturation: echeance, Actif: true}
	repo.nextID = 3

	result, err := svc.FacturerEchues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Echus)
	assert.Equal(t, 1, result.Factures)
	assert.Equal(t, 1, result.Erreurs)
	// L'échéance du contrat en échec ne bouge pas.
	assert.Equal(t, echeance, repo.contrats[1].ProchaineFacturation)
	assert.Equal(t, echeance.AddDate(0, 3, 0), repo.contrats[2].ProchaineFacturation)
	assert.Equal(t, []string{"T3 2026"}, facturier.periodes)
}

func TestLibellePeriode(t *testing.T) {
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "février 2026", libellePeriode(date, PeriodiciteMensuelle))
	assert.Equal(t, "T1 2026", libellePeriode(date, PeriodiciteTrimestrielle))
	assert.Equal(t, "année 2026", libellePeriode(date, PeriodiciteAnnuelle))
}

func TestContratEstEchu(t *testing.T) {
	now := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	fin := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	c := Contrat{Actif: true, ProchaineFacturation: now.AddDate(0, 0, -1)}
	assert.True(t, c.EstEchu(now))

	c.DateFin = &fin
	assert.False(t, c.EstEchu(now), "contrat terminé")

	c = Contrat{Actif: false, ProchaineFacturation: now.AddDate(0, 0, -1)}
	assert.False(t, c.EstEchu(now))
}
