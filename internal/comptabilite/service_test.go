package comptabilite

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	factures      []FactureComptable
	integrations  map[int64]*IntegrationComptable
	nextID        int64
	dernierExport *time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{integrations: make(map[int64]*IntegrationComptable), nextID: 1}
}

func (m *mockRepository) ListFacturesFinalisees(_ context.Context, _ int64, du, au time.Time) ([]FactureComptable, error) {
	var result []FactureComptable
	for _, f := range m.factures {
		if !f.DateEmission.Before(du) && f.DateEmission.Before(au) {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockRepository) ListIntegrations(_ context.Context, _ int64) ([]IntegrationComptable, error) {
	var result []IntegrationComptable
	for _, i := range m.integrations {
		result = append(result, *i)
	}
	return result, nil
}

func (m *mockRepository) GetIntegration(_ context.Context, artisanID, id int64) (*IntegrationComptable, error) {
	i, ok := m.integrations[id]
	if !ok || i.ArtisanID != artisanID {
		return nil, ErrNotFound
	}
	copied := *i
	return &copied, nil
}

func (m *mockRepository) CreateIntegration(_ context.Context, i *IntegrationComptable) error {
	i.ID = m.nextID
	m.nextID++
	copied := *i
	m.integrations[i.ID] = &copied
	return nil
}

func (m *mockRepository) UpdateIntegration(_ context.Context, i *IntegrationComptable) error {
	existing, ok := m.integrations[i.ID]
	if !ok || existing.ArtisanID != i.ArtisanID {
		return ErrNotFound
	}
	copied := *i
	m.integrations[i.ID] = &copied
	return nil
}

func (m *mockRepository) DeleteIntegration(_ context.Context, artisanID, id int64) error {
	i, ok := m.integrations[id]
	if !ok || i.ArtisanID != artisanID {
		return ErrNotFound
	}
	delete(m.integrations, id)
	return nil
}

func (m *mockRepository) MarquerExport(_ context.Context, _ int64, date time.Time) error {
	m.dernierExport = &date
	return nil
}

func factureTest(id int64, numero string, date time.Time, ht, tva float64) FactureComptable {
	return FactureComptable{
		ID: id, Numero: numero, Objet: "Travaux", ClientNom: "Dupont",
		DateEmission: date, TotalHT: ht, TotalTVA: tva, TotalTTC: ht + tva,
	}
}

func TestExportFECEquilibreDebitCredit(t *testing.T) {
	repo := newMockRepository()
	repo.factures = []FactureComptable{
		factureTest(1, "FAC-2026-0001", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 1000, 200),
		factureTest(2, "FAC-2026-0002", time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC), 80.50, 8.05),
	}
	svc := NewService(repo)

	contenu, nom, err := svc.ExportFEC(context.Background(), 1, 2026)
	require.NoError(t, err)
	assert.Equal(t, "FEC20261231.txt", nom)
	require.NotNil(t, repo.dernierExport)

	lignes := strings.Split(strings.TrimRight(string(contenu), "\r\n"), "\r\n")
	// En-tête + 3 écritures par facture.
	require.Len(t, lignes, 1+6)
	assert.Equal(t, strings.Join(colonnesFEC, "\t"), lignes[0])

	var totalDebit, totalCredit float64
	for _, ligne := range lignes[1:] {
		champs := strings.Split(ligne, "\t")
		require.Len(t, champs, 18)
		totalDebit += parseMontantFEC(t, champs[11])
		totalCredit += parseMontantFEC(t, champs[12])
	}
	assert.InDelta(t, totalDebit, totalCredit, 0.001)
	assert.InDelta(t, 1288.55, totalDebit, 0.001)
}

func TestExportFECFormatsFrancais(t *testing.T) {
	repo := newMockRepository()
	repo.factures = []FactureComptable{
		factureTest(1, "FAC-2026-0001", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 100.50, 20.10),
	}
	svc := NewService(repo)

	contenu, _, err := svc.ExportFEC(context.Background(), 1, 2026)
	require.NoError(t, err)

	lignes := strings.Split(string(contenu), "\r\n")
	debit := strings.Split(lignes[1], "\t")
	assert.Equal(t, "VE", debit[0])
	assert.Equal(t, "20260310", debit[3], "date au format AAAAMMJJ")
	assert.Equal(t, "411000", debit[4])
	assert.Equal(t, "120,60", debit[11], "virgule décimale")
	assert.Equal(t, "0,00", debit[12])

	credit := strings.Split(lignes[2], "\t")
	assert.Equal(t, "706000", credit[4])
	assert.Equal(t, "100,50", credit[12])

	tva := strings.Split(lignes[3], "\t")
	assert.Equal(t, "44571", tva[4])
	assert.Equal(t, "20,10", tva[12])
}

func TestExportFECRefuseExerciceAberrant(t *testing.T) {
	svc := NewService(newMockRepository())
	_, _, err := svc.ExportFEC(context.Background(), 1, 1815)
	assert.ErrorIs(t, err, ErrExerciceInvalide)
}

func TestJournalVentesCSV(t *testing.T) {
	repo := newMockRepository()
	paiement := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	payee := factureTest(1, "FAC-2026-0001", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 1000, 200)
	payee.PaiementDate = &paiement
	repo.factures = []FactureComptable{
		payee,
		factureTest(2, "FAC-2026-0002", time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), 50, 10),
	}
	svc := NewService(repo)

	contenu, nom, err := svc.ExportJournalVentes(context.Background(), 1,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "journal-ventes-2026-03-01-2026-03-31.csv", nom)

	texte := string(contenu)
	assert.True(t, strings.HasPrefix(texte, "\ufeff"), "BOM UTF-8 attendu")
	assert.Contains(t, texte, "\r\n")
	assert.Contains(t, texte, "10/03/2026;FAC-2026-0001;Dupont;Travaux;1000,00;200,00;1200,00;Payée;01/04/2026")
	assert.Contains(t, texte, "FAC-2026-0002;Dupont;Travaux;50,00;10,00;60,00;Envoyée;")
}

func TestIntegrationsCRUD(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	i, err := svc.CreateIntegration(ctx, 1, CreateIntegrationRequest{Logiciel: "  Sage  "})
	require.NoError(t, err)
	assert.Equal(t, "Sage", i.Logiciel)
	assert.True(t, i.Actif)

	actif := false
	i, err = svc.UpdateIntegration(ctx, 1, i.ID, UpdateIntegrationRequest{Actif: &actif})
	require.NoError(t, err)
	assert.False(t, i.Actif)

	_, err = svc.UpdateIntegration(ctx, 2, i.ID, UpdateIntegrationRequest{Actif: &actif})
	assert.ErrorIs(t, err, ErrNotFound, "cloisonnement par artisan")
}

func parseMontantFEC(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	require.NoError(t, err)
	return v
}
