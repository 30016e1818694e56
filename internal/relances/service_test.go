package relances

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/devis"
)

type mockRepository struct {
	configs map[int64]*Config
}

func newMockRepository() *mockRepository {
	return &mockRepository{configs: make(map[int64]*Config)}
}

func (m *mockRepository) GetConfig(_ context.Context, artisanID int64) (*Config, error) {
	if c, ok := m.configs[artisanID]; ok {
		copied := *c
		return &copied, nil
	}
	defaut := ConfigParDefaut(artisanID)
	return &defaut, nil
}

func (m *mockRepository) SaveConfig(_ context.Context, c *Config) error {
	c.UpdatedAt = time.Now()
	copied := *c
	m.configs[c.ArtisanID] = &copied
	return nil
}

func (m *mockRepository) ListConfigsActives(_ context.Context) ([]Config, error) {
	var result []Config
	for _, c := range m.configs {
		if c.Active {
			result = append(result, *c)
		}
	}
	return result, nil
}

type fakeLanceur struct {
	artisans []int64
	params   [][3]int
	failFor  map[int64]error
	envoyees int
}

func (f *fakeLanceur) EnvoyerRelancesAutomatiques(_ context.Context, artisanID int64, joursAvantPremiere, joursEntre, maxRelances int) (*devis.RelanceBatchResult, error) {
	if err, ok := f.failFor[artisanID]; ok {
		return nil, err
	}
	f.artisans = append(f.artisans, artisanID)
	f.params = append(f.params, [3]int{joursAvantPremiere, joursEntre, maxRelances})
	return &devis.RelanceBatchResult{Candidats: f.envoyees, Envoyees: f.envoyees}, nil
}

type captureNotifs struct {
	nombres []int
}

func (c *captureNotifs) RelancesEnvoyees(_ context.Context, _ int64, nombre int) {
	c.nombres = append(c.nombres, nombre)
}

func TestConfigParDefautQuandAbsente(t *testing.T) {
	svc := NewService(slog.Default(), newMockRepository(), &fakeLanceur{}, nil)

	c, err := svc.GetConfig(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.Equal(t, 7, c.JoursAvantPremiere)
	assert.Equal(t, 3, c.MaxRelances)
	assert.Equal(t, 9, c.HeureEnvoi)
}

func TestUpdateConfigPartiel(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.Default(), repo, &fakeLanceur{}, nil)
	ctx := context.Background()

	heure := 18
	c, err := svc.UpdateConfig(ctx, 1, UpdateConfigRequest{HeureEnvoi: &heure})
	require.NoError(t, err)
	assert.Equal(t, 18, c.HeureEnvoi)
	assert.Equal(t, 7, c.JoursEntre, "les autres champs gardent leur valeur")

	c, err = svc.GetConfig(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 18, c.HeureEnvoi)
}

func TestScanRespecteLaPlanification(t *testing.T) {
	repo := newMockRepository()
	lanceur := &fakeLanceur{envoyees: 2}
	notifs := &captureNotifs{}
	svc := NewService(slog.Default(), repo, lanceur, notifs)

	// Lundi 9h.
	lundi9h := time.Date(2026, 8, 31, 9, 15, 0, 0, time.UTC)
	svc.now = func() time.Time { return lundi9h }

	planifie := ConfigParDefaut(1)
	require.NoError(t, repo.SaveConfig(context.Background(), &planifie))

	mauvaiseHeure := ConfigParDefaut(2)
	mauvaiseHeure.HeureEnvoi = 14
	require.NoError(t, repo.SaveConfig(context.Background(), &mauvaiseHeure))

	weekend := ConfigParDefaut(3)
	weekend.JoursSemaine = []int{0, 6}
	require.NoError(t, repo.SaveConfig(context.Background(), &weekend))

	result, err := svc.ExecuterScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Configs)
	assert.Equal(t, 1, result.Lances)
	assert.Equal(t, 2, result.Envoyees)
	assert.Equal(t, []int64{1}, lanceur.artisans)
	assert.Equal(t, [3]int{7, 7, 3}, lanceur.params[0])
	assert.Equal(t, []int{2}, notifs.nombres)
}

func TestScanContinueApresErreur(t *testing.T) {
	repo := newMockRepository()
	lanceur := &fakeLanceur{envoyees: 1, failFor: map[int64]error{1: errors.New("smtp down")}}
	svc := NewService(slog.Default(), repo, lanceur, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }

	for _, id := range []int64{1, 2} {
		c := ConfigParDefaut(id)
		require.NoError(t, repo.SaveConfig(context.Background(), &c))
	}

	result, err := svc.ExecuterScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Lances)
	assert.Equal(t, 1, result.Erreurs)
	assert.Equal(t, 1, result.Envoyees)
}

func TestConfigInactiveJamaisPlanifiee(t *testing.T) {
	c := ConfigParDefaut(1)
	c.Active = false
	assert.False(t, c.EstPlanifiee(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)))
}
