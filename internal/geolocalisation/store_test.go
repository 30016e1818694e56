package geolocalisation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb), mr
}

func TestEnregistrerPuisLister(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Enregistrer(ctx, 1, PositionRequest{TechnicienID: 7, Latitude: 48.8566, Longitude: 2.3522, Precision: 12})
	require.NoError(t, err)
	_, err = store.Enregistrer(ctx, 1, PositionRequest{TechnicienID: 8, Latitude: 45.7640, Longitude: 4.8357, Precision: 8})
	require.NoError(t, err)
	// Autre artisan : invisible.
	_, err = store.Enregistrer(ctx, 2, PositionRequest{TechnicienID: 9, Latitude: 43.2965, Longitude: 5.3698})
	require.NoError(t, err)

	positions, err := store.Dernieres(ctx, 1)
	require.NoError(t, err)
	require.Len(t, positions, 2)
}

func TestDerniereEcrase(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Enregistrer(ctx, 1, PositionRequest{TechnicienID: 7, Latitude: 48.0, Longitude: 2.0})
	require.NoError(t, err)
	_, err = store.Enregistrer(ctx, 1, PositionRequest{TechnicienID: 7, Latitude: 48.5, Longitude: 2.5})
	require.NoError(t, err)

	positions, err := store.Dernieres(ctx, 1)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 48.5, positions[0].Latitude)
}

func TestPositionPerimeeDisparait(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Enregistrer(ctx, 1, PositionRequest{TechnicienID: 7, Latitude: 48.0, Longitude: 2.0})
	require.NoError(t, err)

	mr.FastForward(TTLPosition + time.Second)

	positions, err := store.Dernieres(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, positions)
}
