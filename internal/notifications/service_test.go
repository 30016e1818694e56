package notifications

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	notifications map[int64]*Notification
	nextID        int64
	failCreate    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{notifications: make(map[int64]*Notification), nextID: 1}
}

func (m *mockRepository) Create(_ context.Context, n *Notification) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	n.ID = m.nextID
	n.CreatedAt = time.Now()
	m.nextID++
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *mockRepository) List(_ context.Context, req ListNotificationsRequest) ([]Notification, int, error) {
	var result []Notification
	for _, n := range m.notifications {
		if n.ArtisanID != req.ArtisanID {
			continue
		}
		if req.NonLues && n.Lu {
			continue
		}
		result = append(result, *n)
	}
	return result, len(result), nil
}

func (m *mockRepository) CountNonLues(_ context.Context, artisanID int64) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.ArtisanID == artisanID && !n.Lu {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) MarquerLue(_ context.Context, artisanID, id int64) error {
	n, ok := m.notifications[id]
	if !ok || n.ArtisanID != artisanID {
		return ErrNotFound
	}
	n.Lu = true
	return nil
}

func (m *mockRepository) MarquerToutesLues(_ context.Context, artisanID int64) error {
	for _, n := range m.notifications {
		if n.ArtisanID == artisanID {
			n.Lu = true
		}
	}
	return nil
}

func TestDevisSigneCreeUneNotification(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.Default(), repo)
	ctx := context.Background()

	svc.DevisSigne(ctx, 1, 42, "DEV-2026-0042", "Jean Dupont")

	list, total, err := svc.List(ctx, ListNotificationsRequest{ArtisanID: 1})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	n := list[0]
	assert.Equal(t, TypeDevisSigne, n.Type)
	assert.Contains(t, n.Message, "Jean Dupont")
	require.NotNil(t, n.EntiteID)
	assert.Equal(t, int64(42), *n.EntiteID)
	assert.False(t, n.Lu)
}

func TestNotifierNEchouePas(t *testing.T) {
	repo := newMockRepository()
	repo.failCreate = errors.New("db down")
	svc := NewService(slog.Default(), repo)

	// Aucune panique, aucune erreur remontée : l'émetteur continue.
	svc.StockBas(context.Background(), 1, 5, "Vis 4x40", 2, 10)
}

func TestMarquerLueEtToutes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.Default(), repo)
	ctx := context.Background()

	svc.RelancesEnvoyees(ctx, 1, 3)
	svc.FactureEnRetard(ctx, 1, 9, "FAC-2026-0009", 12)

	nonLues, err := svc.CountNonLues(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, nonLues)

	list, _, err := svc.List(ctx, ListNotificationsRequest{ArtisanID: 1})
	require.NoError(t, err)
	require.NoError(t, svc.MarquerLue(ctx, 1, list[0].ID))

	nonLues, err = svc.CountNonLues(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, nonLues)

	require.NoError(t, svc.MarquerToutesLues(ctx, 1))
	nonLues, err = svc.CountNonLues(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, nonLues)

	assert.ErrorIs(t, svc.MarquerLue(ctx, 2, list[0].ID), ErrNotFound, "cloisonnement par artisan")
}
