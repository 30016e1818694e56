package clients

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/shared"
)

type mockRepository struct {
	clients    map[int64]*Client
	nextID     int64
	references map[int64]int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		clients:    make(map[int64]*Client),
		references: make(map[int64]int),
		nextID:     1,
	}
}

func (m *mockRepository) Get(ctx context.Context, artisanID, id int64) (*Client, error) {
	c, ok := m.clients[id]
	if !ok || c.ArtisanID != artisanID {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var result []Client
	for _, c := range m.clients {
		if c.ArtisanID != req.ArtisanID {
			continue
		}
		if req.Search != "" && !strings.Contains(shared.FoldSearch(c.Nom), shared.FoldSearch(req.Search)) {
			continue
		}
		if req.Type != nil && c.Type != *req.Type {
			continue
		}
		result = append(result, *c)
	}
	return result, len(result), nil
}

func (m *mockRepository) Create(ctx context.Context, c Client) (int64, error) {
	c.ID = m.nextID
	m.nextID++
	m.clients[c.ID] = &c
	return c.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, c Client) error {
	if _, ok := m.clients[c.ID]; !ok {
		return ErrNotFound
	}
	m.clients[c.ID] = &c
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, artisanID, id int64) error {
	if _, ok := m.clients[id]; !ok {
		return ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *mockRepository) CountReferences(ctx context.Context, id int64) (int, error) {
	return m.references[id], nil
}

func TestCreateClientDefaultsToParticulier(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	client, err := svc.Create(context.Background(), 1, CreateClientRequest{Nom: "  Dupont  "})
	require.NoError(t, err)
	assert.Equal(t, "Dupont", client.Nom)
	assert.Equal(t, ClientTypeParticulier, client.Type)
}

func TestCreateClientRequiresName(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Create(context.Background(), 1, CreateClientRequest{Nom: "   "})
	require.Error(t, err)
}

func TestDeleteClientWithReferencesFails(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	client, err := svc.Create(context.Background(), 1, CreateClientRequest{Nom: "Martin"})
	require.NoError(t, err)
	repo.references[client.ID] = 2

	err = svc.Delete(context.Background(), 1, client.ID)
	require.ErrorIs(t, err, ErrHasReferences)

	repo.references[client.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), 1, client.ID))
}

func TestGetClientScopedToArtisan(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	client, err := svc.Create(context.Background(), 1, CreateClientRequest{Nom: "Bernard"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, client.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListClientsAccentInsensitiveSearch(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 1, CreateClientRequest{Nom: "Électricité Générale Hervé"})
	require.NoError(t, err)

	list, total, err := svc.List(context.Background(), ListClientsRequest{ArtisanID: 1, Search: "electricite"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
}
