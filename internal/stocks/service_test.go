package stocks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/shared"
)

type mockRepository struct {
	articles   map[int64]Article
	mouvements []Mouvement
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{articles: make(map[int64]Article), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, artisanID, id int64) (*Article, error) {
	a, ok := m.articles[id]
	if !ok || a.ArtisanID != artisanID {
		return nil, ErrNotFound
	}
	copied := a
	return &copied, nil
}

func (m *mockRepository) GetByReference(_ context.Context, artisanID int64, reference string) (*Article, error) {
	for _, a := range m.articles {
		if a.ArtisanID == artisanID && a.Reference == reference {
			copied := a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(_ context.Context, artisanID int64, search string, limit, offset int) ([]Article, int, error) {
	var result []Article
	for _, a := range m.articles {
		if a.ArtisanID != artisanID {
			continue
		}
		if search != "" && !strings.Contains(shared.FoldSearch(a.Designation), shared.FoldSearch(search)) {
			continue
		}
		result = append(result, a)
	}
	return result, len(result), nil
}

func (m *mockRepository) ListEnAlerte(_ context.Context, artisanID int64) ([]Article, error) {
	var result []Article
	for _, a := range m.articles {
		if a.ArtisanID == artisanID && a.EnAlerte() {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockRepository) ListAll(_ context.Context, artisanID int64) ([]Article, error) {
	var result []Article
	for _, a := range m.articles {
		if a.ArtisanID == artisanID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockRepository) Create(_ context.Context, a Article) (int64, error) {
	for _, existing := range m.articles {
		if existing.ArtisanID == a.ArtisanID && existing.Reference == a.Reference {
			return 0, ErrDuplicateReference
		}
	}
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.nextID++
	m.articles[a.ID] = a
	return a.ID, nil
}

func (m *mockRepository) Update(_ context.Context, a Article) error {
	existing, ok := m.articles[a.ID]
	if !ok || existing.ArtisanID != a.ArtisanID {
		return ErrNotFound
	}
	a.Quantite = existing.Quantite
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()
	m.articles[a.ID] = a
	return nil
}

func (m *mockRepository) Delete(_ context.Context, artisanID, id int64) error {
	a, ok := m.articles[id]
	if !ok || a.ArtisanID != artisanID {
		return ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *mockRepository) AdjustQuantite(_ context.Context, artisanID, id int64, delta float64) (float64, error) {
	a, ok := m.articles[id]
	if !ok || a.ArtisanID != artisanID {
		return 0, ErrNotFound
	}
	a.Quantite += delta
	m.articles[id] = a
	return a.Quantite, nil
}

func (m *mockRepository) SetQuantite(_ context.Context, artisanID, id int64, quantite float64) error {
	a, ok := m.articles[id]
	if !ok || a.ArtisanID != artisanID {
		return ErrNotFound
	}
	a.Quantite = quantite
	m.articles[id] = a
	return nil
}

func (m *mockRepository) RecordMouvement(_ context.Context, mv Mouvement) error {
	mv.ID = int64(len(m.mouvements) + 1)
	mv.CreatedAt = time.Now()
	m.mouvements = append(m.mouvements, mv)
	return nil
}

func (m *mockRepository) ListMouvements(_ context.Context, artisanID, articleID int64, limit int) ([]Mouvement, error) {
	var result []Mouvement
	for _, mv := range m.mouvements {
		if mv.ArtisanID == artisanID && mv.ArticleID == articleID {
			result = append(result, mv)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	a, err := svc.Create(context.Background(), 1, CreateArticleRequest{
		Reference:   " tub-16 ",
		Designation: "Tube IRL 16mm",
	})
	require.NoError(t, err)
	assert.Equal(t, "TUB-16", a.Reference)
	assert.Equal(t, "u", a.Unite)
	assert.Equal(t, 20.0, a.TauxTVA)
}

func TestMouvementSortieRefuseStockNegatif(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	a, err := svc.Create(context.Background(), 1, CreateArticleRequest{
		Reference: "CAB-3G", Designation: "Câble 3G2.5", SuiviStock: true, Quantite: 5,
	})
	require.NoError(t, err)

	_, err = svc.Mouvementer(context.Background(), 1, a.ID, MouvementRequest{Type: MouvementSortie, Quantite: 8})
	assert.ErrorIs(t, err, ErrQuantiteNegative)

	got, err := svc.Mouvementer(context.Background(), 1, a.ID, MouvementRequest{Type: MouvementSortie, Quantite: 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Quantite)
	require.Len(t, repo.mouvements, 1)
	assert.Equal(t, 2.0, repo.mouvements[0].QuantiteApres)
}

func TestMouvementSurArticleNonSuivi(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	a, err := svc.Create(context.Background(), 1, CreateArticleRequest{
		Reference: "MO", Designation: "Main d'œuvre",
	})
	require.NoError(t, err)

	_, err = svc.Mouvementer(context.Background(), 1, a.ID, MouvementRequest{Type: MouvementEntree, Quantite: 1})
	assert.ErrorIs(t, err, ErrStockNonSuivi)
}

func TestAjustementRemplaceLaQuantite(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	a, err := svc.Create(context.Background(), 1, CreateArticleRequest{
		Reference: "VIS-40", Designation: "Vis 40mm", SuiviStock: true, Quantite: 120,
	})
	require.NoError(t, err)

	got, err := svc.Mouvementer(context.Background(), 1, a.ID, MouvementRequest{Type: MouvementAjustement, Quantite: 87})
	require.NoError(t, err)
	assert.Equal(t, 87.0, got.Quantite)
}

func TestAlerteSeuilBas(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Create(context.Background(), 1, CreateArticleRequest{
		Reference: "A", Designation: "Article A", SuiviStock: true, Quantite: 2, SeuilAlerte: 5,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, CreateArticleRequest{
		Reference: "B", Designation: "Article B", SuiviStock: true, Quantite: 50, SeuilAlerte: 5,
	})
	require.NoError(t, err)

	alertes, err := svc.ListEnAlerte(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, alertes, 1)
	assert.Equal(t, "A", alertes[0].Reference)
}

func TestConsommerIgnoreArticleNonSuivi(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	a, err := svc.Create(context.Background(), 1, CreateArticleRequest{
		Reference: "FORFAIT", Designation: "Forfait déplacement",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Consommer(context.Background(), 1, a.ID, 3, "rapport #12"))
	assert.Empty(t, repo.mouvements)
}

func TestArtisanScoping(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	a, err := svc.Create(context.Background(), 1, CreateArticleRequest{Reference: "X", Designation: "X"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
