package rapports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/interventions"
	"github.com/artisan-erp/artisan-erp/internal/stocks"
)

type fakeRapports struct {
	rapports map[int64]*Rapport
	nextID   int64
}

func (f *fakeRapports) Get(_ context.Context, artisanID, id int64) (*Rapport, error) {
	rap, ok := f.rapports[id]
	if !ok || rap.ArtisanID != artisanID {
		return nil, ErrNotFound
	}
	copied := *rap
	return &copied, nil
}

func (f *fakeRapports) ListByIntervention(_ context.Context, artisanID, interventionID int64) ([]Rapport, error) {
	var result []Rapport
	for _, rap := range f.rapports {
		if rap.ArtisanID == artisanID && rap.InterventionID == interventionID {
			result = append(result, *rap)
		}
	}
	return result, nil
}

func (f *fakeRapports) ListByChantier(_ context.Context, artisanID, chantierID int64) ([]Rapport, error) {
	var result []Rapport
	for _, rap := range f.rapports {
		if rap.ArtisanID == artisanID && rap.ChantierID != nil && *rap.ChantierID == chantierID {
			result = append(result, *rap)
		}
	}
	return result, nil
}

func (f *fakeRapports) Create(_ context.Context, rap *Rapport) error {
	f.nextID++
	rap.ID = f.nextID
	copied := *rap
	f.rapports[rap.ID] = &copied
	return nil
}

func (f *fakeRapports) Update(_ context.Context, rap *Rapport) error {
	if _, ok := f.rapports[rap.ID]; !ok {
		return ErrNotFound
	}
	copied := *rap
	f.rapports[rap.ID] = &copied
	return nil
}

func (f *fakeRapports) Delete(_ context.Context, artisanID, id int64) error {
	rap, ok := f.rapports[id]
	if !ok || rap.ArtisanID != artisanID {
		return ErrNotFound
	}
	delete(f.rapports, id)
	return nil
}

type fakeInterventions struct {
	interventions map[int64]interventions.Intervention
}

func (f *fakeInterventions) Get(_ context.Context, artisanID, id int64) (*interventions.Intervention, error) {
	iv, ok := f.interventions[id]
	if !ok || iv.ArtisanID != artisanID {
		return nil, interventions.ErrNotFound
	}
	return &iv, nil
}

func (f *fakeInterventions) List(context.Context, interventions.ListInterventionsRequest) ([]interventions.Intervention, int, error) {
	return nil, 0, nil
}
func (f *fakeInterventions) ListEntre(context.Context, int64, time.Time, time.Time) ([]interventions.Intervention, error) {
	return nil, nil
}
func (f *fakeInterventions) Create(context.Context, interventions.Intervention) (int64, error) {
	return 0, nil
}
func (f *fakeInterventions) Update(context.Context, interventions.Intervention) error { return nil }
func (f *fakeInterventions) Delete(context.Context, int64, int64) error               { return nil }

// fakeArticles couvre stocks.Repository pour suivre les décréments.
type fakeArticles struct {
	articles   map[int64]stocks.Article
	mouvements []stocks.Mouvement
}

func (f *fakeArticles) Get(_ context.Context, artisanID, id int64) (*stocks.Article, error) {
	a, ok := f.articles[id]
	if !ok || a.ArtisanID != artisanID {
		return nil, stocks.ErrNotFound
	}
	return &a, nil
}

func (f *fakeArticles) GetByReference(context.Context, int64, string) (*stocks.Article, error) {
	return nil, stocks.ErrNotFound
}
func (f *fakeArticles) List(context.Context, int64, string, int, int) ([]stocks.Article, int, error) {
	return nil, 0, nil
}
func (f *fakeArticles) ListEnAlerte(context.Context, int64) ([]stocks.Article, error) {
	return nil, nil
}
func (f *fakeArticles) ListAll(context.Context, int64) ([]stocks.Article, error) { return nil, nil }
func (f *fakeArticles) Create(context.Context, stocks.Article) (int64, error)    { return 0, nil }
func (f *fakeArticles) Update(context.Context, stocks.Article) error             { return nil }
func (f *fakeArticles) Delete(context.Context, int64, int64) error               { return nil }

func (f *fakeArticles) AdjustQuantite(_ context.Context, artisanID, id int64, delta float64) (float64, error) {
	a, ok := f.articles[id]
	if !ok || a.ArtisanID != artisanID {
		return 0, stocks.ErrNotFound
	}
	a.Quantite += delta
	f.articles[id] = a
	return a.Quantite, nil
}

func (f *fakeArticles) SetQuantite(_ context.Context, artisanID, id int64, quantite float64) error {
	a, ok := f.articles[id]
	if !ok || a.ArtisanID != artisanID {
		return stocks.ErrNotFound
	}
	a.Quantite = quantite
	f.articles[id] = a
	return nil
}

func (f *fakeArticles) RecordMouvement(_ context.Context, m stocks.Mouvement) error {
	f.mouvements = append(f.mouvements, m)
	return nil
}

func (f *fakeArticles) ListMouvements(context.Context, int64, int64, int) ([]stocks.Mouvement, error) {
	return nil, nil
}

func ptr[T any](v T) *T { return &v }

func newTestService() (*Service, *fakeArticles) {
	articles := &fakeArticles{articles: map[int64]stocks.Article{
		5: {ID: 5, ArtisanID: 1, Reference: "CAB-3G", Designation: "Câble 3G2.5", SuiviStock: true, Quantite: 100},
		6: {ID: 6, ArtisanID: 1, Reference: "MO", Designation: "Main d'œuvre"},
	}}
	ivs := &fakeInterventions{interventions: map[int64]interventions.Intervention{
		3: {ID: 3, ArtisanID: 1, ClientID: 10, ChantierID: ptr(int64(7)), Titre: "Pose"},
	}}
	svc := NewService(&fakeRapports{rapports: make(map[int64]*Rapport)}, ivs, stocks.NewService(articles, nil))
	return svc, articles
}

func TestCreateDecrementeLeStock(t *testing.T) {
	svc, articles := newTestService()

	rap, err := svc.Create(context.Background(), 1, CreateRapportRequest{
		InterventionID: 3,
		Contenu:        "Tirage de 15m de câble, raccordement tableau.",
		Materiaux: []MateriauRequest{
			{ArticleID: 5, Quantite: 15},
			{ArticleID: 6, Quantite: 2},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, rap.ChantierID)
	assert.Equal(t, int64(7), *rap.ChantierID)
	require.Len(t, rap.Materiaux, 2)
	assert.Equal(t, "Câble 3G2.5", rap.Materiaux[0].Designation)

	// seul l'article suivi bouge
	assert.Equal(t, 85.0, articles.articles[5].Quantite)
	assert.Equal(t, 0.0, articles.articles[6].Quantite)
	require.Len(t, articles.mouvements, 1)
	assert.Equal(t, stocks.MouvementSortie, articles.mouvements[0].Type)
}

func TestCreateInterventionInconnue(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, CreateRapportRequest{
		InterventionID: 99, Contenu: "x",
	})
	assert.ErrorIs(t, err, interventions.ErrNotFound)
}

func TestSignatureDataURL(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, CreateRapportRequest{
		InterventionID:  3,
		Contenu:         "x",
		SignatureClient: ptr("pas-une-image"),
	})
	assert.ErrorIs(t, err, ErrSignatureInvalide)

	rap, err := svc.Create(context.Background(), 1, CreateRapportRequest{
		InterventionID:  3,
		Contenu:         "x",
		SignatureClient: ptr("data:image/png;base64,iVBORw0KGgo="),
		SignataireNom:   ptr("Mme Durand"),
	})
	require.NoError(t, err)
	require.NotNil(t, rap.SignatureClient)
}
