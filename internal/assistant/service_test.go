package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/stocks"
)

type fakeGenerateur struct {
	suggestion *Suggestion
	err        error
}

func (f *fakeGenerateur) Suggerer(context.Context, SuggestionRequest) (*Suggestion, error) {
	return f.suggestion, f.err
}

type fakeArticles struct {
	articles map[int64][]stocks.Article
}

func (f *fakeArticles) ListAll(_ context.Context, artisanID int64) ([]stocks.Article, error) {
	return f.articles[artisanID], nil
}

func TestCatalogueReconnaitLesMotsCles(t *testing.T) {
	s := SuggererDepuisCatalogue(SuggestionRequest{
		Description: "Remplacement du chauffe-eau et réfection de la peinture de la cuisine",
	})
	assert.Equal(t, "catalogue", s.Source)

	var designations []string
	for _, l := range s.Lignes {
		designations = append(designations, l.Designation)
	}
	joint := strings.Join(designations, " | ")
	assert.Contains(t, joint, "chauffe-eau")
	assert.Contains(t, joint, "Peinture")
}

func TestCatalogueIgnoreLesAccents(t *testing.T) {
	s := SuggererDepuisCatalogue(SuggestionRequest{Description: "pose de FAÏENCE dans la cuisine"})
	require.NotEmpty(t, s.Lignes)
	assert.Contains(t, s.Lignes[len(s.Lignes)-1].Designation, "carrelage")
}

func TestCatalogueRepliMainDOeuvre(t *testing.T) {
	s := SuggererDepuisCatalogue(SuggestionRequest{Description: "intervention diverse"})
	require.Len(t, s.Lignes, 1)
	assert.Equal(t, "Main d'œuvre", s.Lignes[0].Designation)
}

func TestServiceRetombeSurLeCatalogue(t *testing.T) {
	gen := &fakeGenerateur{err: errors.New("quota exceeded")}
	svc := NewService(slog.Default(), gen, nil)

	s, err := svc.Suggerer(context.Background(), 1, SuggestionRequest{Description: "fuite sous l'évier"})
	require.NoError(t, err)
	assert.Equal(t, "catalogue", s.Source)
	assert.Contains(t, s.Lignes[0].Designation, "fuite")
}

func TestServicePrefereLIA(t *testing.T) {
	gen := &fakeGenerateur{suggestion: &Suggestion{
		Objet:  "Rénovation salle de bain",
		Lignes: []LigneSuggestion{{Designation: "Forfait rénovation", Quantite: 1, Unite: "forfait", PrixUnitaire: 2500, TauxTVA: 10}},
		Source: "ia",
	}}
	svc := NewService(slog.Default(), gen, nil)

	s, err := svc.Suggerer(context.Background(), 1, SuggestionRequest{Description: "refaire la salle de bain"})
	require.NoError(t, err)
	assert.Equal(t, "ia", s.Source)
	assert.Equal(t, "Rénovation salle de bain", s.Objet)
}

func TestSuggererPrefereLesArticlesDeLArtisan(t *testing.T) {
	articles := &fakeArticles{articles: map[int64][]stocks.Article{
		1: {
			{ID: 7, ArtisanID: 1, Reference: "CE-200", Designation: "Chauffe-eau 200L stéatite", Categorie: "Plomberie", Unite: "u", PrixVente: 720, TauxTVA: 10},
			{ID: 8, ArtisanID: 1, Reference: "VIS-40", Designation: "Vis 40mm", Unite: "boîte", PrixVente: 6, TauxTVA: 20},
		},
	}}
	svc := NewService(slog.Default(), nil, articles)
	ctx := context.Background()

	s, err := svc.Suggerer(ctx, 1, SuggestionRequest{Description: "remplacer le chauffe-eau de la buanderie"})
	require.NoError(t, err)
	assert.Equal(t, "catalogue", s.Source)
	require.Len(t, s.Lignes, 1, "seul l'article correspondant est proposé")
	assert.Equal(t, "Chauffe-eau 200L stéatite", s.Lignes[0].Designation)
	assert.Equal(t, 720.0, s.Lignes[0].PrixUnitaire)

	// la catégorie suffit à faire le lien
	s, err = svc.Suggerer(ctx, 1, SuggestionRequest{Description: "petits travaux de plomberie"})
	require.NoError(t, err)
	require.Len(t, s.Lignes, 1)
	assert.Equal(t, "Chauffe-eau 200L stéatite", s.Lignes[0].Designation)

	// sans correspondance ni articles (autre artisan), les tarifs types prennent le relais
	s, err = svc.Suggerer(ctx, 2, SuggestionRequest{Description: "remplacer le chauffe-eau"})
	require.NoError(t, err)
	var designations []string
	for _, l := range s.Lignes {
		designations = append(designations, l.Designation)
	}
	assert.Contains(t, strings.Join(designations, " | "), "chauffe-eau 200L")
}

func TestParseReponseTolereMarkdown(t *testing.T) {
	texte := "```json\n{\"objet\": \"Dépannage\", \"lignes\": [{\"designation\": \"Déplacement\", \"quantite\": 0, \"unite\": \"\", \"prix_unitaire\": 60, \"taux_tva\": 20}]}\n```"
	s, err := parseReponse(texte)
	require.NoError(t, err)
	assert.Equal(t, "Dépannage", s.Objet)
	assert.Equal(t, 1.0, s.Lignes[0].Quantite, "quantité nulle corrigée")
	assert.Equal(t, "u", s.Lignes[0].Unite)
}

func TestParseReponseRefuseLeVide(t *testing.T) {
	_, err := parseReponse(`{"objet": "x", "lignes": []}`)
	assert.ErrorIs(t, err, ErrReponseIllisible)

	_, err = parseReponse("désolé, je ne peux pas répondre")
	assert.ErrorIs(t, err, ErrReponseIllisible)
}
