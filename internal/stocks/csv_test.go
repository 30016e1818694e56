package stocks

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := NewService(newMockRepository(), nil)
	ctx := context.Background()

	_, err := src.Create(ctx, 1, CreateArticleRequest{
		Reference: "CAB-3G", Designation: `Câble "rigide" 3G2.5`, Categorie: "Câblage", Metier: "électricité", Unite: "m",
		PrixAchat: 0.85, PrixVente: 1.4, TauxTVA: 20, SuiviStock: true, Quantite: 230, SeuilAlerte: 50,
	})
	require.NoError(t, err)
	_, err = src.Create(ctx, 1, CreateArticleRequest{
		Reference: "MO-H", Designation: "Main d'œuvre ; heure", Unite: "h",
		PrixVente: 45, TauxTVA: 10,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportCSV(ctx, 1, &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"), "le fichier doit commencer par un BOM UTF-8")
	assert.Contains(t, out, "\r\n")
	assert.Contains(t, out, "reference;designation;categorie;metier;unite")
	assert.Contains(t, out, `"Câble ""rigide"" 3G2.5"`)

	dst := NewService(newMockRepository(), nil)
	result, err := dst.ImportCSV(ctx, 7, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Crees)
	assert.Equal(t, 0, result.MisAJour)

	a, err := dst.repo.GetByReference(ctx, 7, "CAB-3G")
	require.NoError(t, err)
	assert.Equal(t, `Câble "rigide" 3G2.5`, a.Designation)
	assert.Equal(t, "Câblage", a.Categorie)
	assert.Equal(t, "électricité", a.Metier)
	assert.Equal(t, 0.85, a.PrixAchat)
	assert.Equal(t, 230.0, a.Quantite)
	assert.True(t, a.SuiviStock)
}

func TestImportLitCategorieEtMetier(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	csv := "reference;designation;categorie;metier;prix_vente\r\n" +
		"PLA-13;Plaque BA13;Plâtrerie;plaquiste;5,90\r\n"
	result, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Crees)

	a, err := svc.repo.GetByReference(context.Background(), 1, "PLA-13")
	require.NoError(t, err)
	assert.Equal(t, "Plâtrerie", a.Categorie)
	assert.Equal(t, "plaquiste", a.Metier)
}

func TestImportAccepteVirguleDecimale(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	csv := "reference;designation;prix_achat;prix_vente;taux_tva\r\n" +
		"PLA-13;Plaque BA13;3,20;5,90;20\r\n"
	result, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Crees)

	a, err := svc.repo.GetByReference(context.Background(), 1, "PLA-13")
	require.NoError(t, err)
	assert.Equal(t, 3.2, a.PrixAchat)
	assert.Equal(t, 5.9, a.PrixVente)
}

func TestImportMetAJourParReference(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateArticleRequest{Reference: "PLA-13", Designation: "Plaque", PrixVente: 5})
	require.NoError(t, err)

	csv := "reference;designation;prix_vente\nPLA-13;Plaque BA13 2m50;6,10\n"
	result, err := svc.ImportCSV(ctx, 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Crees)
	assert.Equal(t, 1, result.MisAJour)

	a, err := svc.repo.GetByReference(ctx, 1, "PLA-13")
	require.NoError(t, err)
	assert.Equal(t, "Plaque BA13 2m50", a.Designation)
	assert.Equal(t, 6.1, a.PrixVente)
}

func TestImportSignaleLignesInvalides(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	csv := "reference;designation;prix_vente\n" +
		";Sans reference;1\n" +
		"OK-1;Bon article;2,5\n" +
		"BAD-1;Prix illisible;abc\n"
	result, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Crees)
	assert.Equal(t, 2, result.Ignores)
	assert.Len(t, result.Avertissts, 2)
}

func TestImportSansEnteteReference(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.ImportCSV(context.Background(), 1, strings.NewReader("designation;prix\nfoo;1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference")
}

func TestImportStripBOM(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	csv := "\ufeffreference;designation\nBOM-1;Avec BOM\n"
	result, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Crees)
}
