package assistant

import (
	"strings"

	"github.com/artisan-erp/artisan-erp/internal/shared"
	"github.com/artisan-erp/artisan-erp/internal/stocks"
)

// entreeCatalogue associe des mots-clés (en forme pliée, sans accents) à des
// lignes de devis types.
type entreeCatalogue struct {
	motsCles []string
	lignes   []LigneSuggestion
}

// Tarifs indicatifs moyens, TVA 10 % pour la rénovation de logements.
var catalogue = []entreeCatalogue{
	{
		motsCles: []string{"fuite", "robinet", "siphon"},
		lignes: []LigneSuggestion{
			{Designation: "Recherche de fuite et diagnostic", Quantite: 1, Unite: "forfait", PrixUnitaire: 90, TauxTVA: 10},
			{Designation: "Remplacement robinetterie", Quantite: 1, Unite: "u", PrixUnitaire: 120, TauxTVA: 10},
		},
	},
	{
		motsCles: []string{"chauffe-eau", "chauffe eau", "ballon", "cumulus"},
		lignes: []LigneSuggestion{
			{Designation: "Dépose de l'ancien chauffe-eau", Quantite: 1, Unite: "forfait", PrixUnitaire: 80, TauxTVA: 10},
			{Designation: "Fourniture et pose chauffe-eau 200L", Quantite: 1, Unite: "u", PrixUnitaire: 650, TauxTVA: 10},
			{Designation: "Raccordement et mise en service", Quantite: 2, Unite: "h", PrixUnitaire: 55, TauxTVA: 10},
		},
	},
	{
		motsCles: []string{"tableau", "disjoncteur", "electrique"},
		lignes: []LigneSuggestion{
			{Designation: "Mise aux normes tableau électrique", Quantite: 1, Unite: "forfait", PrixUnitaire: 850, TauxTVA: 10},
			{Designation: "Disjoncteur différentiel 30mA", Quantite: 2, Unite: "u", PrixUnitaire: 95, TauxTVA: 10},
		},
	},
	{
		motsCles: []string{"prise", "interrupteur", "luminaire"},
		lignes: []LigneSuggestion{
			{Designation: "Fourniture et pose de prise/interrupteur", Quantite: 4, Unite: "u", PrixUnitaire: 45, TauxTVA: 10},
		},
	},
	{
		motsCles: []string{"peinture", "peindre", "enduit"},
		lignes: []LigneSuggestion{
			{Designation: "Préparation des supports (rebouchage, ponçage)", Quantite: 20, Unite: "m²", PrixUnitaire: 12, TauxTVA: 10},
			{Designation: "Peinture deux couches finition mate", Quantite: 20, Unite: "m²", PrixUnitaire: 22, TauxTVA: 10},
		},
	},
	{
		motsCles: []string{"carrelage", "faience"},
		lignes: []LigneSuggestion{
			{Designation: "Dépose ancien revêtement", Quantite: 10, Unite: "m²", PrixUnitaire: 18, TauxTVA: 10},
			{Designation: "Fourniture et pose carrelage", Quantite: 10, Unite: "m²", PrixUnitaire: 55, TauxTVA: 10},
		},
	},
	{
		motsCles: []string{"porte", "fenetre", "menuiserie"},
		lignes: []LigneSuggestion{
			{Designation: "Fourniture et pose menuiserie", Quantite: 1, Unite: "u", PrixUnitaire: 480, TauxTVA: 10},
			{Designation: "Finitions et réglages", Quantite: 1, Unite: "forfait", PrixUnitaire: 60, TauxTVA: 10},
		},
	},
	{
		motsCles: []string{"salle de bain", "douche", "baignoire"},
		lignes: []LigneSuggestion{
			{Designation: "Dépose sanitaires existants", Quantite: 1, Unite: "forfait", PrixUnitaire: 250, TauxTVA: 10},
			{Designation: "Fourniture et pose receveur de douche", Quantite: 1, Unite: "u", PrixUnitaire: 750, TauxTVA: 10},
			{Designation: "Plomberie et évacuations", Quantite: 8, Unite: "h", PrixUnitaire: 55, TauxTVA: 10},
		},
	},
}

// ligneParDefaut couvre les descriptions qui ne matchent aucun mot-clé.
var ligneParDefaut = LigneSuggestion{
	Designation: "Main d'œuvre", Quantite: 4, Unite: "h", PrixUnitaire: 50, TauxTVA: 10,
}

// SuggererDepuisArticles matches the description against the artisan's own
// articles, which carry the real prices. Returns nil when nothing matches;
// the built-in price list then takes over.
func SuggererDepuisArticles(req SuggestionRequest, articles []stocks.Article) *Suggestion {
	texte := shared.FoldSearch(req.Description)

	var lignes []LigneSuggestion
	for _, a := range articles {
		if !articleCorrespond(texte, a) {
			continue
		}
		lignes = append(lignes, LigneSuggestion{
			Designation:  a.Designation,
			Quantite:     1,
			Unite:        a.Unite,
			PrixUnitaire: a.PrixVente,
			TauxTVA:      a.TauxTVA,
		})
	}
	if len(lignes) == 0 {
		return nil
	}
	return &Suggestion{Objet: objetDepuis(req.Description), Lignes: lignes, Source: "catalogue"}
}

// articleCorrespond : un mot significatif (4 lettres ou plus) de la
// désignation ou de la catégorie présent dans la description suffit.
func articleCorrespond(texte string, a stocks.Article) bool {
	for _, champ := range []string{a.Designation, a.Categorie} {
		for _, mot := range strings.Fields(shared.FoldSearch(champ)) {
			if len([]rune(mot)) >= 4 && strings.Contains(texte, mot) {
				return true
			}
		}
	}
	return false
}

// SuggererDepuisCatalogue builds a draft from keyword matches against the
// built-in price list. Always succeeds; used when no AI key is configured or
// when the AI call fails.
func SuggererDepuisCatalogue(req SuggestionRequest) *Suggestion {
	texte := shared.FoldSearch(req.Description)

	var lignes []LigneSuggestion
	for _, entree := range catalogue {
		for _, mot := range entree.motsCles {
			if strings.Contains(texte, shared.FoldSearch(mot)) {
				lignes = append(lignes, entree.lignes...)
				break
			}
		}
	}
	if len(lignes) == 0 {
		lignes = []LigneSuggestion{ligneParDefaut}
	}
	return &Suggestion{Objet: objetDepuis(req.Description), Lignes: lignes, Source: "catalogue"}
}

func objetDepuis(description string) string {
	objet := strings.TrimSpace(description)
	if runes := []rune(objet); len(runes) > 120 {
		objet = string(runes[:120])
	}
	return objet
}
