package assistant

// SuggestionRequest décrit les travaux en langage libre.
type SuggestionRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
	Metier      string `json:"metier" validate:"omitempty,max=100"`
}

type LigneSuggestion struct {
	Designation  string  `json:"designation"`
	Quantite     float64 `json:"quantite"`
	Unite        string  `json:"unite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
	TauxTVA      float64 `json:"taux_tva"`
}

// Suggestion est un brouillon de devis : l'artisan relit, ajuste et crée le
// devis lui-même, rien n'est persisté ici.
type Suggestion struct {
	Objet  string            `json:"objet"`
	Lignes []LigneSuggestion `json:"lignes"`
	// Source vaut "ia" ou "catalogue" selon le générateur utilisé.
	Source string `json:"source"`
}
