package stocks

import "time"

// TypeMouvement qualifie un mouvement de stock.
type TypeMouvement string

const (
	MouvementEntree     TypeMouvement = "ENTREE"
	MouvementSortie     TypeMouvement = "SORTIE"
	MouvementAjustement TypeMouvement = "AJUSTEMENT"
)

// Article is a catalog item, optionally stock-tracked.
type Article struct {
	ID            int64     `json:"id"`
	ArtisanID     int64     `json:"artisan_id"`
	Reference     string    `json:"reference"`
	Designation   string    `json:"designation"`
	Categorie     string    `json:"categorie,omitempty"`
	Metier        string    `json:"metier,omitempty"`
	Unite         string    `json:"unite"`
	PrixAchat     float64   `json:"prix_achat"`
	PrixVente     float64   `json:"prix_vente"`
	TauxTVA       float64   `json:"taux_tva"`
	FournisseurID *int64    `json:"fournisseur_id,omitempty"`
	SuiviStock    bool      `json:"suivi_stock"`
	Quantite      float64   `json:"quantite"`
	SeuilAlerte   float64   `json:"seuil_alerte"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EnAlerte reports whether the tracked quantity fell to or below the threshold.
func (a Article) EnAlerte() bool {
	return a.SuiviStock && a.Quantite <= a.SeuilAlerte
}

// Mouvement records one stock entry, exit or manual adjustment.
type Mouvement struct {
	ID            int64         `json:"id"`
	ArtisanID     int64         `json:"artisan_id"`
	ArticleID     int64         `json:"article_id"`
	Type          TypeMouvement `json:"type"`
	Quantite      float64       `json:"quantite"`
	QuantiteApres float64       `json:"quantite_apres"`
	Motif         *string       `json:"motif,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type CreateArticleRequest struct {
	Reference     string  `json:"reference" validate:"required,max=50"`
	Designation   string  `json:"designation" validate:"required,max=300"`
	Categorie     string  `json:"categorie" validate:"omitempty,max=100"`
	Metier        string  `json:"metier" validate:"omitempty,max=100"`
	Unite         string  `json:"unite" validate:"omitempty,max=20"`
	PrixAchat     float64 `json:"prix_achat" validate:"gte=0"`
	PrixVente     float64 `json:"prix_vente" validate:"gte=0"`
	TauxTVA       float64 `json:"taux_tva" validate:"gte=0,lte=100"`
	FournisseurID *int64  `json:"fournisseur_id,omitempty"`
	SuiviStock    bool    `json:"suivi_stock"`
	Quantite      float64 `json:"quantite" validate:"gte=0"`
	SeuilAlerte   float64 `json:"seuil_alerte" validate:"gte=0"`
}

type UpdateArticleRequest struct {
	Reference     *string  `json:"reference,omitempty" validate:"omitempty,max=50"`
	Designation   *string  `json:"designation,omitempty" validate:"omitempty,max=300"`
	Categorie     *string  `json:"categorie,omitempty" validate:"omitempty,max=100"`
	Metier        *string  `json:"metier,omitempty" validate:"omitempty,max=100"`
	Unite         *string  `json:"unite,omitempty" validate:"omitempty,max=20"`
	PrixAchat     *float64 `json:"prix_achat,omitempty" validate:"omitempty,gte=0"`
	PrixVente     *float64 `json:"prix_vente,omitempty" validate:"omitempty,gte=0"`
	TauxTVA       *float64 `json:"taux_tva,omitempty" validate:"omitempty,gte=0,lte=100"`
	FournisseurID *int64   `json:"fournisseur_id,omitempty"`
	SuiviStock    *bool    `json:"suivi_stock,omitempty"`
	SeuilAlerte   *float64 `json:"seuil_alerte,omitempty" validate:"omitempty,gte=0"`
}

type MouvementRequest struct {
	Type     TypeMouvement `json:"type" validate:"required,oneof=ENTREE SORTIE AJUSTEMENT"`
	Quantite float64       `json:"quantite" validate:"required"`
	Motif    *string       `json:"motif,omitempty" validate:"omitempty,max=300"`
}
