package rapports

import "time"

// Rapport est le compte rendu d'une intervention, rédigé sur place, avec
// photos et signature du client.
type Rapport struct {
	ID             int64      `json:"id"`
	ArtisanID      int64      `json:"artisan_id"`
	InterventionID int64      `json:"intervention_id"`
	ChantierID     *int64     `json:"chantier_id,omitempty"`
	Contenu        string     `json:"contenu"`
	Photos         []string   `json:"photos"`
	Materiaux      []Materiau `json:"materiaux"`
	// SignatureClient est l'image du paraphe en data-URL base64, captée sur
	// l'écran du téléphone.
	SignatureClient *string   `json:"signature_client,omitempty"`
	SignataireNom   *string   `json:"signataire_nom,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Materiau est une consommation de stock déclarée dans le rapport.
type Materiau struct {
	ID          int64   `json:"id"`
	RapportID   int64   `json:"rapport_id"`
	ArticleID   int64   `json:"article_id"`
	Designation string  `json:"designation"`
	Quantite    float64 `json:"quantite"`
}

type MateriauRequest struct {
	ArticleID int64   `json:"article_id" validate:"required"`
	Quantite  float64 `json:"quantite" validate:"required,gt=0"`
}

type CreateRapportRequest struct {
	InterventionID  int64             `json:"intervention_id" validate:"required"`
	Contenu         string            `json:"contenu" validate:"required"`
	Photos          []string          `json:"photos" validate:"omitempty,dive,url"`
	Materiaux       []MateriauRequest `json:"materiaux" validate:"omitempty,dive"`
	SignatureClient *string           `json:"signature_client,omitempty"`
	SignataireNom   *string           `json:"signataire_nom,omitempty" validate:"omitempty,max=150"`
}

type UpdateRapportRequest struct {
	Contenu         *string  `json:"contenu,omitempty"`
	Photos          []string `json:"photos,omitempty" validate:"omitempty,dive,url"`
	SignatureClient *string  `json:"signature_client,omitempty"`
	SignataireNom   *string  `json:"signataire_nom,omitempty" validate:"omitempty,max=150"`
}
