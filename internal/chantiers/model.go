package chantiers

import "time"

type StatutChantier string

const (
	StatutEnPreparation StatutChantier = "EN_PREPARATION"
	StatutEnCours       StatutChantier = "EN_COURS"
	StatutTermine       StatutChantier = "TERMINE"
	StatutSuspendu      StatutChantier = "SUSPENDU"
)

type Chantier struct {
	ID         int64          `json:"id"`
	ArtisanID  int64          `json:"artisan_id"`
	ClientID   int64          `json:"client_id"`
	Nom        string         `json:"nom"`
	Adresse    *string        `json:"adresse,omitempty"`
	Statut     StatutChantier `json:"statut"`
	Budget     *float64       `json:"budget,omitempty"`
	DateDebut  *time.Time     `json:"date_debut,omitempty"`
	DateFin    *time.Time     `json:"date_fin,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type CreateChantierRequest struct {
	ClientID  int64      `json:"client_id" validate:"required"`
	Nom       string     `json:"nom" validate:"required,max=300"`
	Adresse   *string    `json:"adresse,omitempty"`
	Budget    *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
	DateDebut *time.Time `json:"date_debut,omitempty"`
	DateFin   *time.Time `json:"date_fin,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

type UpdateChantierRequest struct {
	Nom       *string         `json:"nom,omitempty" validate:"omitempty,max=300"`
	Adresse   *string         `json:"adresse,omitempty"`
	Statut    *StatutChantier `json:"statut,omitempty" validate:"omitempty,oneof=EN_PREPARATION EN_COURS TERMINE SUSPENDU"`
	Budget    *float64        `json:"budget,omitempty" validate:"omitempty,gte=0"`
	DateDebut *time.Time      `json:"date_debut,omitempty"`
	DateFin   *time.Time      `json:"date_fin,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
}

type ListChantiersRequest struct {
	ArtisanID int64
	ClientID  *int64
	Statut    *StatutChantier
	Search    string
	Limit     int
	Offset    int
}
