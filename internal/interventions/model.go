package interventions

import "time"

type StatutIntervention string

const (
	StatutPlanifiee StatutIntervention = "PLANIFIEE"
	StatutEnCours   StatutIntervention = "EN_COURS"
	StatutTerminee  StatutIntervention = "TERMINEE"
	StatutAnnulee   StatutIntervention = "ANNULEE"
)

type Intervention struct {
	ID           int64              `json:"id"`
	ArtisanID    int64              `json:"artisan_id"`
	ClientID     int64              `json:"client_id"`
	ChantierID   *int64             `json:"chantier_id,omitempty"`
	TechnicienID *int64             `json:"technicien_id,omitempty"`
	Titre        string             `json:"titre"`
	Description  *string            `json:"description,omitempty"`
	Statut       StatutIntervention `json:"statut"`
	DateDebut    time.Time          `json:"date_debut"`
	DateFin      time.Time          `json:"date_fin"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type CreateInterventionRequest struct {
	ClientID     int64      `json:"client_id" validate:"required"`
	ChantierID   *int64     `json:"chantier_id,omitempty"`
	TechnicienID *int64     `json:"technicien_id,omitempty"`
	Titre        string     `json:"titre" validate:"required,max=300"`
	Description  *string    `json:"description,omitempty"`
	DateDebut    time.Time  `json:"date_debut" validate:"required"`
	DateFin      time.Time  `json:"date_fin" validate:"required"`
}

type UpdateInterventionRequest struct {
	ClientID     *int64              `json:"client_id,omitempty"`
	ChantierID   *int64              `json:"chantier_id,omitempty"`
	TechnicienID *int64              `json:"technicien_id,omitempty"`
	Titre        *string             `json:"titre,omitempty" validate:"omitempty,max=300"`
	Description  *string             `json:"description,omitempty"`
	Statut       *StatutIntervention `json:"statut,omitempty" validate:"omitempty,oneof=PLANIFIEE EN_COURS TERMINEE ANNULEE"`
	DateDebut    *time.Time          `json:"date_debut,omitempty"`
	DateFin      *time.Time          `json:"date_fin,omitempty"`
}

type DeplacerRequest struct {
	Jours int `json:"jours" validate:"required,ne=0,gte=-365,lte=365"`
}

type ListInterventionsRequest struct {
	ArtisanID    int64
	ChantierID   *int64
	TechnicienID *int64
	Statut       *StatutIntervention
	Du           *time.Time
	Au           *time.Time
	Limit        int
	Offset       int
}
