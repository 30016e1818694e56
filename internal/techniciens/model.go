package techniciens

import "time"

// Technicien is a member of the artisan's team that interventions are
// assigned to.
type Technicien struct {
	ID        int64     `json:"id"`
	ArtisanID int64     `json:"artisan_id"`
	Nom       string    `json:"nom"`
	Telephone *string   `json:"telephone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Couleur   string    `json:"couleur"`
	Actif     bool      `json:"actif"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateTechnicienRequest struct {
	Nom       string  `json:"nom" validate:"required,max=200"`
	Telephone *string `json:"telephone,omitempty" validate:"omitempty,max=20"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Couleur   string  `json:"couleur" validate:"omitempty,hexcolor"`
}

type UpdateTechnicienRequest struct {
	Nom       *string `json:"nom,omitempty" validate:"omitempty,max=200"`
	Telephone *string `json:"telephone,omitempty" validate:"omitempty,max=20"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Couleur   *string `json:"couleur,omitempty" validate:"omitempty,hexcolor"`
	Actif     *bool   `json:"actif,omitempty"`
}
