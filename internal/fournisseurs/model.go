package fournisseurs

import "time"

// Fournisseur is a supplier the artisan restocks from.
type Fournisseur struct {
	ID        int64     `json:"id"`
	ArtisanID int64     `json:"artisan_id"`
	Nom       string    `json:"nom"`
	Contact   *string   `json:"contact,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Telephone *string   `json:"telephone,omitempty"`
	Adresse   *string   `json:"adresse,omitempty"`
	Siret     *string   `json:"siret,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateFournisseurRequest struct {
	Nom       string  `json:"nom" validate:"required,max=200"`
	Contact   *string `json:"contact,omitempty" validate:"omitempty,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Telephone *string `json:"telephone,omitempty" validate:"omitempty,max=20"`
	Adresse   *string `json:"adresse,omitempty"`
	Siret     *string `json:"siret,omitempty" validate:"omitempty,len=14"`
	Notes     *string `json:"notes,omitempty"`
}

type UpdateFournisseurRequest struct {
	Nom       *string `json:"nom,omitempty" validate:"omitempty,max=200"`
	Contact   *string `json:"contact,omitempty" validate:"omitempty,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Telephone *string `json:"telephone,omitempty" validate:"omitempty,max=20"`
	Adresse   *string `json:"adresse,omitempty"`
	Siret     *string `json:"siret,omitempty" validate:"omitempty,len=14"`
	Notes     *string `json:"notes,omitempty"`
}
