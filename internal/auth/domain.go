package auth

import "time"

// Artisan is the tenant account: the tradesperson running their business on
// the platform.
type Artisan struct {
	ID           int64     `json:"id"`
	Entreprise   string    `json:"entreprise"`
	Nom          string    `json:"nom"`
	Email        string    `json:"email"`
	Telephone    string    `json:"telephone,omitempty"`
	Siret        string    `json:"siret,omitempty"`
	Metier       string    `json:"metier,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
