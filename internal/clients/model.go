package clients

import "time"

type ClientType string

const (
	ClientTypeParticulier   ClientType = "PARTICULIER"
	ClientTypeProfessionnel ClientType = "PROFESSIONNEL"
)

type Client struct {
	ID         int64      `json:"id"`
	ArtisanID  int64      `json:"artisan_id"`
	Nom        string     `json:"nom"`
	Entreprise *string    `json:"entreprise,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Telephone  *string    `json:"telephone,omitempty"`
	Adresse    *string    `json:"adresse,omitempty"`
	CodePostal *string    `json:"code_postal,omitempty"`
	Ville      *string    `json:"ville,omitempty"`
	Type       ClientType `json:"type"`
	Notes      *string    `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
