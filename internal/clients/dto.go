package clients

type CreateClientRequest struct {
	Nom        string  `json:"nom" validate:"required,max=200"`
	Entreprise *string `json:"entreprise,omitempty" validate:"omitempty,max=200"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Telephone  *string `json:"telephone,omitempty" validate:"omitempty,max=20"`
	Adresse    *string `json:"adresse,omitempty"`
	CodePostal *string `json:"code_postal,omitempty" validate:"omitempty,len=5"`
	Ville      *string `json:"ville,omitempty" validate:"omitempty,max=100"`
	Type       string  `json:"type" validate:"omitempty,oneof=PARTICULIER PROFESSIONNEL"`
	Notes      *string `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Nom        *string `json:"nom,omitempty" validate:"omitempty,max=200"`
	Entreprise *string `json:"entreprise,omitempty" validate:"omitempty,max=200"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Telephone  *string `json:"telephone,omitempty" validate:"omitempty,max=20"`
	Adresse    *string `json:"adresse,omitempty"`
	CodePostal *string `json:"code_postal,omitempty" validate:"omitempty,len=5"`
	Ville      *string `json:"ville,omitempty" validate:"omitempty,max=100"`
	Type       *string `json:"type,omitempty" validate:"omitempty,oneof=PARTICULIER PROFESSIONNEL"`
	Notes      *string `json:"notes,omitempty"`
}

type ListClientsRequest struct {
	ArtisanID int64
	Search    string
	Type      *ClientType
	Limit     int
	Offset    int
}
