package comptabilite

import "time"

// Comptes du plan comptable général utilisés par les écritures de vente.
const (
	CompteClients    = "411000"
	ComptePrestation = "706000"
	CompteTVACollectee = "44571"

	JournalVentes    = "VE"
	JournalVentesLib = "Journal des ventes"
)

// FactureComptable est la vue d'une facture finalisée côté export.
type FactureComptable struct {
	ID           int64
	Numero       string
	Objet        string
	ClientNom    string
	DateEmission time.Time
	TotalHT      float64
	TotalTVA     float64
	TotalTTC     float64
	PaiementDate *time.Time
}

// IntegrationComptable référence le logiciel du cabinet comptable de
// l'artisan.
type IntegrationComptable struct {
	ID            int64      `json:"id"`
	ArtisanID     int64      `json:"artisan_id"`
	Logiciel      string     `json:"logiciel"`
	EmailCabinet  *string    `json:"email_cabinet,omitempty"`
	Actif         bool       `json:"actif"`
	DernierExport *time.Time `json:"dernier_export,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CreateIntegrationRequest struct {
	Logiciel     string  `json:"logiciel" validate:"required,max=100"`
	EmailCabinet *string `json:"email_cabinet,omitempty" validate:"omitempty,email"`
}

type UpdateIntegrationRequest struct {
	Logiciel     *string `json:"logiciel,omitempty" validate:"omitempty,max=100"`
	EmailCabinet *string `json:"email_cabinet,omitempty" validate:"omitempty,email"`
	Actif        *bool   `json:"actif,omitempty"`
}
