package contrats

import "time"

type Periodicite string

const (
	PeriodiciteMensuelle    Periodicite = "MENSUEL"
	PeriodiciteTrimestrielle Periodicite = "TRIMESTRIEL"
	PeriodiciteAnnuelle     Periodicite = "ANNUEL"
)

// Mois ajoutés à chaque facturation.
func (p Periodicite) Mois() int {
	switch p {
	case PeriodiciteTrimestrielle:
		return 3
	case PeriodiciteAnnuelle:
		return 12
	default:
		return 1
	}
}

// Contrat d'entretien : facturation périodique automatique.
type Contrat struct {
	ID          int64       `json:"id"`
	ArtisanID   int64       `json:"artisan_id"`
	ClientID    int64       `json:"client_id"`
	Libelle     string      `json:"libelle"`
	Description *string     `json:"description,omitempty"`
	MontantHT   float64     `json:"montant_ht"`
	TauxTVA     float64     `json:"taux_tva"`
	Periodicite Periodicite `json:"periodicite"`

	DateDebut            time.Time  `json:"date_debut"`
	DateFin              *time.Time `json:"date_fin,omitempty"`
	ProchaineFacturation time.Time  `json:"prochaine_facturation"`

	Actif     bool      `json:"actif"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EstEchu reports whether the contract is due for billing.
func (c Contrat) EstEchu(now time.Time) bool {
	if !c.Actif {
		return false
	}
	if c.DateFin != nil && now.After(*c.DateFin) {
		return false
	}
	return !c.ProchaineFacturation.After(now)
}

type CreateContratRequest struct {
	ClientID    int64       `json:"client_id" validate:"required"`
	Libelle     string      `json:"libelle" validate:"required,max=300"`
	Description *string     `json:"description,omitempty"`
	MontantHT   float64     `json:"montant_ht" validate:"required,gt=0"`
	TauxTVA     float64     `json:"taux_tva" validate:"gte=0,lte=100"`
	Periodicite Periodicite `json:"periodicite" validate:"required,oneof=MENSUEL TRIMESTRIEL ANNUEL"`
	DateDebut   *time.Time  `json:"date_debut,omitempty"`
	DateFin     *time.Time  `json:"date_fin,omitempty"`
}

type UpdateContratRequest struct {
	Libelle     *string      `json:"libelle,omitempty" validate:"omitempty,max=300"`
	Description *string      `json:"description,omitempty"`
	MontantHT   *float64     `json:"montant_ht,omitempty" validate:"omitempty,gt=0"`
	TauxTVA     *float64     `json:"taux_tva,omitempty" validate:"omitempty,gte=0,lte=100"`
	Periodicite *Periodicite `json:"periodicite,omitempty" validate:"omitempty,oneof=MENSUEL TRIMESTRIEL ANNUEL"`
	DateFin     *time.Time   `json:"date_fin,omitempty"`
	Actif       *bool        `json:"actif,omitempty"`
}

type ListContratsRequest struct {
	ArtisanID int64
	ClientID  *int64
	Actif     *bool
	Limit     int
	Offset    int
}

// FacturationResult summarises a billing run.
type FacturationResult struct {
	Echus    int `json:"echus"`
	Factures int `json:"factures"`
	Erreurs  int `json:"erreurs"`
}
