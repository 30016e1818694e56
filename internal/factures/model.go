package factures

import (
	"math"
	"time"
)

type StatutFacture string

const (
	StatutBrouillon StatutFacture = "BROUILLON"
	StatutEnvoyee   StatutFacture = "ENVOYEE"
	StatutPayee     StatutFacture = "PAYEE"
	StatutAnnulee   StatutFacture = "ANNULEE"

	// StatutEnRetard n'est jamais stocké : il est dérivé de l'échéance.
	StatutEnRetard StatutFacture = "EN_RETARD"
)

type Facture struct {
	ID        int64         `json:"id"`
	ArtisanID int64         `json:"artisan_id"`
	ClientID  int64         `json:"client_id"`
	DevisID   *int64        `json:"devis_id,omitempty"`
	ContratID *int64        `json:"contrat_id,omitempty"`
	Numero    string        `json:"numero"`
	Statut    StatutFacture `json:"statut"`
	Objet     string        `json:"objet"`

	DateEmission time.Time `json:"date_emission"`
	DateEcheance time.Time `json:"date_echeance"`

	TotalHT  float64 `json:"total_ht"`
	TotalTVA float64 `json:"total_tva"`
	TotalTTC float64 `json:"total_ttc"`

	PaiementDate  *time.Time `json:"paiement_date,omitempty"`
	PaiementMoyen *string    `json:"paiement_moyen,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	Lignes    []Ligne   `json:"lignes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatutEffectif derives EN_RETARD for sent, unpaid invoices past due date.
func (f Facture) StatutEffectif(now time.Time) StatutFacture {
	if f.Statut == StatutEnvoyee && f.PaiementDate == nil && now.After(f.DateEcheance) {
		return StatutEnRetard
	}
	return f.Statut
}

type Ligne struct {
	ID           int64   `json:"id"`
	FactureID    int64   `json:"facture_id"`
	Ordre        int     `json:"ordre"`
	Designation  string  `json:"designation"`
	Quantite     float64 `json:"quantite"`
	Unite        string  `json:"unite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
	TauxTVA      float64 `json:"taux_tva"`
	MontantHT    float64 `json:"montant_ht"`
}

type LigneRequest struct {
	Designation  string  `json:"designation" validate:"required,max=500"`
	Quantite     float64 `json:"quantite" validate:"required,gt=0"`
	Unite        string  `json:"unite" validate:"omitempty,max=20"`
	PrixUnitaire float64 `json:"prix_unitaire" validate:"gte=0"`
	TauxTVA      float64 `json:"taux_tva" validate:"gte=0,lte=100"`
}

type CreateFactureRequest struct {
	ClientID     int64          `json:"client_id" validate:"required"`
	Objet        string         `json:"objet" validate:"required,max=300"`
	DateEcheance *time.Time     `json:"date_echeance,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	Lignes       []LigneRequest `json:"lignes" validate:"required,min=1,dive"`
}

type UpdateFactureRequest struct {
	Objet        *string        `json:"objet,omitempty" validate:"omitempty,max=300"`
	DateEcheance *time.Time     `json:"date_echeance,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	Lignes       []LigneRequest `json:"lignes,omitempty" validate:"omitempty,min=1,dive"`
}

type PaiementRequest struct {
	Date  *time.Time `json:"date,omitempty"`
	Moyen string     `json:"moyen" validate:"required,oneof=VIREMENT CHEQUE CB ESPECES PRELEVEMENT"`
}

type ListFacturesRequest struct {
	ArtisanID int64
	ClientID  *int64
	Statut    *StatutFacture
	Search    string
	Limit     int
	Offset    int
}

func arrondir(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculerTotaux recomputes line amounts and invoice totals in place.
func CalculerTotaux(f *Facture) {
	var ht, tva float64
	for i := range f.Lignes {
		l := &f.Lignes[i]
		l.MontantHT = arrondir(l.Quantite * l.PrixUnitaire)
		ht += l.MontantHT
		tva += l.MontantHT * l.TauxTVA / 100
	}
	f.TotalHT = arrondir(ht)
	f.TotalTVA = arrondir(tva)
	f.TotalTTC = arrondir(f.TotalHT + f.TotalTVA)
}
