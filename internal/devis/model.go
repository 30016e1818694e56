package devis

import (
	"math"
	"time"
)

// StatutDevis suit le cycle de vie d'un devis.
type StatutDevis string

const (
	StatutBrouillon StatutDevis = "BROUILLON"
	StatutEnvoye    StatutDevis = "ENVOYE"
	StatutAccepte   StatutDevis = "ACCEPTE"
	StatutRefuse    StatutDevis = "REFUSE"

	// StatutExpire is never stored: it is derived from the validity date
	// when the quote was sent but neither accepted nor refused in time.
	StatutExpire StatutDevis = "EXPIRE"
)

type Devis struct {
	ID           int64       `json:"id"`
	ArtisanID    int64       `json:"artisan_id"`
	ClientID     int64       `json:"client_id"`
	Numero       string      `json:"numero"`
	Statut       StatutDevis `json:"statut"`
	Objet        string      `json:"objet"`
	DateEmission time.Time   `json:"date_emission"`
	DateValidite time.Time   `json:"date_validite"`
	DateEnvoi    *time.Time  `json:"date_envoi,omitempty"`

	TotalHT  float64 `json:"total_ht"`
	TotalTVA float64 `json:"total_tva"`
	TotalTTC float64 `json:"total_ttc"`

	SignataireNom *string    `json:"signataire_nom,omitempty"`
	DateSignature *time.Time `json:"date_signature,omitempty"`

	DerniereRelance *time.Time `json:"derniere_relance,omitempty"`
	NbRelances      int        `json:"nb_relances"`

	Notes     *string   `json:"notes,omitempty"`
	Lignes    []Ligne   `json:"lignes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatutEffectif returns the stored status, or EXPIRE when a sent quote
// outlived its validity date without a signature.
func (d Devis) StatutEffectif(now time.Time) StatutDevis {
	if d.Statut == StatutEnvoye && now.After(d.DateValidite) {
		return StatutExpire
	}
	return d.Statut
}

// EstSigne reports whether the quote carries a signature.
func (d Devis) EstSigne() bool {
	return d.DateSignature != nil
}

type Ligne struct {
	ID           int64   `json:"id"`
	DevisID      int64   `json:"devis_id"`
	Ordre        int     `json:"ordre"`
	Designation  string  `json:"designation"`
	Quantite     float64 `json:"quantite"`
	Unite        string  `json:"unite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
	TauxTVA      float64 `json:"taux_tva"`
	MontantHT    float64 `json:"montant_ht"`
	ArticleID    *int64  `json:"article_id,omitempty"`
}

// Relance records one reminder email sent for an unsigned quote, with the
// free-text note the artisan may have joined to it.
type Relance struct {
	ID          int64     `json:"id"`
	DevisID     int64     `json:"devis_id"`
	Message     *string   `json:"message,omitempty"`
	Automatique bool      `json:"automatique"`
	CreatedAt   time.Time `json:"created_at"`
}

type LigneRequest struct {
	Designation  string  `json:"designation" validate:"required,max=500"`
	Quantite     float64 `json:"quantite" validate:"required,gt=0"`
	Unite        string  `json:"unite" validate:"omitempty,max=20"`
	PrixUnitaire float64 `json:"prix_unitaire" validate:"gte=0"`
	TauxTVA      float64 `json:"taux_tva" validate:"gte=0,lte=100"`
	ArticleID    *int64  `json:"article_id,omitempty"`
}

type CreateDevisRequest struct {
	ClientID     int64          `json:"client_id" validate:"required"`
	Objet        string         `json:"objet" validate:"required,max=300"`
	DateValidite *time.Time     `json:"date_validite,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	Lignes       []LigneRequest `json:"lignes" validate:"required,min=1,dive"`
}

type UpdateDevisRequest struct {
	Objet        *string        `json:"objet,omitempty" validate:"omitempty,max=300"`
	DateValidite *time.Time     `json:"date_validite,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	Lignes       []LigneRequest `json:"lignes,omitempty" validate:"omitempty,min=1,dive"`
}

type ListDevisRequest struct {
	ArtisanID int64
	ClientID  *int64
	Statut    *StatutDevis
	Search    string
	Limit     int
	Offset    int
}

// arrondi bancaire classique à deux décimales pour les montants en euros.
func arrondir(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculerTotaux recomputes line amounts and the quote totals in place.
func CalculerTotaux(d *Devis) {
	var ht, tva float64
	for i := range d.Lignes {
		l := &d.Lignes[i]
		l.MontantHT = arrondir(l.Quantite * l.PrixUnitaire)
		ht += l.MontantHT
		tva += l.MontantHT * l.TauxTVA / 100
	}
	d.TotalHT = arrondir(ht)
	d.TotalTVA = arrondir(tva)
	d.TotalTTC = arrondir(d.TotalHT + d.TotalTVA)
}
