package notifications

import "time"

type TypeNotification string

const (
	TypeDevisSigne      TypeNotification = "DEVIS_SIGNE"
	TypeDevisRefuse     TypeNotification = "DEVIS_REFUSE"
	TypeRelanceEnvoyee  TypeNotification = "RELANCE_ENVOYEE"
	TypeStockBas        TypeNotification = "STOCK_BAS"
	TypeFactureEnRetard TypeNotification = "FACTURE_EN_RETARD"
	TypeContratFacture  TypeNotification = "CONTRAT_FACTURE"
)

type Notification struct {
	ID        int64            `json:"id"`
	ArtisanID int64            `json:"artisan_id"`
	Type      TypeNotification `json:"type"`
	Titre     string           `json:"titre"`
	Message   string           `json:"message"`
	Lu        bool             `json:"lu"`

	// Référence facultative vers l'entité concernée.
	EntiteType *string `json:"entite_type,omitempty"`
	EntiteID   *int64  `json:"entite_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type ListNotificationsRequest struct {
	ArtisanID int64
	NonLues   bool
	Limit     int
	Offset    int
}
