package relances

import "time"

// Config pilote les relances automatiques de devis d'un artisan.
type Config struct {
	ArtisanID int64 `json:"artisan_id"`
	Active    bool  `json:"active"`

	// JoursAvantPremiere : délai après l'envoi du devis avant la première
	// relance. JoursEntre : délai minimal entre deux relances.
	JoursAvantPremiere int `json:"jours_avant_premiere"`
	JoursEntre         int `json:"jours_entre"`
	MaxRelances        int `json:"max_relances"`

	// HeureEnvoi : heure locale (0-23) à laquelle le lot part.
	HeureEnvoi   int   `json:"heure_envoi"`
	JoursSemaine []int `json:"jours_semaine"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ConfigParDefaut : relances actives, hebdomadaires, en matinée de semaine.
func ConfigParDefaut(artisanID int64) Config {
	return Config{
		ArtisanID:          artisanID,
		Active:             true,
		JoursAvantPremiere: 7,
		JoursEntre:         7,
		MaxRelances:        3,
		HeureEnvoi:         9,
		JoursSemaine:       []int{1, 2, 3, 4, 5},
	}
}

// EstPlanifiee reports whether the batch should run at the given time.
func (c Config) EstPlanifiee(now time.Time) bool {
	if !c.Active || now.Hour() != c.HeureEnvoi {
		return false
	}
	jour := int(now.Weekday())
	for _, j := range c.JoursSemaine {
		if j == jour {
			return true
		}
	}
	return false
}

type UpdateConfigRequest struct {
	Active             *bool  `json:"active,omitempty"`
	JoursAvantPremiere *int   `json:"jours_avant_premiere,omitempty" validate:"omitempty,gte=1,lte=90"`
	JoursEntre         *int   `json:"jours_entre,omitempty" validate:"omitempty,gte=1,lte=90"`
	MaxRelances        *int   `json:"max_relances,omitempty" validate:"omitempty,gte=1,lte=10"`
	HeureEnvoi         *int   `json:"heure_envoi,omitempty" validate:"omitempty,gte=0,lte=23"`
	JoursSemaine       *[]int `json:"jours_semaine,omitempty" validate:"omitempty,min=1,max=7,dive,gte=0,lte=6"`
}

// ScanResult summarises one hourly pass over all artisans.
type ScanResult struct {
	Configs  int `json:"configs"`
	Lances   int `json:"lances"`
	Envoyees int `json:"envoyees"`
	Erreurs  int `json:"erreurs"`
}
