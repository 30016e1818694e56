package relances

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// GetConfig returns the artisan's config, falling back to the default
	// one when none was ever saved.
	GetConfig(ctx context.Context, artisanID int64) (*Config, error)
	SaveConfig(ctx context.Context, c *Config) error
	// ListConfigsActives spans all artisans for the hourly scan.
	ListConfigsActives(ctx context.Context) ([]Config, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const configColumns = `artisan_id, active, jours_avant_premiere, jours_entre, max_relances, heure_envoi, jours_semaine, updated_at`

func (r *repository) GetConfig(ctx context.Context, artisanID int64) (*Config, error) {
	var c Config
	err := r.pool.QueryRow(ctx, `SELECT `+configColumns+` FROM relance_configs WHERE artisan_id = $1`, artisanID).
		Scan(&c.ArtisanID, &c.Active, &c.JoursAvantPremiere, &c.JoursEntre, &c.MaxRelances, &c.HeureEnvoi, &c.JoursSemaine, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaut := ConfigParDefaut(artisanID)
			return &defaut, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) SaveConfig(ctx context.Context, c *Config) error {
	return r.pool.QueryRow(ctx, `
INSERT INTO relance_configs (artisan_id, active, jours_avant_premiere, jours_entre, max_relances, heure_envoi, jours_semaine, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (artisan_id) DO UPDATE SET
  active = EXCLUDED.active,
  jours_avant_premiere = EXCLUDED.jours_avant_premiere,
  jours_entre = EXCLUDED.jours_entre,
  max_relances = EXCLUDED.max_relances,
  heure_envoi = EXCLUDED.heure_envoi,
  jours_semaine = EXCLUDED.jours_semaine,
  updated_at = NOW()
RETURNING updated_at`,
		c.ArtisanID, c.Active, c.JoursAvantPremiere, c.JoursEntre, c.MaxRelances, c.HeureEnvoi, c.JoursSemaine).Scan(&c.UpdatedAt)
}

func (r *repository) ListConfigsActives(ctx context.Context) ([]Config, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+configColumns+` FROM relance_configs WHERE active = TRUE ORDER BY artisan_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Config
	for rows.Next() {
		var c Config
		if err := rows.Scan(&c.ArtisanID, &c.Active, &c.JoursAvantPremiere, &c.JoursEntre, &c.MaxRelances, &c.HeureEnvoi, &c.JoursSemaine, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
