package contrats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("contrats: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Contrat, error)
	List(ctx context.Context, req ListContratsRequest) ([]Contrat, int, error)
	// ListEchus spans all artisans: the billing job runs once for the whole
	// instance.
	ListEchus(ctx context.Context, date time.Time) ([]Contrat, error)
	Create(ctx context.Context, c *Contrat) error
	Update(ctx context.Context, c *Contrat) error
	Delete(ctx context.Context, artisanID, id int64) error
	AvancerFacturation(ctx context.Context, id int64, prochaine time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const contratColumns = `id, artisan_id, client_id, libelle, description, montant_ht, taux_tva, periodicite,
date_debut, date_fin, prochaine_facturation, actif, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Contrat, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contratColumns+` FROM contrats WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	c, err := scanContrat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, req ListContratsRequest) ([]Contrat, int, error) {
	conditions := "WHERE artisan_id = $1"
	args := []any{req.ArtisanID}
	argPos := 2

	if req.ClientID != nil {
		conditions += fmt.Sprintf(" AND client_id = $%d", argPos)
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Actif != nil {
		conditions += fmt.Sprintf(" AND actif = $%d", argPos)
		args = append(args, *req.Actif)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contrats "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+contratColumns+" FROM contrats %s ORDER BY libelle, id LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Contrat
	for rows.Next() {
		c, err := scanContrat(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *repository) ListEchus(ctx context.Context, date time.Time) ([]Contrat, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+contratColumns+` FROM contrats
WHERE actif = TRUE
  AND prochaine_facturation <= $1
  AND (date_fin IS NULL OR date_fin >= $1)
ORDER BY artisan_id, id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Contrat
	for rows.Next() {
		c, err := scanContrat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, c *Contrat) error {
	return r.pool.QueryRow(ctx, `
INSERT INTO contrats (artisan_id, client_id, libelle, description, montant_ht, taux_tva, periodicite,
                      date_debut, date_fin, prochaine_facturation, actif, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
RETURNING id, created_at, updated_at`,
		c.ArtisanID, c.ClientID, c.Libelle, c.Description, c.MontantHT, c.TauxTVA, c.Periodicite,
		c.DateDebut, c.DateFin, c.ProchaineFacturation, c.Actif).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repository) Update(ctx context.Context, c *Contrat) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE contrats SET libelle = $3, description = $4, montant_ht = $5, taux_tva = $6, periodicite = $7,
                    date_fin = $8, actif = $9, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`,
		c.ArtisanID, c.ID, c.Libelle, c.Description, c.MontantHT, c.TauxTVA, c.Periodicite, c.DateFin, c.Actif)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contrats WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AvancerFacturation(ctx context.Context, id int64, prochaine time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contrats SET prochaine_facturation = $2, updated_at = NOW() WHERE id = $1`, id, prochaine)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContrat(row pgx.Row) (*Contrat, error) {
	var c Contrat
	err := row.Scan(&c.ID, &c.ArtisanID, &c.ClientID, &c.Libelle, &c.Description, &c.MontantHT, &c.TauxTVA, &c.Periodicite,
		&c.DateDebut, &c.DateFin, &c.ProchaineFacturation, &c.Actif, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
