package interventions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("interventions: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Intervention, error)
	List(ctx context.Context, req ListInterventionsRequest) ([]Intervention, int, error)
	ListEntre(ctx context.Context, artisanID int64, du, au time.Time) ([]Intervention, error)
	Create(ctx context.Context, iv Intervention) (int64, error)
	Update(ctx context.Context, iv Intervention) error
	Delete(ctx context.Context, artisanID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const interventionColumns = `id, artisan_id, client_id, chantier_id, technicien_id, titre, description, statut, date_debut, date_fin, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Intervention, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+interventionColumns+` FROM interventions WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	iv, err := scanIntervention(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return iv, nil
}

func (r *repository) List(ctx context.Context, req ListInterventionsRequest) ([]Intervention, int, error) {
	conditions := "WHERE artisan_id = $1"
	args := []any{req.ArtisanID}
	argPos := 2

	if req.ChantierID != nil {
		conditions += fmt.Sprintf(" AND chantier_id = $%d", argPos)
		args = append(args, *req.ChantierID)
		argPos++
	}
	if req.TechnicienID != nil {
		conditions += fmt.Sprintf(" AND technicien_id = $%d", argPos)
		args = append(args, *req.TechnicienID)
		argPos++
	}
	if req.Statut != nil {
		conditions += fmt.Sprintf(" AND statut = $%d", argPos)
		args = append(args, *req.Statut)
		argPos++
	}
	if req.Du != nil {
		conditions += fmt.Sprintf(" AND date_fin >= $%d", argPos)
		args = append(args, *req.Du)
		argPos++
	}
	if req.Au != nil {
		conditions += fmt.Sprintf(" AND date_debut <= $%d", argPos)
		args = append(args, *req.Au)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM interventions "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+interventionColumns+" FROM interventions %s ORDER BY date_debut LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Intervention
	for rows.Next() {
		iv, err := scanIntervention(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *iv)
	}
	return result, total, rows.Err()
}

// ListEntre returns every intervention overlapping the [du, au] window.
func (r *repository) ListEntre(ctx context.Context, artisanID int64, du, au time.Time) ([]Intervention, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+interventionColumns+` FROM interventions
WHERE artisan_id = $1 AND date_debut <= $3 AND date_fin >= $2
ORDER BY date_debut`, artisanID, du, au)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Intervention
	for rows.Next() {
		iv, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *iv)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, iv Intervention) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO interventions (artisan_id, client_id, chantier_id, technicien_id, titre, description, statut, date_debut, date_fin, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
RETURNING id`, iv.ArtisanID, iv.ClientID, iv.ChantierID, iv.TechnicienID, iv.Titre, iv.Description, iv.Statut, iv.DateDebut, iv.DateFin).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, iv Intervention) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE interventions SET client_id = $3, chantier_id = $4, technicien_id = $5, titre = $6, description = $7, statut = $8, date_debut = $9, date_fin = $10, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, iv.ArtisanID, iv.ID, iv.ClientID, iv.ChantierID, iv.TechnicienID, iv.Titre, iv.Description, iv.Statut, iv.DateDebut, iv.DateFin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM interventions WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIntervention(row pgx.Row) (*Intervention, error) {
	var iv Intervention
	err := row.Scan(&iv.ID, &iv.ArtisanID, &iv.ClientID, &iv.ChantierID, &iv.TechnicienID, &iv.Titre, &iv.Description, &iv.Statut, &iv.DateDebut, &iv.DateFin, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}
