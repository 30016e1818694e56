package chantiers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artisan-erp/artisan-erp/internal/shared"
)

var ErrNotFound = errors.New("chantiers: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Chantier, error)
	List(ctx context.Context, req ListChantiersRequest) ([]Chantier, int, error)
	Create(ctx context.Context, c Chantier) (int64, error)
	Update(ctx context.Context, c Chantier) error
	Delete(ctx context.Context, artisanID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const chantierColumns = `id, artisan_id, client_id, nom, adresse, statut, budget, date_debut, date_fin, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Chantier, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+chantierColumns+` FROM chantiers WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	c, err := scanChantier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, req ListChantiersRequest) ([]Chantier, int, error) {
	conditions := "WHERE artisan_id = $1"
	args := []any{req.ArtisanID}
	argPos := 2

	if req.ClientID != nil {
		conditions += fmt.Sprintf(" AND client_id = $%d", argPos)
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Statut != nil {
		conditions += fmt.Sprintf(" AND statut = $%d", argPos)
		args = append(args, *req.Statut)
		argPos++
	}
	if req.Search != "" {
		conditions += fmt.Sprintf(" AND nom_recherche LIKE '%%' || $%d || '%%'", argPos)
		args = append(args, shared.FoldSearch(req.Search))
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM chantiers "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+chantierColumns+" FROM chantiers %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Chantier
	for rows.Next() {
		c, err := scanChantier(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Chantier) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO chantiers (artisan_id, client_id, nom, nom_recherche, adresse, statut, budget, date_debut, date_fin, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING id`, c.ArtisanID, c.ClientID, c.Nom, shared.FoldSearch(c.Nom), c.Adresse, c.Statut, c.Budget, c.DateDebut, c.DateFin, c.Notes).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, c Chantier) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE chantiers SET nom = $3, nom_recherche = $4, adresse = $5, statut = $6, budget = $7, date_debut = $8, date_fin = $9, notes = $10, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, c.ArtisanID, c.ID, c.Nom, shared.FoldSearch(c.Nom), c.Adresse, c.Statut, c.Budget, c.DateDebut, c.DateFin, c.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chantiers WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanChantier(row pgx.Row) (*Chantier, error) {
	var c Chantier
	err := row.Scan(&c.ID, &c.ArtisanID, &c.ClientID, &c.Nom, &c.Adresse, &c.Statut, &c.Budget, &c.DateDebut, &c.DateFin, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
