package techniciens

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("techniciens: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Technicien, error)
	List(ctx context.Context, artisanID int64, actifsSeulement bool) ([]Technicien, error)
	Create(ctx context.Context, t Technicien) (int64, error)
	Update(ctx context.Context, t Technicien) error
	Delete(ctx context.Context, artisanID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const technicienColumns = `id, artisan_id, nom, telephone, email, couleur, actif, created_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Technicien, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+technicienColumns+` FROM techniciens WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	t, err := scanTechnicien(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) List(ctx context.Context, artisanID int64, actifsSeulement bool) ([]Technicien, error) {
	query := `SELECT ` + technicienColumns + ` FROM techniciens WHERE artisan_id = $1`
	if actifsSeulement {
		query += ` AND actif`
	}
	query += ` ORDER BY nom`
	rows, err := r.pool.Query(ctx, query, artisanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Technicien
	for rows.Next() {
		t, err := scanTechnicien(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, t Technicien) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO techniciens (artisan_id, nom, telephone, email, couleur, actif, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING id`, t.ArtisanID, t.Nom, t.Telephone, t.Email, t.Couleur, t.Actif).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, t Technicien) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE techniciens SET nom = $3, telephone = $4, email = $5, couleur = $6, actif = $7
WHERE artisan_id = $1 AND id = $2`, t.ArtisanID, t.ID, t.Nom, t.Telephone, t.Email, t.Couleur, t.Actif)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM techniciens WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTechnicien(row pgx.Row) (*Technicien, error) {
	var t Technicien
	if err := row.Scan(&t.ID, &t.ArtisanID, &t.Nom, &t.Telephone, &t.Email, &t.Couleur, &t.Actif, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
