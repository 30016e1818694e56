package fournisseurs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artisan-erp/artisan-erp/internal/shared"
)

var ErrNotFound = errors.New("fournisseurs: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Fournisseur, error)
	List(ctx context.Context, artisanID int64, search string, limit, offset int) ([]Fournisseur, int, error)
	Create(ctx context.Context, f Fournisseur) (int64, error)
	Update(ctx context.Context, f Fournisseur) error
	Delete(ctx context.Context, artisanID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const fournisseurColumns = `id, artisan_id, nom, contact, email, telephone, adresse, siret, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Fournisseur, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fournisseurColumns+` FROM fournisseurs WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	f, err := scanFournisseur(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *repository) List(ctx context.Context, artisanID int64, search string, limit, offset int) ([]Fournisseur, int, error) {
	conditions := "WHERE artisan_id = $1"
	args := []any{artisanID}
	argPos := 2
	if search != "" {
		conditions += fmt.Sprintf(" AND nom_recherche LIKE '%%' || $%d || '%%'", argPos)
		args = append(args, shared.FoldSearch(search))
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM fournisseurs "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+fournisseurColumns+" FROM fournisseurs %s ORDER BY nom LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Fournisseur
	for rows.Next() {
		f, err := scanFournisseur(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *f)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, f Fournisseur) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO fournisseurs (artisan_id, nom, nom_recherche, contact, email, telephone, adresse, siret, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
RETURNING id`, f.ArtisanID, f.Nom, shared.FoldSearch(f.Nom), f.Contact, f.Email, f.Telephone, f.Adresse, f.Siret, f.Notes).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, f Fournisseur) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE fournisseurs SET nom = $3, nom_recherche = $4, contact = $5, email = $6, telephone = $7, adresse = $8, siret = $9, notes = $10, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, f.ArtisanID, f.ID, f.Nom, shared.FoldSearch(f.Nom), f.Contact, f.Email, f.Telephone, f.Adresse, f.Siret, f.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fournisseurs WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFournisseur(row pgx.Row) (*Fournisseur, error) {
	var f Fournisseur
	err := row.Scan(&f.ID, &f.ArtisanID, &f.Nom, &f.Contact, &f.Email, &f.Telephone, &f.Adresse, &f.Siret, &f.Notes, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
