package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artisan-erp/artisan-erp/internal/shared"
)

// ErrNotFound indicates the client does not exist for the artisan.
var ErrNotFound = errors.New("clients: not found")

// Repository provides persistence for clients.
type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, c Client) (int64, error)
	Update(ctx context.Context, c Client) error
	Delete(ctx context.Context, artisanID, id int64) error
	CountReferences(ctx context.Context, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = `id, artisan_id, nom, entreprise, email, telephone, adresse, code_postal, ville, type, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	conditions := "WHERE artisan_id = $1"
	args := []any{req.ArtisanID}
	argPos := 2

	if req.Search != "" {
		conditions += fmt.Sprintf(" AND nom_recherche LIKE '%%' || $%d || '%%'", argPos)
		args = append(args, shared.FoldSearch(req.Search))
		argPos++
	}
	if req.Type != nil {
		conditions += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, *req.Type)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+clientColumns+" FROM clients %s ORDER BY nom, id LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO clients (artisan_id, nom, nom_recherche, entreprise, email, telephone, adresse, code_postal, ville, type, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
RETURNING id`,
		c.ArtisanID, c.Nom, shared.FoldSearch(c.Nom), c.Entreprise, c.Email, c.Telephone, c.Adresse, c.CodePostal, c.Ville, c.Type, c.Notes,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, c Client) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE clients SET nom = $3, nom_recherche = $4, entreprise = $5, email = $6, telephone = $7,
       adresse = $8, code_postal = $9, ville = $10, type = $11, notes = $12, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`,
		c.ArtisanID, c.ID, c.Nom, shared.FoldSearch(c.Nom), c.Entreprise, c.Email, c.Telephone, c.Adresse, c.CodePostal, c.Ville, c.Type, c.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountReferences(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT (SELECT COUNT(*) FROM devis WHERE client_id = $1)
     + (SELECT COUNT(*) FROM factures WHERE client_id = $1)
     + (SELECT COUNT(*) FROM chantiers WHERE client_id = $1)
     + (SELECT COUNT(*) FROM contrats WHERE client_id = $1)`, id).Scan(&count)
	return count, err
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.ArtisanID, &c.Nom, &c.Entreprise, &c.Email, &c.Telephone, &c.Adresse, &c.CodePostal, &c.Ville, &c.Type, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
