package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artisan-erp/artisan-erp/internal/shared"
)

// Repository provides persistence for artisan accounts and session rows.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Artisan, error)
	FindByID(ctx context.Context, id int64) (*Artisan, error)
	CreateSession(ctx context.Context, id string, artisanID int64, expiresAt time.Time, ip, userAgent string) error
	DeleteSession(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const artisanColumns = `id, entreprise, nom, email, telephone, siret, metier, password_hash, is_active, created_at`

func (r *repository) FindByEmail(ctx context.Context, email string) (*Artisan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+artisanColumns+` FROM artisans WHERE lower(email) = lower($1)`, email)
	return scanArtisan(row)
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Artisan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+artisanColumns+` FROM artisans WHERE id = $1`, id)
	return scanArtisan(row)
}

func (r *repository) CreateSession(ctx context.Context, id string, artisanID int64, expiresAt time.Time, ip, userAgent string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO sessions (id, artisan_id, expires_at, ip, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		id, artisanID, expiresAt, ip, userAgent)
	return err
}

func (r *repository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func scanArtisan(row pgx.Row) (*Artisan, error) {
	var a Artisan
	var telephone, siret, metier *string
	err := row.Scan(&a.ID, &a.Entreprise, &a.Nom, &a.Email, &telephone, &siret, &metier, &a.PasswordHash, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if telephone != nil {
		a.Telephone = *telephone
	}
	if siret != nil {
		a.Siret = *siret
	}
	if metier != nil {
		a.Metier = *metier
	}
	return &a, nil
}
