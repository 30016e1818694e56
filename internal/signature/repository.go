package signature

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, token string) (*Token, error)
	FindActif(ctx context.Context, devisID int64, now time.Time) (*Token, error)
	Create(ctx context.Context, t Token) error
	AvancerEtape(ctx context.Context, token string, etape Etape, signataire, telephone *string) error
	Consommer(ctx context.Context, token string, preuve Preuve) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const tokenColumns = `token, artisan_id, devis_id, etape, signataire, telephone, signataire_email, expires_at, consumed_at, created_at`

func (r *repository) Get(ctx context.Context, token string) (*Token, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tokenColumns+` FROM signature_tokens WHERE token = $1`, token)
	t, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLienInconnu
		}
		return nil, err
	}
	return t, nil
}

// FindActif returns the newest unconsumed, unexpired link for a quote.
func (r *repository) FindActif(ctx context.Context, devisID int64, now time.Time) (*Token, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+tokenColumns+` FROM signature_tokens
WHERE devis_id = $1 AND consumed_at IS NULL AND expires_at > $2
ORDER BY created_at DESC LIMIT 1`, devisID, now)
	t, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLienInconnu
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) Create(ctx context.Context, t Token) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO signature_tokens (token, artisan_id, devis_id, etape, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())`, t.Token, t.ArtisanID, t.DevisID, t.Etape, t.ExpiresAt)
	return err
}

func (r *repository) AvancerEtape(ctx context.Context, token string, etape Etape, signataire, telephone *string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE signature_tokens
SET etape = $2, signataire = COALESCE($3, signataire), telephone = COALESCE($4, telephone)
WHERE token = $1`, token, etape, signataire, telephone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLienInconnu
	}
	return nil
}

// Consommer marks the link used exactly once and stores the signature proof;
// a second call finds no row.
func (r *repository) Consommer(ctx context.Context, token string, preuve Preuve) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE signature_tokens
SET etape = $2, consumed_at = $3, signataire_email = $4, signature_image = $5, signature_ip = $6
WHERE token = $1 AND consumed_at IS NULL`, token, EtapeTerminee, preuve.Quand, preuve.Email, preuve.Image, preuve.IP)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDejaSigne
	}
	return nil
}

func scanToken(row pgx.Row) (*Token, error) {
	var t Token
	err := row.Scan(&t.Token, &t.ArtisanID, &t.DevisID, &t.Etape, &t.Signataire, &t.Telephone, &t.Email, &t.ExpiresAt, &t.ConsumedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
