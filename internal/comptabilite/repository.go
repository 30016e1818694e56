package comptabilite

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("comptabilite: not found")

type Repository interface {
	// ListFacturesFinalisees returns sent and paid invoices issued in the
	// period; drafts and cancelled invoices never reach the books.
	ListFacturesFinalisees(ctx context.Context, artisanID int64, du, au time.Time) ([]FactureComptable, error)

	ListIntegrations(ctx context.Context, artisanID int64) ([]IntegrationComptable, error)
	GetIntegration(ctx context.Context, artisanID, id int64) (*IntegrationComptable, error)
	CreateIntegration(ctx context.Context, i *IntegrationComptable) error
	UpdateIntegration(ctx context.Context, i *IntegrationComptable) error
	DeleteIntegration(ctx context.Context, artisanID, id int64) error
	MarquerExport(ctx context.Context, artisanID int64, date time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListFacturesFinalisees(ctx context.Context, artisanID int64, du, au time.Time) ([]FactureComptable, error) {
	rows, err := r.pool.Query(ctx, `
SELECT f.id, f.numero, f.objet, c.nom, f.date_emission, f.total_ht, f.total_tva, f.total_ttc, f.paiement_date
FROM factures f
JOIN clients c ON c.id = f.client_id
WHERE f.artisan_id = $1
  AND f.statut IN ('ENVOYEE', 'PAYEE')
  AND f.date_emission >= $2
  AND f.date_emission < $3
ORDER BY f.date_emission, f.numero`, artisanID, du, au)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []FactureComptable
	for rows.Next() {
		var f FactureComptable
		if err := rows.Scan(&f.ID, &f.Numero, &f.Objet, &f.ClientNom, &f.DateEmission, &f.TotalHT, &f.TotalTVA, &f.TotalTTC, &f.PaiementDate); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

const integrationColumns = `id, artisan_id, logiciel, email_cabinet, actif, dernier_export, created_at, updated_at`

func (r *repository) ListIntegrations(ctx context.Context, artisanID int64) ([]IntegrationComptable, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+integrationColumns+` FROM integrations_comptables WHERE artisan_id = $1 ORDER BY id`, artisanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []IntegrationComptable
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *i)
	}
	return result, rows.Err()
}

func (r *repository) GetIntegration(ctx context.Context, artisanID, id int64) (*IntegrationComptable, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+integrationColumns+` FROM integrations_comptables WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	i, err := scanIntegration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (r *repository) CreateIntegration(ctx context.Context, i *IntegrationComptable) error {
	return r.pool.QueryRow(ctx, `
INSERT INTO integrations_comptables (artisan_id, logiciel, email_cabinet, actif, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING id, created_at, updated_at`,
		i.ArtisanID, i.Logiciel, i.EmailCabinet, i.Actif).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

func (r *repository) UpdateIntegration(ctx context.Context, i *IntegrationComptable) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE integrations_comptables SET logiciel = $3, email_cabinet = $4, actif = $5, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`,
		i.ArtisanID, i.ID, i.Logiciel, i.EmailCabinet, i.Actif)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteIntegration(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM integrations_comptables WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarquerExport(ctx context.Context, artisanID int64, date time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE integrations_comptables SET dernier_export = $2, updated_at = NOW() WHERE artisan_id = $1`, artisanID, date)
	return err
}

func scanIntegration(row pgx.Row) (*IntegrationComptable, error) {
	var i IntegrationComptable
	err := row.Scan(&i.ID, &i.ArtisanID, &i.Logiciel, &i.EmailCabinet, &i.Actif, &i.DernierExport, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
