package rapports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artisan-erp/artisan-erp/internal/platform/db"
)

var ErrNotFound = errors.New("rapports: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Rapport, error)
	ListByIntervention(ctx context.Context, artisanID, interventionID int64) ([]Rapport, error)
	ListByChantier(ctx context.Context, artisanID, chantierID int64) ([]Rapport, error)
	Create(ctx context.Context, rap *Rapport) error
	Update(ctx context.Context, rap *Rapport) error
	Delete(ctx context.Context, artisanID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const rapportColumns = `id, artisan_id, intervention_id, chantier_id, contenu, photos, signature_client, signataire_nom, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Rapport, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+rapportColumns+` FROM rapports WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	rap, err := scanRapport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadMateriaux(ctx, rap); err != nil {
		return nil, err
	}
	return rap, nil
}

func (r *repository) ListByIntervention(ctx context.Context, artisanID, interventionID int64) ([]Rapport, error) {
	return r.list(ctx, `SELECT `+rapportColumns+` FROM rapports WHERE artisan_id = $1 AND intervention_id = $2 ORDER BY created_at DESC`, artisanID, interventionID)
}

func (r *repository) ListByChantier(ctx context.Context, artisanID, chantierID int64) ([]Rapport, error) {
	return r.list(ctx, `SELECT `+rapportColumns+` FROM rapports WHERE artisan_id = $1 AND chantier_id = $2 ORDER BY created_at DESC`, artisanID, chantierID)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Rapport, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Rapport
	for rows.Next() {
		rap, err := scanRapport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadMateriaux(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *repository) Create(ctx context.Context, rap *Rapport) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
INSERT INTO rapports (artisan_id, intervention_id, chantier_id, contenu, photos, signature_client, signataire_nom, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
RETURNING id, created_at, updated_at`,
			rap.ArtisanID, rap.InterventionID, rap.ChantierID, rap.Contenu, rap.Photos, rap.SignatureClient, rap.SignataireNom).
			Scan(&rap.ID, &rap.CreatedAt, &rap.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range rap.Materiaux {
			m := &rap.Materiaux[i]
			m.RapportID = rap.ID
			err := tx.QueryRow(ctx, `
INSERT INTO rapport_materiaux (rapport_id, article_id, designation, quantite)
VALUES ($1, $2, $3, $4) RETURNING id`, m.RapportID, m.ArticleID, m.Designation, m.Quantite).Scan(&m.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Update(ctx context.Context, rap *Rapport) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE rapports SET contenu = $3, photos = $4, signature_client = $5, signataire_nom = $6, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, rap.ArtisanID, rap.ID, rap.Contenu, rap.Photos, rap.SignatureClient, rap.SignataireNom)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rapports WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) loadMateriaux(ctx context.Context, rap *Rapport) error {
	rows, err := r.pool.Query(ctx, `
SELECT id, rapport_id, article_id, designation, quantite
FROM rapport_materiaux WHERE rapport_id = $1 ORDER BY id`, rap.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	rap.Materiaux = nil
	for rows.Next() {
		var m Materiau
		if err := rows.Scan(&m.ID, &m.RapportID, &m.ArticleID, &m.Designation, &m.Quantite); err != nil {
			return err
		}
		rap.Materiaux = append(rap.Materiaux, m)
	}
	return rows.Err()
}

func scanRapport(row pgx.Row) (*Rapport, error) {
	var rap Rapport
	err := row.Scan(&rap.ID, &rap.ArtisanID, &rap.InterventionID, &rap.ChantierID, &rap.Contenu, &rap.Photos, &rap.SignatureClient, &rap.SignataireNom, &rap.CreatedAt, &rap.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rap, nil
}
