package stocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artisan-erp/artisan-erp/internal/shared"
)

var (
	ErrNotFound           = errors.New("stocks: article not found")
	ErrDuplicateReference = errors.New("stocks: reference already in use")
)

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Article, error)
	GetByReference(ctx context.Context, artisanID int64, reference string) (*Article, error)
	List(ctx context.Context, artisanID int64, search string, limit, offset int) ([]Article, int, error)
	ListEnAlerte(ctx context.Context, artisanID int64) ([]Article, error)
	ListAll(ctx context.Context, artisanID int64) ([]Article, error)
	Create(ctx context.Context, a Article) (int64, error)
	Update(ctx context.Context, a Article) error
	Delete(ctx context.Context, artisanID, id int64) error
	AdjustQuantite(ctx context.Context, artisanID, id int64, delta float64) (float64, error)
	SetQuantite(ctx context.Context, artisanID, id int64, quantite float64) error
	RecordMouvement(ctx context.Context, m Mouvement) error
	ListMouvements(ctx context.Context, artisanID, articleID int64, limit int) ([]Mouvement, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const articleColumns = `id, artisan_id, reference, designation, categorie, metier, unite, prix_achat, prix_vente, taux_tva, fournisseur_id, suivi_stock, quantite, seuil_alerte, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	return scanArticleErr(row)
}

func (r *repository) GetByReference(ctx context.Context, artisanID int64, reference string) (*Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE artisan_id = $1 AND reference = $2`, artisanID, reference)
	return scanArticleErr(row)
}

func (r *repository) List(ctx context.Context, artisanID int64, search string, limit, offset int) ([]Article, int, error) {
	conditions := "WHERE artisan_id = $1"
	args := []any{artisanID}
	argPos := 2
	if search != "" {
		conditions += fmt.Sprintf(" AND (designation_recherche LIKE '%%' || $%d || '%%' OR LOWER(reference) LIKE '%%' || $%d || '%%')", argPos, argPos)
		args = append(args, shared.FoldSearch(search))
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM articles "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+articleColumns+" FROM articles %s ORDER BY reference LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := collectArticles(rows)
	return list, total, err
}

func (r *repository) ListEnAlerte(ctx context.Context, artisanID int64) ([]Article, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+articleColumns+` FROM articles
WHERE artisan_id = $1 AND suivi_stock AND quantite <= seuil_alerte ORDER BY reference`, artisanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectArticles(rows)
}

func (r *repository) ListAll(ctx context.Context, artisanID int64) ([]Article, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+articleColumns+` FROM articles WHERE artisan_id = $1 ORDER BY reference`, artisanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectArticles(rows)
}

func (r *repository) Create(ctx context.Context, a Article) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO articles (artisan_id, reference, designation, designation_recherche, categorie, metier, unite, prix_achat, prix_vente, taux_tva, fournisseur_id, suivi_stock, quantite, seuil_alerte, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
RETURNING id`, a.ArtisanID, a.Reference, a.Designation, shared.FoldSearch(a.Designation), a.Categorie, a.Metier, a.Unite, a.PrixAchat, a.PrixVente, a.TauxTVA, a.FournisseurID, a.SuiviStock, a.Quantite, a.SeuilAlerte).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateReference
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, a Article) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE articles SET reference = $3, designation = $4, designation_recherche = $5, categorie = $6, metier = $7, unite = $8, prix_achat = $9, prix_vente = $10, taux_tva = $11, fournisseur_id = $12, suivi_stock = $13, seuil_alerte = $14, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, a.ArtisanID, a.ID, a.Reference, a.Designation, shared.FoldSearch(a.Designation), a.Categorie, a.Metier, a.Unite, a.PrixAchat, a.PrixVente, a.TauxTVA, a.FournisseurID, a.SuiviStock, a.SeuilAlerte)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQuantite applies a delta atomically and returns the resulting quantity.
func (r *repository) AdjustQuantite(ctx context.Context, artisanID, id int64, delta float64) (float64, error) {
	var apres float64
	err := r.pool.QueryRow(ctx, `
UPDATE articles SET quantite = quantite + $3, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2
RETURNING quantite`, artisanID, id, delta).Scan(&apres)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return apres, err
}

func (r *repository) SetQuantite(ctx context.Context, artisanID, id int64, quantite float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE articles SET quantite = $3, updated_at = NOW() WHERE artisan_id = $1 AND id = $2`, artisanID, id, quantite)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) RecordMouvement(ctx context.Context, m Mouvement) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO stock_mouvements (artisan_id, article_id, type, quantite, quantite_apres, motif, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())`, m.ArtisanID, m.ArticleID, m.Type, m.Quantite, m.QuantiteApres, m.Motif)
	return err
}

func (r *repository) ListMouvements(ctx context.Context, artisanID, articleID int64, limit int) ([]Mouvement, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, artisan_id, article_id, type, quantite, quantite_apres, motif, created_at
FROM stock_mouvements WHERE artisan_id = $1 AND article_id = $2
ORDER BY created_at DESC LIMIT $3`, artisanID, articleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Mouvement
	for rows.Next() {
		var m Mouvement
		if err := rows.Scan(&m.ID, &m.ArtisanID, &m.ArticleID, &m.Type, &m.Quantite, &m.QuantiteApres, &m.Motif, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanArticleErr(row pgx.Row) (*Article, error) {
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.ArtisanID, &a.Reference, &a.Designation, &a.Categorie, &a.Metier, &a.Unite, &a.PrixAchat, &a.PrixVente, &a.TauxTVA,
		&a.FournisseurID, &a.SuiviStock, &a.Quantite, &a.SeuilAlerte, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectArticles(rows pgx.Rows) ([]Article, error) {
	var result []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}
