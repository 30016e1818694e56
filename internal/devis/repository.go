package devis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artisan-erp/artisan-erp/internal/platform/db"
	"github.com/artisan-erp/artisan-erp/internal/shared"
)

var ErrNotFound = errors.New("devis: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Devis, error)
	List(ctx context.Context, req ListDevisRequest) ([]Devis, int, error)
	Create(ctx context.Context, d *Devis) error
	Update(ctx context.Context, d *Devis) error
	Delete(ctx context.Context, artisanID, id int64) error
	MarquerEnvoye(ctx context.Context, artisanID, id int64, quand time.Time) error
	MarquerSigne(ctx context.Context, artisanID, id int64, signataire string, quand time.Time) error
	ChangerStatut(ctx context.Context, artisanID, id int64, statut StatutDevis) error
	ListNonSignes(ctx context.Context, artisanID int64, envoyeAvant time.Time) ([]Devis, error)
	EnregistrerRelance(ctx context.Context, artisanID, id int64, message *string, automatique bool, quand time.Time) error
	ListRelances(ctx context.Context, artisanID, id int64) ([]Relance, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const devisColumns = `id, artisan_id, client_id, numero, statut, objet, date_emission, date_validite, date_envoi,
total_ht, total_tva, total_ttc, signataire_nom, date_signature, derniere_relance, nb_relances, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Devis, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+devisColumns+` FROM devis WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	d, err := scanDevis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLignes(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) List(ctx context.Context, req ListDevisRequest) ([]Devis, int, error) {
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
		conditions += fmt.Sprintf(" AND (LOWER(numero) LIKE '%%' || $%d || '%%' OR objet_recherche LIKE '%%' || $%d || '%%')", argPos, argPos)
		args = append(args, shared.FoldSearch(req.Search))
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM devis "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+devisColumns+" FROM devis %s ORDER BY date_emission DESC, id DESC LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Devis
	for rows.Next() {
		d, err := scanDevis(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *d)
	}
	return result, total, rows.Err()
}

// Create inserts the quote and its lines in one transaction, reserving the
// next number of the artisan's DEV sequence for the emission year.
func (r *repository) Create(ctx context.Context, d *Devis) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		numero, err := shared.NextDocumentNumber(ctx, tx, d.ArtisanID, "devis", "DEV", d.DateEmission.Year())
		if err != nil {
			return err
		}
		d.Numero = numero

		err = tx.QueryRow(ctx, `
INSERT INTO devis (artisan_id, client_id, numero, statut, objet, objet_recherche, date_emission, date_validite,
                   total_ht, total_tva, total_ttc, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
RETURNING id, created_at, updated_at`,
			d.ArtisanID, d.ClientID, d.Numero, d.Statut, d.Objet, shared.FoldSearch(d.Objet), d.DateEmission, d.DateValidite,
			d.TotalHT, d.TotalTVA, d.TotalTTC, d.Notes).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return err
		}
		return r.insertLignes(ctx, tx, d)
	})
}

// Update rewrites the quote header and replaces all lines.
func (r *repository) Update(ctx context.Context, d *Devis) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE devis SET objet = $3, objet_recherche = $4, date_validite = $5, total_ht = $6, total_tva = $7, total_ttc = $8, notes = $9, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`,
			d.ArtisanID, d.ID, d.Objet, shared.FoldSearch(d.Objet), d.DateValidite, d.TotalHT, d.TotalTVA, d.TotalTTC, d.Notes)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM devis_lignes WHERE devis_id = $1`, d.ID); err != nil {
			return err
		}
		return r.insertLignes(ctx, tx, d)
	})
}

func (r *repository) insertLignes(ctx context.Context, tx pgx.Tx, d *Devis) error {
	for i := range d.Lignes {
		l := &d.Lignes[i]
		l.DevisID = d.ID
		l.Ordre = i + 1
		err := tx.QueryRow(ctx, `
INSERT INTO devis_lignes (devis_id, ordre, designation, quantite, unite, prix_unitaire, taux_tva, montant_ht, article_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`, l.DevisID, l.Ordre, l.Designation, l.Quantite, l.Unite, l.PrixUnitaire, l.TauxTVA, l.MontantHT, l.ArticleID).Scan(&l.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) loadLignes(ctx context.Context, d *Devis) error {
	rows, err := r.pool.Query(ctx, `
SELECT id, devis_id, ordre, designation, quantite, unite, prix_unitaire, taux_tva, montant_ht, article_id
FROM devis_lignes WHERE devis_id = $1 ORDER BY ordre`, d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	d.Lignes = nil
	for rows.Next() {
		var l Ligne
		if err := rows.Scan(&l.ID, &l.DevisID, &l.Ordre, &l.Designation, &l.Quantite, &l.Unite, &l.PrixUnitaire, &l.TauxTVA, &l.MontantHT, &l.ArticleID); err != nil {
			return err
		}
		d.Lignes = append(d.Lignes, l)
	}
	return rows.Err()
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM devis WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarquerEnvoye(ctx context.Context, artisanID, id int64, quand time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE devis SET statut = $3, date_envoi = $4, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, artisanID, id, StatutEnvoye, quand)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarquerSigne(ctx context.Context, artisanID, id int64, signataire string, quand time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE devis SET statut = $3, signataire_nom = $4, date_signature = $5, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2 AND date_signature IS NULL`, artisanID, id, StatutAccepte, signataire, quand)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ChangerStatut(ctx context.Context, artisanID, id int64, statut StatutDevis) error {
	tag, err := r.pool.Exec(ctx, `UPDATE devis SET statut = $3, updated_at = NOW() WHERE artisan_id = $1 AND id = $2`, artisanID, id, statut)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListNonSignes returns sent, unsigned, still-valid quotes whose send date is
// older than the given cutoff.
func (r *repository) ListNonSignes(ctx context.Context, artisanID int64, envoyeAvant time.Time) ([]Devis, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+devisColumns+` FROM devis
WHERE artisan_id = $1 AND statut = $2 AND date_signature IS NULL AND date_envoi <= $3 AND date_validite >= NOW()
ORDER BY date_envoi`, artisanID, StatutEnvoye, envoyeAvant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Devis
	for rows.Next() {
		d, err := scanDevis(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *repository) EnregistrerRelance(ctx context.Context, artisanID, id int64, message *string, automatique bool, quand time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE devis SET derniere_relance = $3, nb_relances = nb_relances + 1, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, artisanID, id, quand)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, `
INSERT INTO devis_relances (devis_id, message, automatique, created_at) VALUES ($1, $2, $3, $4)`, id, message, automatique, quand)
		return err
	})
}

func (r *repository) ListRelances(ctx context.Context, artisanID, id int64) ([]Relance, error) {
	rows, err := r.pool.Query(ctx, `
SELECT dr.id, dr.devis_id, dr.message, dr.automatique, dr.created_at
FROM devis_relances dr
JOIN devis d ON d.id = dr.devis_id
WHERE d.artisan_id = $1 AND dr.devis_id = $2
ORDER BY dr.created_at DESC`, artisanID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Relance
	for rows.Next() {
		var rel Relance
		if err := rows.Scan(&rel.ID, &rel.DevisID, &rel.Message, &rel.Automatique, &rel.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rel)
	}
	return result, rows.Err()
}

func scanDevis(row pgx.Row) (*Devis, error) {
	var d Devis
	err := row.Scan(&d.ID, &d.ArtisanID, &d.ClientID, &d.Numero, &d.Statut, &d.Objet, &d.DateEmission, &d.DateValidite, &d.DateEnvoi,
		&d.TotalHT, &d.TotalTVA, &d.TotalTTC, &d.SignataireNom, &d.DateSignature, &d.DerniereRelance, &d.NbRelances, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
