package factures

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

var ErrNotFound = errors.New("factures: not found")

type Repository interface {
	Get(ctx context.Context, artisanID, id int64) (*Facture, error)
	List(ctx context.Context, req ListFacturesRequest) ([]Facture, int, error)
	Create(ctx context.Context, f *Facture) error
	Update(ctx context.Context, f *Facture) error
	Delete(ctx context.Context, artisanID, id int64) error
	ChangerStatut(ctx context.Context, artisanID, id int64, statut StatutFacture) error
	EnregistrerPaiement(ctx context.Context, artisanID, id int64, date time.Time, moyen string) error
	// ListNouveauxRetards spans all artisans: unpaid sent invoices whose
	// due date fell inside [depuis, jusqu). Used by the daily overdue scan.
	ListNouveauxRetards(ctx context.Context, depuis, jusqu time.Time) ([]Facture, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const factureColumns = `id, artisan_id, client_id, devis_id, contrat_id, numero, statut, objet, date_emission, date_echeance,
total_ht, total_tva, total_ttc, paiement_date, paiement_moyen, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, artisanID, id int64) (*Facture, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+factureColumns+` FROM factures WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	f, err := scanFacture(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLignes(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *repository) List(ctx context.Context, req ListFacturesRequest) ([]Facture, int, error) {
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM factures "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT "+factureColumns+" FROM factures %s ORDER BY date_emission DESC, id DESC LIMIT $%d OFFSET $%d", conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Facture
	for rows.Next() {
		f, err := scanFacture(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *f)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, f *Facture) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		numero, err := shared.NextDocumentNumber(ctx, tx, f.ArtisanID, "facture", "FAC", f.DateEmission.Year())
		if err != nil {
			return err
		}
		f.Numero = numero

		err = tx.QueryRow(ctx, `
INSERT INTO factures (artisan_id, client_id, devis_id, contrat_id, numero, statut, objet, objet_recherche, date_emission, date_echeance,
                      total_ht, total_tva, total_ttc, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
RETURNING id, created_at, updated_at`,
			f.ArtisanID, f.ClientID, f.DevisID, f.ContratID, f.Numero, f.Statut, f.Objet, shared.FoldSearch(f.Objet),
			f.DateEmission, f.DateEcheance, f.TotalHT, f.TotalTVA, f.TotalTTC, f.Notes).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return err
		}
		return r.insertLignes(ctx, tx, f)
	})
}

func (r *repository) Update(ctx context.Context, f *Facture) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE factures SET objet = $3, objet_recherche = $4, date_echeance = $5, total_ht = $6, total_tva = $7, total_ttc = $8, notes = $9, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`,
			f.ArtisanID, f.ID, f.Objet, shared.FoldSearch(f.Objet), f.DateEcheance, f.TotalHT, f.TotalTVA, f.TotalTTC, f.Notes)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM facture_lignes WHERE facture_id = $1`, f.ID); err != nil {
			return err
		}
		return r.insertLignes(ctx, tx, f)
	})
}

func (r *repository) insertLignes(ctx context.Context, tx pgx.Tx, f *Facture) error {
	for i := range f.Lignes {
		l := &f.Lignes[i]
		l.FactureID = f.ID
		l.Ordre = i + 1
		err := tx.QueryRow(ctx, `
INSERT INTO facture_lignes (facture_id, ordre, designation, quantite, unite, prix_unitaire, taux_tva, montant_ht)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`, l.FactureID, l.Ordre, l.Designation, l.Quantite, l.Unite, l.PrixUnitaire, l.TauxTVA, l.MontantHT).Scan(&l.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) loadLignes(ctx context.Context, f *Facture) error {
	rows, err := r.pool.Query(ctx, `
SELECT id, facture_id, ordre, designation, quantite, unite, prix_unitaire, taux_tva, montant_ht
FROM facture_lignes WHERE facture_id = $1 ORDER BY ordre`, f.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	f.Lignes = nil
	for rows.Next() {
		var l Ligne
		if err := rows.Scan(&l.ID, &l.FactureID, &l.Ordre, &l.Designation, &l.Quantite, &l.Unite, &l.PrixUnitaire, &l.TauxTVA, &l.MontantHT); err != nil {
			return err
		}
		f.Lignes = append(f.Lignes, l)
	}
	return rows.Err()
}

func (r *repository) Delete(ctx context.Context, artisanID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM factures WHERE artisan_id = $1 AND id = $2`, artisanID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ChangerStatut(ctx context.Context, artisanID, id int64, statut StatutFacture) error {
	tag, err := r.pool.Exec(ctx, `UPDATE factures SET statut = $3, updated_at = NOW() WHERE artisan_id = $1 AND id = $2`, artisanID, id, statut)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) EnregistrerPaiement(ctx context.Context, artisanID, id int64, date time.Time, moyen string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE factures SET statut = $3, paiement_date = $4, paiement_moyen = $5, updated_at = NOW()
WHERE artisan_id = $1 AND id = $2`, artisanID, id, StatutPayee, date, moyen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListNouveauxRetards(ctx context.Context, depuis, jusqu time.Time) ([]Facture, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+factureColumns+` FROM factures
WHERE statut = 'ENVOYEE'
  AND paiement_date IS NULL
  AND date_echeance >= $1
  AND date_echeance < $2
ORDER BY artisan_id, date_echeance`, depuis, jusqu)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Facture
	for rows.Next() {
		f, err := scanFacture(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	return result, rows.Err()
}

func scanFacture(row pgx.Row) (*Facture, error) {
	var f Facture
	err := row.Scan(&f.ID, &f.ArtisanID, &f.ClientID, &f.DevisID, &f.ContratID, &f.Numero, &f.Statut, &f.Objet, &f.DateEmission, &f.DateEcheance,
		&f.TotalHT, &f.TotalTVA, &f.TotalTTC, &f.PaiementDate, &f.PaiementMoyen, &f.Notes, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
