package shared

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// NextDocumentNumber reserves the next number for a document type within the
// artisan's yearly sequence and formats it as PREFIX-YYYY-NNNN. The upsert
// runs inside the caller's transaction so a rolled-back document does not
// burn a number across concurrent requests of the same artisan.
func NextDocumentNumber(ctx context.Context, tx pgx.Tx, artisanID int64, docType, prefix string, year int) (string, error) {
	var compteur int
	err := tx.QueryRow(ctx, `
INSERT INTO document_sequences (artisan_id, doc_type, annee, compteur)
VALUES ($1, $2, $3, 1)
ON CONFLICT (artisan_id, doc_type, annee)
DO UPDATE SET compteur = document_sequences.compteur + 1
RETURNING compteur`, artisanID, docType, year).Scan(&compteur)
	if err != nil {
		return "", fmt.Errorf("séquence %s: %w", docType, err)
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, compteur), nil
}
