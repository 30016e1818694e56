package comptabilite

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

const utf8BOM = "\ufeff"

// BuildJournalVentesCSV produit le journal des ventes au format attendu par
// les tableurs français : point-virgule, BOM UTF-8, fins de ligne CRLF.
func BuildJournalVentesCSV(factures []FactureComptable) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true

	header := []string{"Date", "Numéro", "Client", "Objet", "Total HT", "Total TVA", "Total TTC", "Statut", "Date de paiement"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, f := range factures {
		statut := "Envoyée"
		paiement := ""
		if f.PaiementDate != nil {
			statut = "Payée"
			paiement = f.PaiementDate.Format("02/01/2006")
		}
		record := []string{
			f.DateEmission.Format("02/01/2006"),
			f.Numero,
			f.ClientNom,
			f.Objet,
			montantCSV(f.TotalHT),
			montantCSV(f.TotalTVA),
			montantCSV(f.TotalTTC),
			statut,
			paiement,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func montantCSV(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}
