package stocks

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Les exports tableur visent Excel FR : séparateur point-virgule,
// BOM UTF-8 et fins de ligne CRLF.
var csvHeader = []string{"reference", "designation", "categorie", "metier", "unite", "prix_achat", "prix_vente", "taux_tva", "suivi_stock", "quantite", "seuil_alerte"}

const utf8BOM = "\ufeff"

type ImportResult struct {
	Crees      int      `json:"crees"`
	MisAJour   int      `json:"mis_a_jour"`
	Ignores    int      `json:"ignores"`
	Avertissts []string `json:"avertissements,omitempty"`
}

// ExportCSV streams the whole catalog as semicolon-separated CSV.
func (s *Service) ExportCSV(ctx context.Context, artisanID int64, w io.Writer) error {
	articles, err := s.repo.ListAll(ctx, artisanID)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range articles {
		record := []string{
			a.Reference,
			a.Designation,
			a.Categorie,
			a.Metier,
			a.Unite,
			formatDecimal(a.PrixAchat),
			formatDecimal(a.PrixVente),
			formatDecimal(a.TauxTVA),
			formatBool(a.SuiviStock),
			formatDecimal(a.Quantite),
			formatDecimal(a.SeuilAlerte),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads a semicolon-separated catalog file and upserts articles by
// reference. Rows with an unparsable price are skipped with a warning rather
// than aborting the whole import.
func (s *Service) ImportCSV(ctx context.Context, artisanID int64, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(&bomStripper{r: r})
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("lecture de l'en-tête: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols["reference"]; !ok {
		return nil, errors.New("colonne 'reference' absente de l'en-tête")
	}
	if _, ok := cols["designation"]; !ok {
		return nil, errors.New("colonne 'designation' absente de l'en-tête")
	}

	result := &ImportResult{}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ligne %d: %w", line+1, err)
		}
		line++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		reference := strings.ToUpper(field("reference"))
		designation := field("designation")
		if reference == "" || designation == "" {
			result.Ignores++
			result.Avertissts = append(result.Avertissts, fmt.Sprintf("ligne %d: référence ou désignation manquante", line))
			continue
		}

		prixAchat, err1 := parseDecimal(field("prix_achat"))
		prixVente, err2 := parseDecimal(field("prix_vente"))
		tauxTVA, err3 := parseDecimal(field("taux_tva"))
		quantite, err4 := parseDecimal(field("quantite"))
		seuil, err5 := parseDecimal(field("seuil_alerte"))
		if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
			result.Ignores++
			result.Avertissts = append(result.Avertissts, fmt.Sprintf("ligne %d (%s): valeur numérique invalide", line, reference))
			continue
		}
		if tauxTVA == 0 {
			tauxTVA = 20
		}
		unite := field("unite")
		if unite == "" {
			unite = "u"
		}

		incoming := Article{
			ArtisanID:   artisanID,
			Reference:   reference,
			Designation: designation,
			Categorie:   field("categorie"),
			Metier:      field("metier"),
			Unite:       unite,
			PrixAchat:   prixAchat,
			PrixVente:   prixVente,
			TauxTVA:     tauxTVA,
			SuiviStock:  parseBool(field("suivi_stock")),
			Quantite:    quantite,
			SeuilAlerte: seuil,
		}

		existing, err := s.repo.GetByReference(ctx, artisanID, reference)
		switch {
		case err == nil:
			incoming.ID = existing.ID
			incoming.FournisseurID = existing.FournisseurID
			if err := s.repo.Update(ctx, incoming); err != nil {
				return nil, fmt.Errorf("ligne %d (%s): %w", line, reference, err)
			}
			if incoming.SuiviStock && quantite != existing.Quantite {
				if err := s.repo.SetQuantite(ctx, artisanID, existing.ID, quantite); err != nil {
					return nil, fmt.Errorf("ligne %d (%s): %w", line, reference, err)
				}
			}
			result.MisAJour++
		case errors.Is(err, ErrNotFound):
			if _, err := s.repo.Create(ctx, incoming); err != nil {
				return nil, fmt.Errorf("ligne %d (%s): %w", line, reference, err)
			}
			result.Crees++
		default:
			return nil, err
		}
	}
	return result, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// formatDecimal keeps trailing zeros out and always uses the dot, which both
// parseDecimal and Excel accept.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseDecimal accepts both the French comma and the dot as decimal mark.
func parseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func formatBool(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "oui", "true", "1", "vrai", "x":
		return true
	}
	return false
}

// bomStripper removes a leading UTF-8 BOM, common in files saved by Excel.
type bomStripper struct {
	r       io.Reader
	checked bool
}

func (b *bomStripper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head := make([]byte, 3)
		n, err := io.ReadFull(b.r, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return 0, err
		}
		kept := strings.TrimPrefix(string(head[:n]), utf8BOM)
		b.r = io.MultiReader(strings.NewReader(kept), b.r)
	}
	return b.r.Read(p)
}
