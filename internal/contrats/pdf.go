package contrats

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"
)

var ErrPDFIndisponible = errors.New("contrats: service PDF non configuré")

// PDFRenderer turns an HTML document into a PDF. Satisfied by report.Client.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

var contratTemplate = template.Must(template.New("contrat").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 2.5cm; color: #1a1a1a; }
  h1 { font-size: 20px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
  table { width: 100%; border-collapse: collapse; margin-top: 24px; }
  td, th { padding: 6px 10px; text-align: left; border-bottom: 1px solid #ddd; }
  .total { font-weight: bold; }
  .meta { color: #666; font-size: 12px; margin-top: 32px; }
</style>
</head>
<body>
<h1>Contrat d'entretien — {{.Contrat.Libelle}}</h1>
<p>Client : <strong>{{.ClientNom}}</strong></p>
{{if .Contrat.Description}}<p>{{.Contrat.Description}}</p>{{end}}
<table>
  <tr><th>Périodicité</th><td>{{.Periodicite}}</td></tr>
  <tr><th>Montant HT par échéance</th><td>{{printf "%.2f" .Contrat.MontantHT}} €</td></tr>
  <tr><th>TVA</th><td>{{printf "%.1f" .Contrat.TauxTVA}} %</td></tr>
  <tr class="total"><th>Montant TTC par échéance</th><td>{{printf "%.2f" .MontantTTC}} €</td></tr>
  <tr><th>Date de début</th><td>{{.Contrat.DateDebut.Format "02/01/2006"}}</td></tr>
  {{if .Contrat.DateFin}}<tr><th>Date de fin</th><td>{{.Contrat.DateFin.Format "02/01/2006"}}</td></tr>{{end}}
  <tr><th>Prochaine facturation</th><td>{{.Contrat.ProchaineFacturation.Format "02/01/2006"}}</td></tr>
</table>
<p class="meta">Document généré le {{.Genere.Format "02/01/2006"}}.</p>
</body>
</html>`))

var libellesPeriodicite = map[Periodicite]string{
	PeriodiciteMensuelle:     "Mensuelle",
	PeriodiciteTrimestrielle: "Trimestrielle",
	PeriodiciteAnnuelle:      "Annuelle",
}

// PDF renders the contract sheet through Gotenberg.
func (s *Service) PDF(ctx context.Context, artisanID, id int64) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrPDFIndisponible
	}
	c, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clientsRepo.Get(ctx, artisanID, c.ClientID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = contratTemplate.Execute(&buf, struct {
		Contrat     *Contrat
		ClientNom   string
		Periodicite string
		MontantTTC  float64
		Genere      time.Time
	}{
		Contrat:     c,
		ClientNom:   client.Nom,
		Periodicite: libellesPeriodicite[c.Periodicite],
		MontantTTC:  c.MontantHT * (1 + c.TauxTVA/100),
		Genere:      s.now(),
	})
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderHTML(ctx, buf.String())
}
