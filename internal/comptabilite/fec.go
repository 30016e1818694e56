package comptabilite

import (
	"fmt"
	"strings"
	"time"
)

// Colonnes imposées par l'arrêté du 29 juillet 2013 (article A47 A-1 du LPF).
var colonnesFEC = []string{
	"JournalCode", "JournalLib", "EcritureNum", "EcritureDate",
	"CompteNum", "CompteLib", "CompAuxNum", "CompAuxLib",
	"PieceRef", "PieceDate", "EcritureLib", "Debit", "Credit",
	"EcritureLet", "DateLet", "ValidDate", "Montantdevise", "Idevise",
}

// BuildFEC produit le fichier des écritures comptables de l'exercice :
// champs séparés par tabulation, une ligne de débit client (411) et les
// contreparties ventes (706) et TVA collectée (44571) par facture.
func BuildFEC(factures []FactureComptable) string {
	var b strings.Builder
	b.WriteString(strings.Join(colonnesFEC, "\t"))
	b.WriteString("\r\n")

	num := 1
	for _, f := range factures {
		libelle := fmt.Sprintf("Facture %s - %s", f.Numero, f.ClientNom)

		ecrireLigneFEC(&b, num, f, CompteClients, "Clients", f.ClientNom, libelle, f.TotalTTC, 0)
		ecrireLigneFEC(&b, num, f, ComptePrestation, "Prestations de services", "", libelle, 0, f.TotalHT)
		if f.TotalTVA != 0 {
			ecrireLigneFEC(&b, num, f, CompteTVACollectee, "TVA collectée", "", libelle, 0, f.TotalTVA)
		}
		num++
	}
	return b.String()
}

func ecrireLigneFEC(b *strings.Builder, num int, f FactureComptable, compte, compteLib, auxLib, libelle string, debit, credit float64) {
	compAuxNum := ""
	if auxLib != "" {
		compAuxNum = fmt.Sprintf("C%06d", f.ID)
	}
	champs := []string{
		JournalVentes,
		JournalVentesLib,
		fmt.Sprintf("%d", num),
		dateFEC(f.DateEmission),
		compte,
		compteLib,
		compAuxNum,
		auxLib,
		f.Numero,
		dateFEC(f.DateEmission),
		libelle,
		montantFEC(debit),
		montantFEC(credit),
		"", // EcritureLet
		"", // DateLet
		dateFEC(f.DateEmission),
		"", // Montantdevise
		"", // Idevise
	}
	b.WriteString(strings.Join(champs, "\t"))
	b.WriteString("\r\n")
}

func dateFEC(t time.Time) string {
	return t.Format("20060102")
}

// montantFEC : virgule décimale, deux décimales.
func montantFEC(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}
