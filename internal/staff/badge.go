package staff

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

var lineLabels = map[string]string{
	"menage":    "Ménage",
	"bebe":      "Bébé setting",
	"jardinage": "Jardinage",
	"securite":  "Sécurité",
	"travaux":   "Travaux",
}

// BadgePDF génère le badge d'identification d'un employé au format
// carte (85.6 x 54 mm). Les polices de base étant latin-1, le texte
// passe par le traducteur unicode de fpdf.
func BadgePDF(emp *Employee) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: 85.6, Ht: 54},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(5, 5, 5)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Bandeau d'en-tête.
	pdf.SetFillColor(21, 101, 92)
	pdf.Rect(0, 0, 85.6, 12, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(5, 3)
	pdf.CellFormat(75.6, 6, tr("MAHTAAJ SERVICES"), "", 0, "C", false, 0, "")

	pdf.SetTextColor(30, 30, 30)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(5, 17)
	pdf.CellFormat(75.6, 7, tr(emp.Nom), "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	ligne := lineLabels[emp.Ligne]
	if ligne == "" {
		ligne = emp.Ligne
	}
	pdf.CellFormat(75.6, 5, tr("Ligne: "+ligne), "", 2, "L", false, 0, "")
	if emp.Poste != "" {
		pdf.CellFormat(75.6, 5, tr("Poste: "+emp.Poste), "", 2, "L", false, 0, "")
	}
	pdf.CellFormat(75.6, 5, tr(fmt.Sprintf("Expérience: %d an(s)", emp.Experience)), "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(5, 47)
	pdf.CellFormat(75.6, 4, tr("N° "+emp.ID.String()), "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("génération badge: %w", err)
	}
	return buf.Bytes(), nil
}
