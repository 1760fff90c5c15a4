// Package export renders downloadable reports. Labels are English because
// the built-in PDF fonts cannot encode Hangul; the data itself is written
// as stored.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/safework-dev/safework/internal/models"
)

// RiskAssessmentPDF renders the assessment report: metadata, the factor
// table, a risk-level summary and signature blocks.
func RiskAssessmentPDF(project *models.Project, assessment *models.RiskAssessment) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Risk Assessment Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	writeMetaRow(pdf, "Project", project.Name)
	writeMetaRow(pdf, "Assessment", assessment.Title)
	writeMetaRow(pdf, "Status", string(assessment.Status))

	if assessment.User.Name != "" {
		writeMetaRow(pdf, "Author", assessment.User.Name)
	}

	writeMetaRow(pdf, "Created", assessment.CreatedAt.Format("2006-01-02"))

	if assessment.Description != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, assessment.Description, "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Risk Factors", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(55, 7, "Title", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Likelihood", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Risk Level", "1", 0, "C", true, 0, "")
	pdf.CellFormat(70, 7, "Control Measures", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)

	levelCounts := make(map[models.RiskLevel]int, len(models.RiskLevels))

	for _, factor := range assessment.RiskFactors {
		levelCounts[factor.RiskLevel]++

		pdf.CellFormat(55, 7, truncate(factor.Title, 40), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", factor.Likelihood), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", factor.Severity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, string(factor.RiskLevel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 7, truncate(factor.ControlMeasures, 55), "1", 1, "L", false, 0, "")
	}

	if len(assessment.RiskFactors) == 0 {
		pdf.CellFormat(190, 7, "No risk factors recorded", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	for _, level := range models.RiskLevels {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d", level, levelCounts[level]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)

	y := pdf.GetY()
	pdf.CellFormat(90, 6, "Prepared by: ____________________", "", 0, "L", false, 0, "")
	pdf.SetXY(110, y)
	pdf.CellFormat(90, 6, "Approved by: ____________________", "", 1, "L", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated at %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer

	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeMetaRow(pdf *fpdf.Fpdf, label string, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
