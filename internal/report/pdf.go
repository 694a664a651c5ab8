// Package report renders an analysis record as a one-page PDF report.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/scrypster/insight/pkg/types"
)

// Title is printed in every page header.
const Title = "AI Smart Analysis Report"

const (
	fontFamily     = "Helvetica"
	noSummary      = "No summary available."
	entityColWidth = 90
	labelColWidth  = 50
	metricWidth    = 50
)

// RenderPDF writes a report for record to w: executive summary, key
// metrics, detected entities and topics.
func RenderPDF(w io.Writer, record types.AnalysisRecord) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(Title, true)
	pdf.SetCreator("insight", true)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", 15)
		pdf.CellFormat(0, 10, Title, "", 1, "C", false, 0, "")
		pdf.Ln(10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	section(pdf, "Executive Summary")
	pdf.SetFont(fontFamily, "", 11)
	summary := record.Summary
	if strings.TrimSpace(summary) == "" {
		summary = noSummary
	}
	pdf.MultiCell(0, 7, tr(summary), "", "L", false)
	pdf.Ln(5)

	section(pdf, "Key Metrics")
	pdf.SetFont(fontFamily, "", 11)
	pdf.CellFormat(metricWidth, 10, "Sentiment: "+titleCase(string(record.Sentiment)), "1", 0, "", false, 0, "")
	pdf.CellFormat(metricWidth, 10, fmt.Sprintf("Score: %.2f", record.SentimentScore), "1", 0, "", false, 0, "")
	pdf.CellFormat(metricWidth, 10, tr("Intent: "+titleCase(record.Intent)), "1", 0, "", false, 0, "")
	pdf.Ln(15)

	section(pdf, "Detected Entities")
	pdf.SetFillColor(200, 220, 255)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(entityColWidth, 10, "Entity Text", "1", 0, "C", true, 0, "")
	pdf.CellFormat(labelColWidth, 10, "Category", "1", 1, "C", true, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	for _, e := range record.Entities {
		pdf.CellFormat(entityColWidth, 8, tr(e.Text), "1", 0, "", false, 0, "")
		pdf.CellFormat(labelColWidth, 8, tr(e.Label), "1", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	if len(record.Topics) > 0 {
		section(pdf, "Topics")
		pdf.SetFont(fontFamily, "", 11)
		for _, topic := range record.Topics {
			pdf.CellFormat(0, 7, tr("- "+topic), "", 1, "", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, heading string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 10, heading, "", 1, "", false, 0, "")
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
