package infra

// pdf.go — quote document generation using go-pdf/fpdf.
// Produces an A4 quote sheet: customer header, line-item table with applied
// processings, the discount breakdown, and a bold final total with an
// approval notice when managerial sign-off is required.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// QuoteDocumentLine is one rendered line item. Processings are pre-resolved
// to display names by the caller; the renderer knows nothing of the catalog.
type QuoteDocumentLine struct {
	Product     string
	Quantity    int
	BasePrice   decimal.Decimal
	Processings []string
	TotalPrice  decimal.Decimal
}

// QuoteDocument is the flattened, read-only view of a quote handed to the
// renderer by the render worker.
type QuoteDocument struct {
	QuoteID          string
	CustomerName     string
	Lines            []QuoteDocumentLine
	Subtotal         decimal.Decimal
	ContractDiscount decimal.Decimal
	CustomerDiscount decimal.Decimal
	OrderDiscount    decimal.Decimal
	TotalDiscount    decimal.Decimal
	FinalTotal       decimal.Decimal
	RequiresApproval bool
	CreatedAt        time.Time
}

// GenerateQuotePDF writes the quote sheet to storagePath/quote_{id}.pdf and
// returns the absolute path. Amounts are rounded to currency precision here,
// at the display boundary only.
func GenerateQuotePDF(doc QuoteDocument, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("quote_%s.pdf", doc.QuoteID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cabinet CPQ", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Quotation", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, doc.CustomerName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Quote "+doc.QuoteID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, doc.CreatedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Line items ───────────────────────────────────────────────────────────
	col1 := contentW * 0.46 // product
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.20 // base
	col4 := contentW * 0.22 // total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Base", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Line total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range doc.Lines {
		pdf.CellFormat(col1, 6, line.Product, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+line.BasePrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+line.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "I", 8)
		for _, p := range line.Processings {
			pdf.CellFormat(col1+col2+col3+col4, 4, "    + "+p, "", 1, "L", false, 0, "")
		}
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 5, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "$"+doc.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !doc.ContractDiscount.IsZero() {
		pdf.CellFormat(labelW, 5, "Contract discount ("+doc.ContractDiscount.StringFixed(0)+"%):", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "", "", 1, "R", false, 0, "")
	}
	if !doc.CustomerDiscount.IsZero() {
		pdf.CellFormat(labelW, 5, "Customer discount ("+doc.CustomerDiscount.StringFixed(0)+"%):", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "", "", 1, "R", false, 0, "")
	}
	if !doc.TotalDiscount.IsZero() {
		pdf.CellFormat(labelW, 5, "Total discount:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "-$"+doc.TotalDiscount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "$"+doc.FinalTotal.StringFixed(2), "", 1, "R", false, 0, "")

	if doc.RequiresApproval {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 5, "This quotation is subject to managerial approval.", "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
