package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGenerateQuotePDF(t *testing.T) {
	dir := t.TempDir()

	doc := QuoteDocument{
		QuoteID:      "3f0e9c1a-0000-0000-0000-000000000001",
		CustomerName: "Acme Kitchens",
		Lines: []QuoteDocumentLine{
			{
				Product:     "Base cabinet 600mm",
				Quantity:    2,
				BasePrice:   dec("200"),
				Processings: []string{"Walnut stain ($60.00)"},
				TotalPrice:  dec("460"),
			},
			{
				Product:    "Hinge set",
				Quantity:   4,
				BasePrice:  dec("12.50"),
				TotalPrice: dec("50"),
			},
		},
		Subtotal:         dec("510"),
		ContractDiscount: dec("10"),
		CustomerDiscount: dec("5"),
		TotalDiscount:    dec("73.95"),
		FinalTotal:       dec("436.05"),
		RequiresApproval: false,
		CreatedAt:        time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	path, err := GenerateQuotePDF(doc, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quote_3f0e9c1a-0000-0000-0000-000000000001.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500), "expected a non-trivial PDF file")
}

func TestGenerateQuotePDFCreatesStorageDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "pdfs")

	doc := QuoteDocument{
		QuoteID:      "3f0e9c1a-0000-0000-0000-000000000002",
		CustomerName: "Acme Kitchens",
		Subtotal:     decimal.Zero,
		FinalTotal:   decimal.Zero,
		CreatedAt:    time.Now(),
	}

	path, err := GenerateQuotePDF(doc, dir)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
