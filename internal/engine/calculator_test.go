package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinetcpq/internal/model"
)

// quoteWithSubtotal builds a quote holding a single priced item so the
// calculator sees the desired subtotal.
func quoteWithSubtotal(subtotal string) model.Quote {
	q := emptyQuote()
	q.Items = []model.QuoteItem{{
		ID: uuid.New(), ProductID: baseCabinetID, Quantity: 1,
		BasePrice: dec(subtotal), TotalPrice: dec(subtotal),
	}}
	return q
}

func TestCascadeOrderIsContractThenCustomer(t *testing.T) {
	q := quoteWithSubtotal("1000")
	q.ContractDiscount = dec("10")
	q.CustomerDiscount = dec("5")
	q.OrderDiscount = dec("20")

	got := Recalculate(q)

	// contract: 100; customer: (1000−100)×5% = 45; total: 165; final: 835.
	// An additive-on-subtotal implementation would yield 830 — must be 835.
	assert.True(t, got.Subtotal.Equal(dec("1000")), "subtotal %s", got.Subtotal)
	assert.True(t, got.TotalDiscount.Equal(dec("165")), "totalDiscount %s", got.TotalDiscount)
	assert.True(t, got.FinalTotal.Equal(dec("835")), "finalTotal %s", got.FinalTotal)
}

func TestApprovalThresholdIsStrictlyGreater(t *testing.T) {
	q := quoteWithSubtotal("10000")
	got := Recalculate(q)
	assert.True(t, got.FinalTotal.Equal(dec("10000")))
	assert.False(t, got.RequiresApproval, "final total equal to threshold needs no approval")

	q = quoteWithSubtotal("10000.01")
	got = Recalculate(q)
	assert.True(t, got.RequiresApproval, "one cent over the threshold requires approval")
}

func TestOrderDiscountIsFlatAmount(t *testing.T) {
	q := quoteWithSubtotal("500")
	q.OrderDiscount = dec("50")

	got := Recalculate(q)
	assert.True(t, got.FinalTotal.Equal(dec("450")), "finalTotal %s", got.FinalTotal)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	e := testEngine()
	q, err := e.AddItem(emptyQuote(), baseCabinetID, 2, nil)
	require.NoError(t, err)
	q, err = e.ApplyProcessing(q, q.Items[0].ID, stainWalnutID, nil)
	require.NoError(t, err)
	q.ContractDiscount = dec("10")
	q.CustomerDiscount = dec("5")

	once := Recalculate(q)
	twice := Recalculate(once)
	assert.Equal(t, once, twice, "recalculating without mutation must be a fixed point")
}
