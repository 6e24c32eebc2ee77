package engine

import (
	"github.com/shopspring/decimal"

	"cabinetcpq/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Recalculate derives the quote-level totals from its items and discount
// terms. Pure and total over an immutable input; calling it twice without an
// intervening mutation yields an identical quote.
//
// The cascade order is fixed and load-bearing:
//
//	subtotal       = Σ items[].totalPrice
//	contractAmount = subtotal × contractDiscount / 100
//	customerAmount = (subtotal − contractAmount) × customerDiscount / 100
//	totalDiscount  = contractAmount + customerAmount + orderDiscount
//	finalTotal     = subtotal − totalDiscount
//
// The customer discount compounds on the post-contract base; it does not
// stack additively on the original subtotal. RequiresApproval uses a strict
// comparison: a final total exactly at the threshold needs no sign-off.
func Recalculate(q model.Quote) model.Quote {
	subtotal := decimal.Zero
	for _, item := range q.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}

	contractAmount := subtotal.Mul(q.ContractDiscount).Div(hundred)
	customerAmount := subtotal.Sub(contractAmount).Mul(q.CustomerDiscount).Div(hundred)
	totalDiscount := contractAmount.Add(customerAmount).Add(q.OrderDiscount)

	q.Subtotal = subtotal
	q.TotalDiscount = totalDiscount
	q.FinalTotal = subtotal.Sub(totalDiscount)
	q.RequiresApproval = q.FinalTotal.GreaterThan(q.ApprovalThreshold)
	return q
}

// itemTotal recomputes a quote item's total from its base price, quantity and
// applied processings. Pending entries carry zero and are included as-is.
func itemTotal(item model.QuoteItem) decimal.Decimal {
	total := item.BasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	for _, ap := range item.AppliedProcessings {
		total = total.Add(ap.CalculatedPrice)
	}
	return total
}
