package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cabinetcpq/internal/model"
)

// Price computes the contribution of a single processing to an item total.
// Pure and total over the four known pricing models; an unknown model is a
// catalog configuration error, never a silent zero.
//
//   - fixed:         rate, once, independent of quantity
//   - per_unit:      rate × quantity
//   - percentage:    basePrice × quantity × rate (rate is a fraction)
//   - per_dimension: product width × rate; zero when the product carries no
//     dimensions (lenient by design, not a validation failure)
func Price(p model.Processing, quantity int, basePrice decimal.Decimal, product model.Product) (decimal.Decimal, error) {
	qty := decimal.NewFromInt(int64(quantity))
	switch p.PricingModel {
	case model.PricingFixed:
		return p.Rate, nil
	case model.PricingPerUnit:
		return p.Rate.Mul(qty), nil
	case model.PricingPercentage:
		return basePrice.Mul(qty).Mul(p.Rate), nil
	case model.PricingPerDimension:
		// Width only. Observed behavior preserved pending product-owner
		// clarification on axis selection.
		if product.Dimensions == nil {
			return decimal.Zero, nil
		}
		return product.Dimensions.Width.Mul(p.Rate), nil
	default:
		return decimal.Zero, fmt.Errorf("processing %s (%s): %w", p.Name, p.PricingModel, ErrUnknownPricingModel)
	}
}
