package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// ResolvedDependency is one product required (or suggested) by another, with
// the quantity its formula evaluates to for the triggering quantity.
type ResolvedDependency struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	Automatic bool
}

// ResolveDependencies evaluates the dependency edges of a product against the
// triggering item quantity. It only returns candidates: the caller decides to
// auto-add (Automatic) or surface a suggestion. Resolution is deliberately
// non-recursive — a dependency's own dependencies are only chased if the
// caller re-invokes this on the newly added product, which bounds expansion
// under circular catalog authoring.
func (e *Engine) ResolveDependencies(productID uuid.UUID, triggeringQty int) ([]ResolvedDependency, error) {
	var out []ResolvedDependency
	for _, dep := range e.cat.Dependencies(productID) {
		required, ok := e.cat.Product(dep.RequiredProductID)
		if !ok {
			return nil, fmt.Errorf("dependency %s: required %w", dep.ID, ErrProductNotFound)
		}
		qty, err := EvalFormula(dep.QuantityFormula, triggeringQty)
		if err != nil {
			return nil, fmt.Errorf("dependency %s → %s: %w", dep.ProductID, dep.RequiredProductID, err)
		}
		n := int(qty.Ceil().IntPart())
		if n < 1 {
			return nil, fmt.Errorf("dependency %s → %s: formula %q evaluated to non-positive quantity",
				dep.ProductID, dep.RequiredProductID, dep.QuantityFormula)
		}
		out = append(out, ResolvedDependency{
			ProductID: required.ID,
			Name:      required.Name,
			Quantity:  n,
			Automatic: dep.IsAutomatic,
		})
	}
	return out, nil
}
