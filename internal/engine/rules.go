package engine

import (
	"github.com/google/uuid"

	"cabinetcpq/internal/model"
)

// AvailableProcessings returns the processings still legal to add to an item
// of the given product, considering what is already applied:
//
//  1. keep catalog processings whose category set contains the product's
//     category;
//  2. for every rule whose trigger set intersects the applied set, remove the
//     rule's exclusion set — rules evaluate in ascending priority and
//     exclusions only accumulate within one pass (union semantics, never
//     reinstated by a later rule);
//  3. remove ids already applied (a processing cannot be applied twice).
//
// Output order follows stable catalog order.
func (e *Engine) AvailableProcessings(product model.Product, appliedIDs []uuid.UUID) []model.Processing {
	applied := make(map[uuid.UUID]bool, len(appliedIDs))
	for _, id := range appliedIDs {
		applied[id] = true
	}

	excluded := make(map[uuid.UUID]bool)
	for _, rule := range e.cat.Rules() {
		if !rule.Triggered(applied) {
			continue
		}
		for _, id := range rule.ExcludedIDs {
			excluded[id] = true
		}
	}

	var out []model.Processing
	for _, p := range e.cat.Processings() {
		if !p.Active || !p.AppliesTo(product.Category) {
			continue
		}
		if excluded[p.ID] || applied[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// available reports whether a specific processing id is in the available set
// for the item. Used to silently reject illegal ApplyProcessing attempts.
func (e *Engine) available(product model.Product, appliedIDs []uuid.UUID, processingID uuid.UUID) bool {
	for _, p := range e.AvailableProcessings(product, appliedIDs) {
		if p.ID == processingID {
			return true
		}
	}
	return false
}
