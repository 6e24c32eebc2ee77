// Package catalog provides an immutable snapshot of the product/processing
// catalog. The engine receives a *Snapshot explicitly on every call instead of
// reading shared package state, so it can be exercised against fabricated
// catalogs in tests.
package catalog

import (
	"sort"

	"github.com/google/uuid"

	"cabinetcpq/internal/model"
)

// Snapshot is a read-only view over catalog reference data. Lookups are
// indexed; iteration orders are fixed at construction so repeated resolutions
// over the same snapshot are deterministic.
type Snapshot struct {
	products     map[uuid.UUID]model.Product
	processings  map[uuid.UUID]model.Processing
	// processingOrder preserves a stable listing order for resolver output.
	processingOrder []uuid.UUID
	rules           []model.ProcessingRule // ascending priority
	dependencies    map[uuid.UUID][]model.ProductDependency
}

// NewSnapshot builds an indexed snapshot. Inputs are copied; the caller may
// mutate its slices afterwards without affecting the snapshot.
func NewSnapshot(
	products []model.Product,
	processings []model.Processing,
	rules []model.ProcessingRule,
	dependencies []model.ProductDependency,
) *Snapshot {
	s := &Snapshot{
		products:     make(map[uuid.UUID]model.Product, len(products)),
		processings:  make(map[uuid.UUID]model.Processing, len(processings)),
		dependencies: make(map[uuid.UUID][]model.ProductDependency),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	for _, pr := range processings {
		s.processings[pr.ID] = pr
		s.processingOrder = append(s.processingOrder, pr.ID)
	}
	s.rules = make([]model.ProcessingRule, len(rules))
	copy(s.rules, rules)
	sort.SliceStable(s.rules, func(i, j int) bool {
		return s.rules[i].Priority < s.rules[j].Priority
	})
	for _, d := range dependencies {
		s.dependencies[d.ProductID] = append(s.dependencies[d.ProductID], d)
	}
	return s
}

// Product looks up a catalog product by id.
func (s *Snapshot) Product(id uuid.UUID) (model.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

// Processing looks up a catalog processing by id.
func (s *Snapshot) Processing(id uuid.UUID) (model.Processing, bool) {
	p, ok := s.processings[id]
	return p, ok
}

// Processings returns all processings in stable catalog order.
func (s *Snapshot) Processings() []model.Processing {
	out := make([]model.Processing, 0, len(s.processingOrder))
	for _, id := range s.processingOrder {
		out = append(out, s.processings[id])
	}
	return out
}

// Rules returns all mutual-exclusion rules in ascending priority order.
func (s *Snapshot) Rules() []model.ProcessingRule {
	out := make([]model.ProcessingRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Dependencies returns the dependency edges whose source is productID.
func (s *Snapshot) Dependencies(productID uuid.UUID) []model.ProductDependency {
	deps := s.dependencies[productID]
	out := make([]model.ProductDependency, len(deps))
	copy(out, deps)
	return out
}
