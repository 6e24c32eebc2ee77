// Package engine implements the quote pricing and configuration rule engine:
// pricing primitives, the mutual-exclusion rule resolver, the product
// dependency resolver, room inheritance propagation, and the cascading
// discount calculator.
//
// The engine is stateless and side-effect free: every operation takes the
// previous Quote value plus the catalog snapshot held by the Engine, and
// returns a new Quote. It never mutates its inputs and performs no I/O;
// persistence is the caller's concern.
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cabinetcpq/internal/catalog"
	"cabinetcpq/internal/model"
)

// Engine evaluates quote mutations against one read-only catalog snapshot.
type Engine struct {
	cat *catalog.Snapshot
}

// New returns an engine bound to the given catalog snapshot.
func New(cat *catalog.Snapshot) *Engine {
	return &Engine{cat: cat}
}

// PendingConfiguration flags an applied processing that requires options
// which have not been supplied yet. The entry contributes zero to totals
// until the options arrive.
type PendingConfiguration struct {
	ItemID         uuid.UUID `json:"item_id"`
	ProcessingID   uuid.UUID `json:"processing_id"`
	ProcessingName string    `json:"processing_name"`
}

// AddItem appends a new line item for the product. When roomID is set, the
// room's current processing selection is copied onto the item as inherited
// entries. Dependencies are not chased here; callers use
// ResolveDependencies on the new product if they want them.
func (e *Engine) AddItem(q model.Quote, productID uuid.UUID, quantity int, roomID *uuid.UUID) (model.Quote, error) {
	q = clone(q)

	product, ok := e.cat.Product(productID)
	if !ok {
		return q, fmt.Errorf("add item: %w", ErrProductNotFound)
	}
	if quantity < 1 {
		quantity = 1
	}

	item := model.QuoteItem{
		ID:        uuid.New(),
		QuoteID:   q.ID,
		ProductID: product.ID,
		RoomID:    roomID,
		Quantity:  quantity,
		BasePrice: product.BasePrice,
	}

	if roomID != nil {
		room := q.Room(*roomID)
		if room == nil {
			return q, fmt.Errorf("add item: %w", ErrRoomNotFound)
		}
		inherited, err := e.inheritedEntries(*room, item, product)
		if err != nil {
			return q, err
		}
		item.AppliedProcessings = inherited
	}

	item.TotalPrice = itemTotal(item)
	q.Items = append(q.Items, item)
	return Recalculate(q), nil
}

// RemoveItem deletes a line item. Removing an unknown item is a no-op.
func (e *Engine) RemoveItem(q model.Quote, itemID uuid.UUID) model.Quote {
	q = clone(q)
	items := q.Items[:0]
	for _, item := range q.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	q.Items = items
	return Recalculate(q)
}

// SetQuantity changes an item's quantity and reprices every applied
// processing under the new quantity (pending entries stay at zero).
func (e *Engine) SetQuantity(q model.Quote, itemID uuid.UUID, quantity int) (model.Quote, error) {
	q = clone(q)
	item := q.Item(itemID)
	if item == nil {
		return q, ErrItemNotFound
	}
	if quantity < 1 {
		quantity = 1
	}
	item.Quantity = quantity
	if err := e.repriceItem(item); err != nil {
		return q, err
	}
	return Recalculate(q), nil
}

// ApplyProcessing adds a processing to an item as a manual entry
// (no source room).
//
// A processing that is already applied, not applicable to the product's
// category, or excluded by an active mutual-exclusion rule is rejected
// silently: the quote is returned unchanged, matching the contract that such
// ids simply never appear in AvailableProcessings. The one exception is an
// existing *pending* entry: supplying options through this call configures
// it, prices it, and clears the pending marker.
func (e *Engine) ApplyProcessing(q model.Quote, itemID, processingID uuid.UUID, options map[string]string) (model.Quote, error) {
	q = clone(q)
	item := q.Item(itemID)
	if item == nil {
		return q, ErrItemNotFound
	}
	product, ok := e.cat.Product(item.ProductID)
	if !ok {
		return q, fmt.Errorf("apply processing: %w", ErrProductNotFound)
	}
	processing, ok := e.cat.Processing(processingID)
	if !ok {
		return q, fmt.Errorf("apply processing: %w", ErrProcessingNotFound)
	}

	// Configure an existing pending entry in place.
	for i := range item.AppliedProcessings {
		ap := &item.AppliedProcessings[i]
		if ap.ProcessingID != processingID {
			continue
		}
		if !ap.Pending || len(options) == 0 {
			return Recalculate(q), nil // already applied — silent no-op
		}
		price, err := Price(processing, item.Quantity, item.BasePrice, product)
		if err != nil {
			return q, err
		}
		ap.Options = options
		ap.Pending = false
		ap.CalculatedPrice = price
		item.TotalPrice = itemTotal(*item)
		return Recalculate(q), nil
	}

	if !e.available(product, appliedIDs(*item), processingID) {
		return Recalculate(q), nil // not available — silent no-op
	}

	entry, err := e.newEntry(processing, *item, product, options, nil)
	if err != nil {
		return q, err
	}
	item.AppliedProcessings = append(item.AppliedProcessings, entry)
	item.TotalPrice = itemTotal(*item)
	return Recalculate(q), nil
}

// RemoveProcessing removes a manually-added processing from an item.
// Inherited entries cannot be removed here; they belong to the room
// selection. Removing a processing that is not applied is a no-op.
func (e *Engine) RemoveProcessing(q model.Quote, itemID, processingID uuid.UUID) (model.Quote, error) {
	q = clone(q)
	item := q.Item(itemID)
	if item == nil {
		return q, ErrItemNotFound
	}
	for _, ap := range item.AppliedProcessings {
		if ap.ProcessingID == processingID && ap.Inherited() {
			return q, ErrInheritedEntry
		}
	}
	kept := item.AppliedProcessings[:0]
	for _, ap := range item.AppliedProcessings {
		if ap.ProcessingID != processingID {
			kept = append(kept, ap)
		}
	}
	item.AppliedProcessings = kept
	item.TotalPrice = itemTotal(*item)
	return Recalculate(q), nil
}

// SetOrderDiscount sets the flat ad-hoc discount amount on the quote.
func (e *Engine) SetOrderDiscount(q model.Quote, amount decimal.Decimal) model.Quote {
	q = clone(q)
	q.OrderDiscount = amount
	return Recalculate(q)
}

// PendingConfigurations lists every applied processing across the quote that
// is still waiting for user-supplied options.
func (e *Engine) PendingConfigurations(q model.Quote) []PendingConfiguration {
	var out []PendingConfiguration
	for _, item := range q.Items {
		for _, ap := range item.AppliedProcessings {
			if !ap.Pending {
				continue
			}
			name := ""
			if p, ok := e.cat.Processing(ap.ProcessingID); ok {
				name = p.Name
			}
			out = append(out, PendingConfiguration{
				ItemID:         item.ID,
				ProcessingID:   ap.ProcessingID,
				ProcessingName: name,
			})
		}
	}
	return out
}

// newEntry builds an AppliedProcessing for the item. Processings that require
// options but have none yet are stored pending with a zero price.
func (e *Engine) newEntry(
	p model.Processing,
	item model.QuoteItem,
	product model.Product,
	options map[string]string,
	sourceRoomID *uuid.UUID,
) (model.AppliedProcessing, error) {
	entry := model.AppliedProcessing{
		ID:           uuid.New(),
		QuoteItemID:  item.ID,
		ProcessingID: p.ID,
		Options:      options,
		SourceRoomID: sourceRoomID,
	}
	if p.RequiresOptions && len(options) == 0 {
		entry.Pending = true
		entry.CalculatedPrice = decimal.Zero
		return entry, nil
	}
	price, err := Price(p, item.Quantity, item.BasePrice, product)
	if err != nil {
		return model.AppliedProcessing{}, err
	}
	entry.CalculatedPrice = price
	return entry, nil
}

// repriceItem recomputes every non-pending applied entry under the item's
// current quantity, then the item total.
func (e *Engine) repriceItem(item *model.QuoteItem) error {
	product, ok := e.cat.Product(item.ProductID)
	if !ok {
		return fmt.Errorf("reprice: %w", ErrProductNotFound)
	}
	for i := range item.AppliedProcessings {
		ap := &item.AppliedProcessings[i]
		if ap.Pending {
			continue
		}
		processing, ok := e.cat.Processing(ap.ProcessingID)
		if !ok {
			return fmt.Errorf("reprice: %w", ErrProcessingNotFound)
		}
		price, err := Price(processing, item.Quantity, item.BasePrice, product)
		if err != nil {
			return err
		}
		ap.CalculatedPrice = price
	}
	item.TotalPrice = itemTotal(*item)
	return nil
}

func appliedIDs(item model.QuoteItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(item.AppliedProcessings))
	for _, ap := range item.AppliedProcessings {
		ids = append(ids, ap.ProcessingID)
	}
	return ids
}

// clone deep-copies a quote so operations never mutate their input.
func clone(q model.Quote) model.Quote {
	items := make([]model.QuoteItem, len(q.Items))
	for i, item := range q.Items {
		applied := make([]model.AppliedProcessing, len(item.AppliedProcessings))
		for j, ap := range item.AppliedProcessings {
			if ap.Options != nil {
				opts := make(map[string]string, len(ap.Options))
				for k, v := range ap.Options {
					opts[k] = v
				}
				ap.Options = opts
			}
			if ap.SourceRoomID != nil {
				id := *ap.SourceRoomID
				ap.SourceRoomID = &id
			}
			applied[j] = ap
		}
		item.AppliedProcessings = applied
		if item.RoomID != nil {
			id := *item.RoomID
			item.RoomID = &id
		}
		items[i] = item
	}
	q.Items = items

	rooms := make([]model.Room, len(q.Rooms))
	for i, room := range q.Rooms {
		ids := make([]uuid.UUID, len(room.ProcessingIDs))
		copy(ids, room.ProcessingIDs)
		room.ProcessingIDs = ids
		rooms[i] = room
	}
	q.Rooms = rooms
	return q
}
