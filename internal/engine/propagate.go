package engine

import (
	"fmt"

	"github.com/google/uuid"

	"cabinetcpq/internal/model"
)

// AddRoom creates a room with an initial processing selection. Items added to
// the quote while assigned to this room inherit the selection.
func (e *Engine) AddRoom(q model.Quote, name string, processingIDs []uuid.UUID) (model.Quote, error) {
	q = clone(q)
	for _, id := range processingIDs {
		if _, ok := e.cat.Processing(id); !ok {
			return q, fmt.Errorf("add room: %w", ErrProcessingNotFound)
		}
	}
	q.Rooms = append(q.Rooms, model.Room{
		ID:            uuid.New(),
		QuoteID:       q.ID,
		Name:          name,
		ProcessingIDs: copyIDs(processingIDs),
	})
	return q, nil
}

// SetRoomProcessings replaces a room's processing selection and re-propagates
// it onto every item assigned to the room:
//
//   - every applied entry whose SourceRoomID matches the room is removed,
//     then the new selection is copied on, priced the same way as on item
//     creation. Replace, never merge — stale inherited entries must not
//     survive a room change.
//   - entries without a SourceRoomID were added manually on the item and are
//     never touched by this pass, including when the room selection becomes
//     empty (inherited entries vanish, manual entries remain).
func (e *Engine) SetRoomProcessings(q model.Quote, roomID uuid.UUID, processingIDs []uuid.UUID) (model.Quote, error) {
	q = clone(q)
	room := q.Room(roomID)
	if room == nil {
		return q, ErrRoomNotFound
	}
	for _, id := range processingIDs {
		if _, ok := e.cat.Processing(id); !ok {
			return q, fmt.Errorf("set room processings: %w", ErrProcessingNotFound)
		}
	}
	room.ProcessingIDs = copyIDs(processingIDs)

	for i := range q.Items {
		item := &q.Items[i]
		if item.RoomID == nil || *item.RoomID != roomID {
			continue
		}

		kept := item.AppliedProcessings[:0]
		for _, ap := range item.AppliedProcessings {
			if ap.SourceRoomID != nil && *ap.SourceRoomID == roomID {
				continue
			}
			kept = append(kept, ap)
		}
		item.AppliedProcessings = kept

		product, ok := e.cat.Product(item.ProductID)
		if !ok {
			return q, fmt.Errorf("set room processings: %w", ErrProductNotFound)
		}
		inherited, err := e.inheritedEntries(*room, *item, product)
		if err != nil {
			return q, err
		}
		item.AppliedProcessings = append(item.AppliedProcessings, inherited...)
		item.TotalPrice = itemTotal(*item)
	}
	return Recalculate(q), nil
}

// inheritedEntries builds the applied entries a room selection contributes to
// an item, each tagged with the room id. Processing ids the item already
// carries (manual entries) are skipped: an item never holds two entries for
// one processing, so the manual entry wins and no double charge occurs.
func (e *Engine) inheritedEntries(room model.Room, item model.QuoteItem, product model.Product) ([]model.AppliedProcessing, error) {
	already := make(map[uuid.UUID]bool, len(item.AppliedProcessings))
	for _, ap := range item.AppliedProcessings {
		already[ap.ProcessingID] = true
	}

	var out []model.AppliedProcessing
	for _, pid := range room.ProcessingIDs {
		if already[pid] {
			continue
		}
		processing, ok := e.cat.Processing(pid)
		if !ok {
			return nil, fmt.Errorf("room %s: %w", room.Name, ErrProcessingNotFound)
		}
		roomID := room.ID
		entry, err := e.newEntry(processing, item, product, nil, &roomID)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// copyIDs detaches the engine from the caller's slice.
func copyIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}
