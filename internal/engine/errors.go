package engine

import "errors"

// Configuration errors are fatal to the operation that hit them and are
// surfaced to the caller. Unavailable additions are not errors: they simply
// never appear in the resolver's output and attempts are ignored.
var (
	ErrProductNotFound     = errors.New("product not found in catalog")
	ErrProcessingNotFound  = errors.New("processing not found in catalog")
	ErrItemNotFound        = errors.New("quote item not found")
	ErrRoomNotFound        = errors.New("room not found in quote")
	ErrUnknownPricingModel = errors.New("unknown pricing model")
	// ErrInheritedEntry is returned when a caller tries to remove a
	// room-inherited processing at the item level; inherited entries can only
	// be changed through the room selection.
	ErrInheritedEntry = errors.New("processing is inherited from a room and cannot be removed at item level")
)
