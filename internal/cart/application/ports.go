package application

import "context"

// Slot keys, one per line collection.
const (
	SlotBooks    = "potter-cart"
	SlotProducts = "potter-product-cart"
	SlotPosts    = "potter-explore-cart"
)

// Storage is durable string storage scoped to one browser session.
type Storage interface {
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, sessionID, key, value string) error
}
