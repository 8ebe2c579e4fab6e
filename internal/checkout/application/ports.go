package application

import (
	"context"

	"github.com/dmehra2102/potter-book-bank/internal/checkout/domain"
)

type OrderRepository interface {
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, headers map[string]string, traceparent string) error
}

// Channel hands a deep link to the external messaging app. It is called
// exactly once per checkout.
type Channel interface {
	Open(ctx context.Context, url string) error
}
