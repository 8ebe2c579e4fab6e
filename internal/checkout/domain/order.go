package domain

import (
	"time"

	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

type ItemKind string

const (
	KindBook    ItemKind = "book"
	KindProduct ItemKind = "product"
)

// Order is the back-office copy of a checkout. It is written once and never
// read back by the cart.
type Order struct {
	ID                 string            `json:"id"`
	Items              []OrderItem       `json:"items"`
	Customer           cart.CustomerInfo `json:"customerInfo"`
	Total              int64             `json:"total"`
	Status             OrderStatus       `json:"status"`
	CreatedAt          time.Time         `json:"createdAt"`
	OrderDate          string            `json:"orderDate"`
	OrderDateFormatted string            `json:"orderDateFormatted"`
}

type OrderItem struct {
	Kind         ItemKind          `json:"kind"`
	CatalogID    string            `json:"catalogId"`
	Name         string            `json:"name"`
	Quantity     int               `json:"quantity"`
	UnitPrice    int64             `json:"unitPrice"`
	PurchaseType cart.PurchaseMode `json:"purchaseType,omitempty"`
	RentDuration cart.RentDuration `json:"rentDuration,omitempty"`
}

const DateLayout = "02 Jan 2006, 3:04 PM"

// NewOrder snapshots the priced lines of a cart with their resolved prices.
func NewOrder(id string, snap cart.Snapshot, customer cart.CustomerInfo, placedAt time.Time) Order {
	items := make([]OrderItem, 0, len(snap.Books)+len(snap.Products))
	var total int64
	for _, l := range snap.Books {
		unit := cart.PriceOfBookLine(l)
		items = append(items, OrderItem{
			Kind:         KindBook,
			CatalogID:    l.Book.ID,
			Name:         l.Book.Title,
			Quantity:     l.Quantity,
			UnitPrice:    unit,
			PurchaseType: l.PurchaseType,
			RentDuration: l.RentDuration,
		})
		total += unit * int64(l.Quantity)
	}
	for _, l := range snap.Products {
		unit := cart.PriceOfProductLine(l)
		items = append(items, OrderItem{
			Kind:      KindProduct,
			CatalogID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: unit,
		})
		total += unit * int64(l.Quantity)
	}
	return Order{
		ID:                 id,
		Items:              items,
		Customer:           customer,
		Total:              total,
		Status:             StatusPending,
		CreatedAt:          placedAt.UTC(),
		OrderDate:          placedAt.Format(time.RFC3339),
		OrderDateFormatted: placedAt.Format(DateLayout),
	}
}
