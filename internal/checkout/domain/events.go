package domain

const EventOrderPlaced = "OrderPlaced"

// OrderPlaced is published once the order record is stored.
type OrderPlaced struct {
	OrderID      string      `json:"order_id"`
	Customer     string      `json:"customer"`
	Phone        string      `json:"phone"`
	Total        int64       `json:"total"`
	Items        []OrderItem `json:"items"`
	PendingPosts int         `json:"pending_posts"`
	OrderDate    string      `json:"order_date"`
}
