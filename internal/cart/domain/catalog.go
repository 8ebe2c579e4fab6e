package domain

import "time"

type BookCondition string

const (
	ConditionNew  BookCondition = "New"
	ConditionUsed BookCondition = "Used"
)

// BookType is how a book may be acquired.
type BookType string

const (
	TypeBuyOnly   BookType = "buy"
	TypeRentOnly  BookType = "rent"
	TypeBuyOrRent BookType = "both"
)

// Book is the catalog snapshot copied into a cart line at add time.
type Book struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	Category        string        `json:"category"`
	Condition       BookCondition `json:"condition"`
	Type            BookType      `json:"type"`
	BuyPrice        int64         `json:"buyPrice"`
	RentPrice7Days  int64         `json:"rentPrice7Days"`
	RentPrice14Days int64         `json:"rentPrice14Days"`
	RentPrice30Days int64         `json:"rentPrice30Days"`
	ImageURL        string        `json:"imageUrl"`
	IsAvailable     bool          `json:"isAvailable"`
	CreatedAt       time.Time     `json:"createdAt"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CustomerInfo is collected by the checkout form. Every field is optional.
type CustomerInfo struct {
	Type       string `json:"type,omitempty"`
	Semester   string `json:"semester,omitempty"`
	Department string `json:"department,omitempty"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (c CustomerInfo) IsZero() bool {
	return c == CustomerInfo{}
}
