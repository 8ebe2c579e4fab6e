package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

type PurchaseMode string

const (
	ModeBuy  PurchaseMode = "buy"
	ModeRent PurchaseMode = "rent"
)

// RentDuration is a rental period in days. Zero means no rental.
type RentDuration int

const (
	Rent7Days  RentDuration = 7
	Rent14Days RentDuration = 14
	Rent30Days RentDuration = 30
)

func (d RentDuration) Valid() bool {
	switch d {
	case Rent7Days, Rent14Days, Rent30Days:
		return true
	}
	return false
}

type BookLine struct {
	Book         Book         `json:"book"`
	Quantity     int          `json:"quantity"`
	PurchaseType PurchaseMode `json:"purchaseType"`
	RentDuration RentDuration `json:"rentDuration,omitempty"`
}

// BookKey decides whether two adds merge into one line.
type BookKey struct {
	BookID   string
	Mode     PurchaseMode
	Duration RentDuration
}

func (l BookLine) Key() BookKey {
	return BookKey{BookID: l.Book.ID, Mode: l.PurchaseType, Duration: l.RentDuration}
}

type ProductLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type ExploreCategory string

const (
	CategoryBooks       ExploreCategory = "books"
	CategoryConfessions ExploreCategory = "confessions"
	CategoryHelp        ExploreCategory = "help"
	CategoryNotices     ExploreCategory = "notices"
	CategoryGeneral     ExploreCategory = "general"
)

var ExploreCategories = []ExploreCategory{
	CategoryBooks, CategoryConfessions, CategoryHelp, CategoryNotices, CategoryGeneral,
}

func (c ExploreCategory) Valid() bool {
	for _, v := range ExploreCategories {
		if c == v {
			return true
		}
	}
	return false
}

type PostStatus string

const StatusPending PostStatus = "pending"

const (
	MaxPostContent  = 400
	AnonymousAuthor = "Anonymous"
)

// PendingPost mirrors a community post waiting for moderation. It carries no
// price and no quantity.
type PendingPost struct {
	ID         string          `json:"id"`
	Category   ExploreCategory `json:"category"`
	Content    string          `json:"content"`
	AuthorName string          `json:"authorName"`
	Status     PostStatus      `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ValidatePost checks a post before it enters the cart.
func ValidatePost(category ExploreCategory, content, author string) error {
	if !category.Valid() {
		return NewInvalidArgumentf("unknown explore category %q", category)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return NewInvalidArgument(ErrMsgPostContentRequired)
	}
	if utf8.RuneCountInString(content) > MaxPostContent {
		return NewInvalidArgument(ErrMsgPostContentTooLong)
	}
	if strings.TrimSpace(author) == "" {
		return NewInvalidArgument(ErrMsgPostAuthorRequired)
	}
	return nil
}

// NewPendingPost validates and normalises a post. Content and author are trimmed.
func NewPendingPost(id string, category ExploreCategory, content, author string, createdAt time.Time) (PendingPost, error) {
	if err := ValidatePost(category, content, author); err != nil {
		return PendingPost{}, err
	}
	return PendingPost{
		ID:         id,
		Category:   category,
		Content:    strings.TrimSpace(content),
		AuthorName: strings.TrimSpace(author),
		Status:     StatusPending,
		CreatedAt:  createdAt,
	}, nil
}
