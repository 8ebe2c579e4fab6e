package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testBook(id string) Book {
	return Book{
		ID:              id,
		Title:           "Organic Chemistry",
		BuyPrice:        500,
		RentPrice7Days:  80,
		RentPrice14Days: 150,
		RentPrice30Days: 250,
		IsAvailable:     true,
	}
}

func TestPriceOfBookLine(t *testing.T) {
	b := testBook("b1")
	tests := []struct {
		name string
		line BookLine
		want int64
	}{
		{"buy", BookLine{Book: b, Quantity: 1, PurchaseType: ModeBuy}, 500},
		{"rent 7", BookLine{Book: b, Quantity: 1, PurchaseType: ModeRent, RentDuration: Rent7Days}, 80},
		{"rent 14", BookLine{Book: b, Quantity: 1, PurchaseType: ModeRent, RentDuration: Rent14Days}, 150},
		{"rent 30", BookLine{Book: b, Quantity: 1, PurchaseType: ModeRent, RentDuration: Rent30Days}, 250},
		{"rent unknown duration", BookLine{Book: b, Quantity: 1, PurchaseType: ModeRent, RentDuration: 21}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PriceOfBookLine(tt.line))
		})
	}
}

func TestSnapshotTotalAndCount(t *testing.T) {
	snap := Snapshot{
		Books: []BookLine{
			{Book: testBook("b1"), Quantity: 2, PurchaseType: ModeBuy},
			{Book: testBook("b2"), Quantity: 1, PurchaseType: ModeRent, RentDuration: Rent14Days},
		},
		Products: []ProductLine{
			{Product: Product{ID: "p1", Name: "Lab Coat", Price: 600}, Quantity: 1},
		},
		Posts: []PendingPost{{ID: "x", Category: CategoryHelp, Content: "hi", AuthorName: "A"}},
	}

	require.Equal(t, int64(1750), snap.Total())
	require.Equal(t, 5, snap.ItemCount())
	require.True(t, snap.HasPricedLines())
	require.False(t, snap.Empty())
}

func TestSnapshotPostsOnly(t *testing.T) {
	snap := Snapshot{Posts: []PendingPost{{ID: "x", Category: CategoryGeneral, Content: "hello", AuthorName: "A"}}}

	require.Zero(t, snap.Total())
	require.Equal(t, 1, snap.ItemCount())
	require.False(t, snap.HasPricedLines())
	require.False(t, snap.Empty())
}
