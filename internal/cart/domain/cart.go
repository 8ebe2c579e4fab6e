package domain

// Snapshot is an immutable copy of one session's cart.
type Snapshot struct {
	Books    []BookLine    `json:"books"`
	Products []ProductLine `json:"products"`
	Posts    []PendingPost `json:"posts"`
	Visible  bool          `json:"visible"`
	Customer CustomerInfo  `json:"customerInfo"`
}

// Total sums priced lines. Pending posts never contribute.
func (s Snapshot) Total() int64 {
	var total int64
	for _, l := range s.Books {
		total += BookSubtotal(l)
	}
	for _, l := range s.Products {
		total += ProductSubtotal(l)
	}
	return total
}

// ItemCount is the badge count: every unit of every priced line plus one per post.
func (s Snapshot) ItemCount() int {
	n := len(s.Posts)
	for _, l := range s.Books {
		n += l.Quantity
	}
	for _, l := range s.Products {
		n += l.Quantity
	}
	return n
}

func (s Snapshot) Empty() bool {
	return len(s.Books) == 0 && len(s.Products) == 0 && len(s.Posts) == 0
}

func (s Snapshot) HasPricedLines() bool {
	return len(s.Books) > 0 || len(s.Products) > 0
}
