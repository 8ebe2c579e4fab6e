package domain

// PriceOfBookLine resolves the unit price of a book line. A rent line with an
// unrecognised duration prices at zero instead of failing.
func PriceOfBookLine(l BookLine) int64 {
	if l.PurchaseType == ModeBuy {
		return l.Book.BuyPrice
	}
	switch l.RentDuration {
	case Rent7Days:
		return l.Book.RentPrice7Days
	case Rent14Days:
		return l.Book.RentPrice14Days
	case Rent30Days:
		return l.Book.RentPrice30Days
	default:
		return 0
	}
}

func PriceOfProductLine(l ProductLine) int64 {
	return l.Product.Price
}

func BookSubtotal(l BookLine) int64 {
	return PriceOfBookLine(l) * int64(l.Quantity)
}

func ProductSubtotal(l ProductLine) int64 {
	return PriceOfProductLine(l) * int64(l.Quantity)
}
