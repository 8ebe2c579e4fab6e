package application

import (
	"fmt"
	"strings"
	"time"

	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/dmehra2102/potter-book-bank/internal/checkout/domain"
)

const (
	previewLimit  = 80
	previewMarker = "..."

	messageHeader = "Greetings! I would like to acquire the following from the Potter Book Bank:"
	messageFooter = "Please confirm my owl. 🦉"
)

// Compose renders the order text sent through the messaging channel. The
// output depends only on its arguments.
func Compose(snap cart.Snapshot, customer cart.CustomerInfo, placedAt time.Time) string {
	var b strings.Builder
	b.WriteString(messageHeader)
	b.WriteString("\n")

	if lines := customerLines(customer); len(lines) > 0 {
		b.WriteString("\nCustomer Details:\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	if len(snap.Posts) > 0 {
		b.WriteString("\nExplore Posts:\n")
		for i, p := range snap.Posts {
			fmt.Fprintf(&b, "%d. [%s] by %s: \"%s\"\n", i+1, p.Category, p.AuthorName, Preview(p.Content))
			b.WriteString("   Status: Pending approval\n")
		}
	}

	if snap.HasPricedLines() {
		b.WriteString("\nItems:\n")
		n := 0
		for _, l := range snap.Books {
			n++
			fmt.Fprintf(&b, "%d. %s %s%s – Rs %d\n", n, modeTag(l), l.Book.Title, qtySuffix(l.Quantity), cart.BookSubtotal(l))
		}
		for _, l := range snap.Products {
			n++
			fmt.Fprintf(&b, "%d. %s%s – Rs %d\n", n, l.Product.Name, qtySuffix(l.Quantity), cart.ProductSubtotal(l))
		}
		fmt.Fprintf(&b, "\nTotal Tribute: Rs %d\n", snap.Total())
	}

	fmt.Fprintf(&b, "\nPlaced: %s\n", placedAt.Format(domain.DateLayout))
	b.WriteString(messageFooter)
	return b.String()
}

// Preview caps post content at 80 characters.
func Preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLimit {
		return content
	}
	return string(r[:previewLimit]) + previewMarker
}

func modeTag(l cart.BookLine) string {
	if l.PurchaseType == cart.ModeBuy {
		return "[Buy]"
	}
	return fmt.Sprintf("[Rent-%d Days]", l.RentDuration)
}

func qtySuffix(q int) string {
	if q > 1 {
		return fmt.Sprintf(" x%d", q)
	}
	return ""
}

func customerLines(c cart.CustomerInfo) []string {
	var lines []string
	add := func(label, v string) {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Name", c.Name)
	add("Phone", c.Phone)
	add("Type", c.Type)
	add("Department", c.Department)
	add("Semester", c.Semester)
	return lines
}
