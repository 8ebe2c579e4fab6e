package domain

import (
	"encoding/json"
	"fmt"
)

// Persisted slots may hold records written by older clients, so each
// collection is decoded record by record and anything unusable is dropped.

func DecodeBookLines(raw string) ([]BookLine, int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, 0, fmt.Errorf("decode book lines: %w", err)
	}
	out := make([]BookLine, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var l BookLine
		if err := json.Unmarshal(rec, &l); err != nil {
			dropped++
			continue
		}
		if l.Book.ID == "" || l.Quantity < 1 {
			dropped++
			continue
		}
		// a rent line with an unknown duration is kept and prices at zero
		if l.PurchaseType != ModeBuy && l.PurchaseType != ModeRent {
			dropped++
			continue
		}
		out = append(out, l)
	}
	return out, dropped, nil
}

func DecodeProductLines(raw string) ([]ProductLine, int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, 0, fmt.Errorf("decode product lines: %w", err)
	}
	out := make([]ProductLine, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var l ProductLine
		if err := json.Unmarshal(rec, &l); err != nil || l.Product.ID == "" || l.Quantity < 1 {
			dropped++
			continue
		}
		out = append(out, l)
	}
	return out, dropped, nil
}

func DecodePendingPosts(raw string) ([]PendingPost, int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, 0, fmt.Errorf("decode pending posts: %w", err)
	}
	out := make([]PendingPost, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var p PendingPost
		if err := json.Unmarshal(rec, &p); err != nil || p.ID == "" || !p.Category.Valid() {
			dropped++
			continue
		}
		p.Status = StatusPending
		out = append(out, p)
	}
	return out, dropped, nil
}
