package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/google/uuid"
)

// Store owns the cart of a single browser session. Every mutation runs under
// the store's mutex and writes the collections it touched before returning.
type Store struct {
	log       *slog.Logger
	storage   Storage
	sessionID string
	now       func() time.Time

	mu       sync.Mutex
	books    []domain.BookLine
	products []domain.ProductLine
	posts    []domain.PendingPost
	visible  bool
	customer domain.CustomerInfo
}

// Load restores a session's cart. Missing or unreadable slots start empty.
func Load(ctx context.Context, log *slog.Logger, storage Storage, sessionID string) *Store {
	s := &Store{
		log:       log.With("session_id", sessionID),
		storage:   storage,
		sessionID: sessionID,
		now:       func() time.Time { return time.Now().UTC() },
	}

	if raw, ok := s.read(ctx, SlotBooks); ok {
		lines, dropped, err := domain.DecodeBookLines(raw)
		s.noteDecode(SlotBooks, dropped, err)
		s.books = lines
	}
	if raw, ok := s.read(ctx, SlotProducts); ok {
		lines, dropped, err := domain.DecodeProductLines(raw)
		s.noteDecode(SlotProducts, dropped, err)
		s.products = lines
	}
	if raw, ok := s.read(ctx, SlotPosts); ok {
		posts, dropped, err := domain.DecodePendingPosts(raw)
		s.noteDecode(SlotPosts, dropped, err)
		s.posts = posts
	}
	return s
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.storage.Get(ctx, s.sessionID, key)
	if err != nil {
		s.log.Warn("cart slot read failed", "slot", key, "err", err)
		return "", false
	}
	return raw, ok
}

func (s *Store) noteDecode(key string, dropped int, err error) {
	if err != nil {
		s.log.Warn("cart slot malformed, starting empty", "slot", key, "err", err)
		return
	}
	if dropped > 0 {
		s.log.Warn("cart slot records dropped", "slot", key, "dropped", dropped)
	}
}

func (s *Store) SessionID() string { return s.sessionID }

// AddBookLine merges into the line with the same (book, mode, duration) or
// appends a new line of quantity one. The cart view is opened.
func (s *Store) AddBookLine(ctx context.Context, book domain.Book, mode domain.PurchaseMode, d domain.RentDuration) (domain.Snapshot, error) {
	if err := domain.ValidateBookSelection(book.ID, mode, d); err != nil {
		return domain.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.BookKey{BookID: book.ID, Mode: mode, Duration: d}
	merged := false
	for i := range s.books {
		if s.books[i].Key() == key {
			s.books[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.books = append(s.books, domain.BookLine{Book: book, Quantity: 1, PurchaseType: mode, RentDuration: d})
	}
	s.visible = true

	return s.commit(ctx, SlotBooks)
}

func (s *Store) AddProductLine(ctx context.Context, product domain.Product) (domain.Snapshot, error) {
	if product.ID == "" {
		return domain.Snapshot{}, domain.NewInvalidArgument(domain.ErrMsgProductIDRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.products {
		if s.products[i].Product.ID == product.ID {
			s.products[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.products = append(s.products, domain.ProductLine{Product: product, Quantity: 1})
	}

	return s.commit(ctx, SlotProducts)
}

// AddPendingPost appends a new post. Posts never merge.
func (s *Store) AddPendingPost(ctx context.Context, category domain.ExploreCategory, content, author string) (domain.PendingPost, domain.Snapshot, error) {
	post, err := domain.NewPendingPost(uuid.NewString(), category, content, author, s.now())
	if err != nil {
		return domain.PendingPost{}, domain.Snapshot{}, err
	}
	snap, err := s.AppendPendingPost(ctx, post)
	return post, snap, err
}

// AppendPendingPost mirrors a post that was already accepted elsewhere.
func (s *Store) AppendPendingPost(ctx context.Context, post domain.PendingPost) (domain.Snapshot, error) {
	if post.ID == "" {
		return domain.Snapshot{}, domain.NewInvalidArgument(domain.ErrMsgPostIDRequired)
	}
	if err := domain.ValidatePost(post.Category, post.Content, post.AuthorName); err != nil {
		return domain.Snapshot{}, err
	}
	post.Status = domain.StatusPending

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, post)
	s.visible = true

	return s.commit(ctx, SlotPosts)
}

// RemoveBookLine drops every line of the book, whatever its mode or duration.
func (s *Store) RemoveBookLine(ctx context.Context, bookID string) (domain.Snapshot, error) {
	if bookID == "" {
		return domain.Snapshot{}, domain.NewInvalidArgument(domain.ErrMsgBookIDRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeBook(bookID)
	return s.commit(ctx, SlotBooks)
}

func (s *Store) RemoveProductLine(ctx context.Context, productID string) (domain.Snapshot, error) {
	if productID == "" {
		return domain.Snapshot{}, domain.NewInvalidArgument(domain.ErrMsgProductIDRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeProduct(productID)
	return s.commit(ctx, SlotProducts)
}

func (s *Store) RemovePendingPost(ctx context.Context, postID string) (domain.Snapshot, error) {
	if postID == "" {
		return domain.Snapshot{}, domain.NewInvalidArgument(domain.ErrMsgPostIDRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.posts[:0]
	for _, p := range s.posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	return s.commit(ctx, SlotPosts)
}

// UpdateBookQuantity sets the quantity of every line of the book. A quantity
// of zero or less removes them.
func (s *Store) UpdateBookQuantity(ctx context.Context, bookID string, quantity int) (domain.Snapshot, error) {
	if bookID == "" {
		return domain.Snapshot{}, domain.NewInvalidArgument(domain.ErrMsgBookIDRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeBook(bookID)
	} else {
		for i := range s.books {
			if s.books[i].Book.ID == bookID {
				s.books[i].Quantity = quantity
			}
		}
	}
	return s.commit(ctx, SlotBooks)
}

func (s *Store) UpdateProductQuantity(ctx context.Context, productID string, quantity int) (domain.Snapshot, error) {
	if productID == "" {
		return domain.Snapshot{}, domain.NewInvalidArgument(domain.ErrMsgProductIDRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeProduct(productID)
	} else {
		for i := range s.products {
			if s.products[i].Product.ID == productID {
				s.products[i].Quantity = quantity
			}
		}
	}
	return s.commit(ctx, SlotProducts)
}

// Clear empties all three collections. Visibility is left alone.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = nil
	s.products = nil
	s.posts = nil
	_, err := s.commit(ctx, SlotBooks, SlotProducts, SlotPosts)
	return err
}

// ClearDispatched removes what snap held and keeps anything added after snap
// was taken. Quantities raised since then keep the difference.
func (s *Store) ClearDispatched(ctx context.Context, snap domain.Snapshot) error {
	books := make(map[domain.BookKey]int, len(snap.Books))
	for _, l := range snap.Books {
		books[l.Key()] += l.Quantity
	}
	products := make(map[string]int, len(snap.Products))
	for _, l := range snap.Products {
		products[l.Product.ID] += l.Quantity
	}
	posts := make(map[string]bool, len(snap.Posts))
	for _, p := range snap.Posts {
		posts[p.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var keptBooks []domain.BookLine
	for _, l := range s.books {
		k := l.Key()
		taken := min(books[k], l.Quantity)
		books[k] -= taken
		if l.Quantity -= taken; l.Quantity > 0 {
			keptBooks = append(keptBooks, l)
		}
	}
	var keptProducts []domain.ProductLine
	for _, l := range s.products {
		taken := min(products[l.Product.ID], l.Quantity)
		products[l.Product.ID] -= taken
		if l.Quantity -= taken; l.Quantity > 0 {
			keptProducts = append(keptProducts, l)
		}
	}
	var keptPosts []domain.PendingPost
	for _, p := range s.posts {
		if !posts[p.ID] {
			keptPosts = append(keptPosts, p)
		}
	}
	s.books, s.products, s.posts = keptBooks, keptProducts, keptPosts

	_, err := s.commit(ctx, SlotBooks, SlotProducts, SlotPosts)
	return err
}

func (s *Store) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
}

func (s *Store) ToggleVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = !s.visible
	return s.visible
}

// SetCustomerDraft keeps the checkout form between requests. It is not persisted.
func (s *Store) SetCustomerDraft(info domain.CustomerInfo) {
	s.mu.Lock()
	s.customer = info
	s.mu.Unlock()
}

func (s *Store) ResetCustomerDraft() {
	s.SetCustomerDraft(domain.CustomerInfo{})
}

func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Total() int64 {
	return s.Snapshot().Total()
}

func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount()
}

func (s *Store) removeBook(bookID string) {
	kept := s.books[:0]
	for _, l := range s.books {
		if l.Book.ID != bookID {
			kept = append(kept, l)
		}
	}
	s.books = kept
}

func (s *Store) removeProduct(productID string) {
	kept := s.products[:0]
	for _, l := range s.products {
		if l.Product.ID != productID {
			kept = append(kept, l)
		}
	}
	s.products = kept
}

func (s *Store) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Books:    append([]domain.BookLine{}, s.books...),
		Products: append([]domain.ProductLine{}, s.products...),
		Posts:    append([]domain.PendingPost{}, s.posts...),
		Visible:  s.visible,
		Customer: s.customer,
	}
}

// commit writes the given slots and returns the post-mutation snapshot. Every
// slot is attempted even after a failure; the in-memory state is kept.
func (s *Store) commit(ctx context.Context, keys ...string) (domain.Snapshot, error) {
	snap := s.snapshotLocked()
	var errs []error
	for _, key := range keys {
		var v any
		switch key {
		case SlotBooks:
			v = snap.Books
		case SlotProducts:
			v = snap.Products
		case SlotPosts:
			v = snap.Posts
		}
		b, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode %s: %w", key, err))
			continue
		}
		if err := s.storage.Set(ctx, s.sessionID, key, string(b)); err != nil {
			s.log.Error("cart slot write failed", "slot", key, "err", err)
			errs = append(errs, fmt.Errorf("persist %s: %w", key, err))
		}
	}
	return snap, errors.Join(errs...)
}
