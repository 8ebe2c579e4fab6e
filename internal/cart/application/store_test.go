package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/dmehra2102/potter-book-bank/internal/cart/infrastructure/memory"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func book(id string) domain.Book {
	return domain.Book{
		ID:              id,
		Title:           "Book " + id,
		BuyPrice:        500,
		RentPrice7Days:  80,
		RentPrice14Days: 150,
		RentPrice30Days: 250,
	}
}

// failingStorage accepts reads and rejects every write.
type failingStorage struct {
	mu     sync.Mutex
	writes int
}

func (f *failingStorage) Get(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (f *failingStorage) Set(context.Context, string, string, string) error {
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	return errors.New("quota exceeded")
}

// slotFailingStorage rejects writes to one slot and stores the rest.
type slotFailingStorage struct {
	*memory.Storage
	slot string
}

func (f slotFailingStorage) Set(ctx context.Context, sessionID, key, value string) error {
	if key == f.slot {
		return errors.New("quota exceeded")
	}
	return f.Storage.Set(ctx, sessionID, key, value)
}

func TestAddBookLineMergesSameSelection(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, discardLogger(), memory.NewStorage(), "s1")

	_, err := s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	require.NoError(t, err)
	snap, err := s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	require.NoError(t, err)

	require.Len(t, snap.Books, 1)
	require.Equal(t, 2, snap.Books[0].Quantity)
	require.True(t, snap.Visible)

	snap, err = s.AddBookLine(ctx, book("b1"), domain.ModeRent, domain.Rent14Days)
	require.NoError(t, err)
	snap, err = s.AddBookLine(ctx, book("b1"), domain.ModeRent, domain.Rent7Days)
	require.NoError(t, err)
	require.Len(t, snap.Books, 3)

	seen := map[domain.BookKey]bool{}
	for _, l := range snap.Books {
		require.False(t, seen[l.Key()], "duplicate line for %+v", l.Key())
		seen[l.Key()] = true
	}
}

func TestAddBookLineRejectsInvalidRent(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	s := Load(ctx, discardLogger(), storage, "s1")

	_, err := s.AddBookLine(ctx, book("b1"), domain.ModeRent, 0)
	require.Equal(t, domain.CodeInvalidArgument, domain.Code(err))

	_, err = s.AddBookLine(ctx, book("b1"), domain.ModeRent, 21)
	require.Equal(t, domain.CodeInvalidArgument, domain.Code(err))

	require.True(t, s.Snapshot().Empty())
	_, ok, _ := storage.Get(ctx, "s1", SlotBooks)
	require.False(t, ok)
}

func TestAddProductLineMerges(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, discardLogger(), memory.NewStorage(), "s1")
	coat := domain.Product{ID: "p1", Name: "Lab Coat", Price: 600}

	_, err := s.AddProductLine(ctx, coat)
	require.NoError(t, err)
	snap, err := s.AddProductLine(ctx, coat)
	require.NoError(t, err)

	require.Len(t, snap.Products, 1)
	require.Equal(t, 2, snap.Products[0].Quantity)
	require.Equal(t, int64(1200), snap.Total())

	_, err = s.AddProductLine(ctx, domain.Product{})
	require.Equal(t, domain.CodeInvalidArgument, domain.Code(err))
}

func TestUpdateQuantityFloorRemovesLine(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, discardLogger(), memory.NewStorage(), "s1")

	_, err := s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	require.NoError(t, err)
	snap, err := s.UpdateBookQuantity(ctx, "b1", 4)
	require.NoError(t, err)
	require.Equal(t, 4, snap.Books[0].Quantity)

	snap, err = s.UpdateBookQuantity(ctx, "b1", 0)
	require.NoError(t, err)
	require.Empty(t, snap.Books)

	_, err = s.AddProductLine(ctx, domain.Product{ID: "p1", Price: 10})
	require.NoError(t, err)
	snap, err = s.UpdateProductQuantity(ctx, "p1", -3)
	require.NoError(t, err)
	require.Empty(t, snap.Products)
	require.Zero(t, snap.ItemCount())
}

func TestRemoveBookLineDropsEveryVariant(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, discardLogger(), memory.NewStorage(), "s1")

	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeRent, domain.Rent30Days)
	_, _ = s.AddBookLine(ctx, book("b2"), domain.ModeBuy, 0)

	snap, err := s.RemoveBookLine(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, snap.Books, 1)
	require.Equal(t, "b2", snap.Books[0].Book.ID)

	snap, err = s.RemoveBookLine(ctx, "missing")
	require.NoError(t, err)
	require.Len(t, snap.Books, 1)
}

func TestPendingPosts(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, discardLogger(), memory.NewStorage(), "s1")

	post, snap, err := s.AddPendingPost(ctx, domain.CategoryHelp, "  need calculus notes  ", " Hamza ")
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
	require.Equal(t, "need calculus notes", post.Content)
	require.Equal(t, "Hamza", post.AuthorName)
	require.Equal(t, domain.StatusPending, post.Status)
	require.Equal(t, 1, snap.ItemCount())
	require.Zero(t, snap.Total())

	_, snap, err = s.AddPendingPost(ctx, domain.CategoryHelp, "need calculus notes", "Hamza")
	require.NoError(t, err)
	require.Len(t, snap.Posts, 2, "posts never merge")

	_, _, err = s.AddPendingPost(ctx, domain.CategoryHelp, strings.Repeat("x", 401), "Hamza")
	require.Equal(t, domain.CodeInvalidArgument, domain.Code(err))

	snap, err = s.RemovePendingPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, snap.Posts, 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	reg := NewRegistry(discardLogger(), storage, 0, 0)

	s := reg.Get(ctx, "s1")
	_, err := s.AddBookLine(ctx, book("b1"), domain.ModeRent, domain.Rent14Days)
	require.NoError(t, err)
	_, err = s.AddProductLine(ctx, domain.Product{ID: "p1", Name: "Lab Coat", Price: 600})
	require.NoError(t, err)
	_, _, err = s.AddPendingPost(ctx, domain.CategoryNotices, "exam moved", "Admin")
	require.NoError(t, err)
	want := s.Snapshot()

	fresh := NewRegistry(discardLogger(), storage, 0, 0).Get(ctx, "s1")
	got := fresh.Snapshot()

	require.Equal(t, want.Books, got.Books)
	require.Equal(t, want.Products, got.Products)
	require.Len(t, got.Posts, 1)
	require.Equal(t, want.Posts[0].ID, got.Posts[0].ID)
	require.True(t, want.Posts[0].CreatedAt.Equal(got.Posts[0].CreatedAt))
	require.Equal(t, want.Total(), fresh.Total())
	require.False(t, got.Visible, "visibility is not persisted")

	require.Same(t, reg.Get(ctx, "s1"), s)
	reg.Forget("s1")
	require.NotSame(t, reg.Get(ctx, "s1"), s)
}

func TestLoadMalformedSlotsStartEmpty(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	require.NoError(t, storage.Set(ctx, "s1", SlotBooks, "{broken"))
	require.NoError(t, storage.Set(ctx, "s1", SlotProducts, `[{"product":{"id":"p1","price":50},"quantity":1}]`))
	require.NoError(t, storage.Set(ctx, "s1", SlotPosts, `"not a list"`))

	s := Load(ctx, discardLogger(), storage, "s1")
	snap := s.Snapshot()

	require.Empty(t, snap.Books)
	require.Len(t, snap.Products, 1)
	require.Empty(t, snap.Posts)
	require.Equal(t, int64(50), snap.Total())
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	s := Load(ctx, discardLogger(), storage, "s1")
	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)

	require.NoError(t, s.Clear(ctx))
	first := s.Snapshot()
	require.NoError(t, s.Clear(ctx))
	second := s.Snapshot()

	require.Equal(t, first, second)
	require.True(t, second.Empty())
	require.True(t, second.Visible, "clear leaves visibility alone")

	for _, slot := range []string{SlotBooks, SlotProducts, SlotPosts} {
		raw, ok, err := storage.Get(ctx, "s1", slot)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "[]", raw)
	}
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{}
	s := Load(ctx, discardLogger(), storage, "s1")

	snap, err := s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	require.Error(t, err)
	require.Empty(t, domain.Code(err))
	require.Len(t, snap.Books, 1)
	require.Len(t, s.Snapshot().Books, 1)
	require.Equal(t, 1, storage.writes)
}

func TestClearWritesRemainingSlotsAfterFailure(t *testing.T) {
	ctx := context.Background()
	storage := slotFailingStorage{Storage: memory.NewStorage(), slot: SlotBooks}
	s := Load(ctx, discardLogger(), storage, "s1")
	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	_, _ = s.AddProductLine(ctx, domain.Product{ID: "p1", Name: "Lab Coat", Price: 600})
	_, _, _ = s.AddPendingPost(ctx, domain.CategoryHelp, "need notes", "Hamza")

	err := s.Clear(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), SlotBooks)
	require.True(t, s.Snapshot().Empty())

	for _, slot := range []string{SlotProducts, SlotPosts} {
		raw, ok, err := storage.Get(ctx, "s1", slot)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "[]", raw, slot)
	}
}

func TestClearDispatchedKeepsLaterLines(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	s := Load(ctx, discardLogger(), storage, "s1")
	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	_, _ = s.AddProductLine(ctx, domain.Product{ID: "p1", Name: "Lab Coat", Price: 600})
	sent, _, _ := s.AddPendingPost(ctx, domain.CategoryHelp, "need notes", "Hamza")
	snap := s.Snapshot()

	// changes made while the order was going out
	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)
	_, _ = s.AddProductLine(ctx, domain.Product{ID: "p2", Name: "Scarf", Price: 300})
	late, _, _ := s.AddPendingPost(ctx, domain.CategoryHelp, "need slides", "Hamza")

	require.NoError(t, s.ClearDispatched(ctx, snap))
	got := s.Snapshot()

	require.Len(t, got.Books, 1)
	require.Equal(t, 1, got.Books[0].Quantity)
	require.Len(t, got.Products, 1)
	require.Equal(t, "p2", got.Products[0].Product.ID)
	require.Len(t, got.Posts, 1)
	require.Equal(t, late.ID, got.Posts[0].ID)
	require.NotEqual(t, sent.ID, got.Posts[0].ID)

	reloaded := Load(ctx, discardLogger(), storage, "s1").Snapshot()
	require.Equal(t, got.Books, reloaded.Books)
	require.Equal(t, got.Products, reloaded.Products)
	require.Len(t, reloaded.Posts, 1)
}

func TestClearDispatchedWithNothingAddedEmptiesCart(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, discardLogger(), memory.NewStorage(), "s1")
	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeRent, domain.Rent14Days)
	_, _ = s.AddBookLine(ctx, book("b1"), domain.ModeBuy, 0)

	require.NoError(t, s.ClearDispatched(ctx, s.Snapshot()))
	require.True(t, s.Snapshot().Empty())
}

func TestRegistryCapsCachedStores(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(discardLogger(), memory.NewStorage(), 2, time.Hour)

	first := reg.Get(ctx, "s1")
	reg.Get(ctx, "s2")
	reg.Get(ctx, "s3")

	require.Equal(t, 2, reg.Len())
	require.NotSame(t, first, reg.Get(ctx, "s1"), "least recently used session is evicted")
}

func TestRegistryDropsIdleStores(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	reg := NewRegistry(discardLogger(), storage, 10, 50*time.Millisecond)

	s := reg.Get(ctx, "s1")
	_, err := s.AddProductLine(ctx, domain.Product{ID: "p1", Name: "Lab Coat", Price: 600})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	reloaded := reg.Get(ctx, "s1")
	require.NotSame(t, s, reloaded)
	require.Len(t, reloaded.Snapshot().Products, 1, "evicted carts reload from storage")
}

func TestVisibilityAndDraft(t *testing.T) {
	s := Load(context.Background(), discardLogger(), memory.NewStorage(), "s1")

	require.True(t, s.ToggleVisible())
	require.False(t, s.ToggleVisible())
	s.SetVisible(true)
	require.True(t, s.Snapshot().Visible)

	s.SetCustomerDraft(domain.CustomerInfo{Name: "Ayesha", Type: "college"})
	require.Equal(t, "Ayesha", s.Snapshot().Customer.Name)
	s.ResetCustomerDraft()
	require.True(t, s.Snapshot().Customer.IsZero())
}
