package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cartapp "github.com/dmehra2102/potter-book-bank/internal/cart/application"
	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/google/uuid"
)

// ModerationQueue accepts posts for review before they appear on the board.
type ModerationQueue interface {
	Enqueue(ctx context.Context, post cart.PendingPost, anonymous bool) error
}

type Submission struct {
	Category    cart.ExploreCategory
	Content     string
	AuthorName  string
	IsAnonymous bool
}

type Service struct {
	log   *slog.Logger
	queue ModerationQueue
	now   func() time.Time
}

func NewService(log *slog.Logger, queue ModerationQueue) *Service {
	return &Service{log: log, queue: queue, now: func() time.Time { return time.Now().UTC() }}
}

// Submit queues the post for moderation and then mirrors it into the cart.
// When the queue rejects it the cart is left untouched.
func (s *Service) Submit(ctx context.Context, store *cartapp.Store, sub Submission) (cart.PendingPost, error) {
	author := strings.TrimSpace(sub.AuthorName)
	if sub.IsAnonymous {
		author = cart.AnonymousAuthor
	}
	post, err := cart.NewPendingPost(uuid.NewString(), sub.Category, sub.Content, author, s.now())
	if err != nil {
		return cart.PendingPost{}, err
	}

	if err := s.queue.Enqueue(ctx, post, sub.IsAnonymous); err != nil {
		s.log.Error("explore post enqueue failed", "post_id", post.ID, "err", err)
		return cart.PendingPost{}, fmt.Errorf("enqueue post: %w", err)
	}
	s.log.Info("explore post queued", "post_id", post.ID, "category", post.Category, "session_id", store.SessionID())

	if _, err := store.AppendPendingPost(ctx, post); err != nil {
		// the post is queued; only the cart copy is missing
		s.log.Warn("explore post not mirrored into cart", "post_id", post.ID, "err", err)
	}
	return post, nil
}
