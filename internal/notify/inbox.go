// Package notify queues advisories for a browser session. Advisories never
// block the flow that raised them; the browser drains them on its next poll.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

type Advisory struct {
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	OrderID   string    `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink receives advisories raised outside the request that caused them.
type Sink interface {
	Advise(ctx context.Context, sessionID string, a Advisory)
}

// Inbox is an in-process Sink with a bounded queue per session.
type Inbox struct {
	log   *slog.Logger
	limit int

	mu    sync.Mutex
	boxes map[string][]Advisory
}

func NewInbox(log *slog.Logger, limit int) *Inbox {
	if limit <= 0 {
		limit = 20
	}
	return &Inbox{log: log, limit: limit, boxes: make(map[string][]Advisory)}
}

func (in *Inbox) Advise(_ context.Context, sessionID string, a Advisory) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	in.mu.Lock()
	box := append(in.boxes[sessionID], a)
	if len(box) > in.limit {
		box = box[len(box)-in.limit:]
	}
	in.boxes[sessionID] = box
	in.mu.Unlock()

	in.log.Info("advisory queued", "session_id", sessionID, "level", a.Level, "title", a.Title)
}

// Drain returns and forgets the session's pending advisories.
func (in *Inbox) Drain(sessionID string) []Advisory {
	in.mu.Lock()
	defer in.mu.Unlock()
	box := in.boxes[sessionID]
	delete(in.boxes, sessionID)
	if box == nil {
		return []Advisory{}
	}
	return box
}
