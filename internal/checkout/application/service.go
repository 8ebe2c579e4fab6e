package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cartapp "github.com/dmehra2102/potter-book-bank/internal/cart/application"
	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/dmehra2102/potter-book-bank/internal/checkout/domain"
	"github.com/dmehra2102/potter-book-bank/internal/notify"
	"github.com/dmehra2102/potter-book-bank/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrEmptyCart = errors.New("cart is empty")

type Config struct {
	ChannelBaseURL string
	Recipient      string
	PersistTimeout time.Duration
	Location       *time.Location
}

type Service struct {
	log    *slog.Logger
	repo   OrderRepository
	sink   notify.Sink
	cfg    Config
	tracer trace.Tracer
	now    func() time.Time

	inflight sync.WaitGroup
}

func NewService(log *slog.Logger, repo OrderRepository, sink notify.Sink, cfg Config) *Service {
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 15 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		log:    log,
		repo:   repo,
		sink:   sink,
		cfg:    cfg,
		tracer: otel.Tracer("checkout"),
		now:    time.Now,
	}
}

type Receipt struct {
	OrderID     string           `json:"order_id"`
	RedirectURL string           `json:"redirect_url"`
	Message     string           `json:"message"`
	Total       int64            `json:"total"`
	State       domain.FlowState `json:"state"`
}

// PlaceOrder hands the composed order to the channel, starts a background
// save of the order record and removes the dispatched lines from the cart.
// Lines added while the channel was opening stay in the cart. The save is
// never awaited, and a failed save only produces an advisory.
func (s *Service) PlaceOrder(ctx context.Context, store *cartapp.Store, customer cart.CustomerInfo, ch Channel) (Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder")
	defer span.End()

	placedAt := s.now().In(s.cfg.Location)
	flow := domain.NewFlow(uuid.NewString())
	log := s.log.With("order_id", flow.OrderID, "session_id", store.SessionID())
	span.SetAttributes(attribute.String("order.id", flow.OrderID))

	if err := flow.Advance(domain.StateComposing); err != nil {
		return Receipt{}, err
	}
	snap := store.Snapshot()
	if snap.Empty() {
		return Receipt{}, ErrEmptyCart
	}
	message := Compose(snap, customer, placedAt)
	link, err := DeepLink(s.cfg.ChannelBaseURL, s.cfg.Recipient, message)
	if err != nil {
		log.Error("deep link construction failed", "err", err)
		return Receipt{}, err
	}

	if err := ch.Open(ctx, link); err != nil {
		log.Error("channel open failed", "err", err)
		return Receipt{}, fmt.Errorf("open channel: %w", err)
	}
	if err := flow.Advance(domain.StateDispatchedToChannel); err != nil {
		return Receipt{}, err
	}
	log.Info("order dispatched to channel", "total", snap.Total(), "items", snap.ItemCount())

	order := domain.NewOrder(flow.OrderID, snap, customer, placedAt)
	s.persistDetached(ctx, store.SessionID(), order, len(snap.Posts))
	if err := flow.Advance(domain.StatePersistAttempted); err != nil {
		return Receipt{}, err
	}

	if err := store.ClearDispatched(ctx, snap); err != nil {
		// the dispatched lines are gone in memory; only the stored copy is stale
		log.Warn("cart clear not persisted", "err", err)
	}
	store.ResetCustomerDraft()
	store.SetVisible(false)
	if err := flow.Advance(domain.StateCleared); err != nil {
		return Receipt{}, err
	}

	return Receipt{
		OrderID:     flow.OrderID,
		RedirectURL: link,
		Message:     message,
		Total:       order.Total,
		State:       flow.State,
	}, nil
}

func (s *Service) persistDetached(ctx context.Context, sessionID string, order domain.Order, posts int) {
	event := domain.OrderPlaced{
		OrderID:      order.ID,
		Customer:     order.Customer.Name,
		Phone:        order.Customer.Phone,
		Total:        order.Total,
		Items:        order.Items,
		PendingPosts: posts,
		OrderDate:    order.OrderDate,
	}
	headers := map[string]string{"source": "cart-service", "session_id": sessionID}
	traceparent := tracing.Traceparent(ctx)
	bg := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(bg, s.cfg.PersistTimeout)
		defer cancel()
		ctx, span := s.tracer.Start(ctx, "PersistOrder")
		defer span.End()

		payload, err := json.Marshal(event)
		if err == nil {
			err = s.repo.SaveWithOutbox(ctx, order, domain.EventOrderPlaced, payload, headers, traceparent)
		}
		if err != nil {
			span.RecordError(err)
			s.log.Error("order record save failed", "order_id", order.ID, "err", err)
			s.sink.Advise(ctx, sessionID, notify.Advisory{
				Level:   notify.LevelWarning,
				Title:   "Order sent, record not saved",
				Message: "Your order was sent via WhatsApp, but our backend could not save a copy. The shop will still receive your message.",
				OrderID: order.ID,
			})
			return
		}
		s.log.Info("order record saved", "order_id", order.ID)
	}()
}

// Wait blocks until background saves finish or ctx is done. Only used on shutdown.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
