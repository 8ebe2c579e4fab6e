package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	cartapp "github.com/dmehra2102/potter-book-bank/internal/cart/application"
	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/dmehra2102/potter-book-bank/internal/checkout/application"
	"github.com/dmehra2102/potter-book-bank/internal/notify"
	"github.com/dmehra2102/potter-book-bank/internal/session"
	"github.com/dmehra2102/potter-book-bank/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const IdempotencyHeader = "Idempotency-Key"

// Deduper rejects repeated checkout submissions carrying the same key. A key
// whose checkout failed is released with Forget so the client can retry it.
type Deduper interface {
	Key(scope, sessionID, clientKey string) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	carts    *cartapp.Registry
	inbox    *notify.Inbox
	dedupe   Deduper
	validate *validator.Validate
	tracer   trace.Tracer
}

// NewHandler wires the checkout routes. dedupe may be nil, in which case the
// Idempotency-Key header is ignored.
func NewHandler(log *slog.Logger, service *application.Service, carts *cartapp.Registry, inbox *notify.Inbox, dedupe Deduper) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		carts:    carts,
		inbox:    inbox,
		dedupe:   dedupe,
		validate: validator.New(),
		tracer:   otel.Tracer("checkout-http"),
	}
}

type checkoutReq struct {
	Customer *customerReq `json:"customerInfo"`
}

type customerReq struct {
	Type       string `json:"type" validate:"omitempty,oneof=college outsider"`
	Semester   string `json:"semester" validate:"max=20"`
	Department string `json:"department" validate:"max=100"`
	Name       string `json:"name" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=20"`
}

// Routes is mounted under /checkout.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.placeOrder)
	r.Get("/advisories", h.advisories)

	return r
}

// linkRecorder is the channel for an HTTP checkout: the browser follows the
// link itself, so opening it only means remembering it for the response.
type linkRecorder struct {
	url string
}

func (l *linkRecorder) Open(_ context.Context, url string) error {
	l.url = url
	return nil
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	sessionID := session.ID(ctx)

	var req checkoutReq
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, h.validate, &req); err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var dedupeKey string
	if key := r.Header.Get(IdempotencyHeader); key != "" && h.dedupe != nil {
		dedupeKey = h.dedupe.Key("checkout", sessionID, key)
		seen, err := h.dedupe.Seen(ctx, dedupeKey)
		if err != nil {
			// a broken dedupe store must not block ordering
			h.log.Warn("idempotency check failed", "err", err)
			dedupeKey = ""
		} else if seen {
			httpx.Error(w, http.StatusConflict, "duplicate checkout")
			return
		}
	}

	store := h.carts.Get(ctx, sessionID)
	customer := store.Snapshot().Customer
	if req.Customer != nil {
		customer = cart.CustomerInfo(*req.Customer)
	}

	ch := &linkRecorder{}
	receipt, err := h.service.PlaceOrder(ctx, store, customer, ch)
	if err != nil {
		if dedupeKey != "" {
			if ferr := h.dedupe.Forget(context.WithoutCancel(ctx), dedupeKey); ferr != nil {
				h.log.Warn("idempotency key release failed", "err", ferr)
			}
		}
		if errors.Is(err, application.ErrEmptyCart) {
			httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		span.RecordError(err)
		h.log.Error("checkout failed", "session_id", sessionID, "err", err)
		httpx.Error(w, http.StatusInternalServerError, "checkout failed")
		return
	}

	if r.URL.Query().Get("redirect") == "1" {
		http.Redirect(w, r, ch.url, http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) advisories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.inbox.Drain(session.ID(r.Context())))
}
