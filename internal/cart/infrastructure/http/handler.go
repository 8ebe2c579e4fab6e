package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmehra2102/potter-book-bank/internal/cart/application"
	"github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/dmehra2102/potter-book-bank/internal/session"
	"github.com/dmehra2102/potter-book-bank/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	log      *slog.Logger
	carts    *application.Registry
	validate *validator.Validate
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, carts *application.Registry) *Handler {
	return &Handler{
		log:      log,
		carts:    carts,
		validate: validator.New(),
		tracer:   otel.Tracer("cart-http"),
	}
}

type addBookReq struct {
	Book         domain.Book `json:"book"`
	PurchaseType string      `json:"purchaseType" validate:"required,oneof=buy rent"`
	RentDuration int         `json:"rentDuration" validate:"omitempty,oneof=7 14 30"`
}

type addProductReq struct {
	Product domain.Product `json:"product"`
}

type quantityReq struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type visibilityReq struct {
	Visible *bool `json:"visible"`
}

type customerReq struct {
	Type       string `json:"type" validate:"omitempty,oneof=college outsider"`
	Semester   string `json:"semester" validate:"max=20"`
	Department string `json:"department" validate:"max=100"`
	Name       string `json:"name" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=20"`
}

type cartView struct {
	domain.Snapshot
	Total     int64 `json:"total"`
	ItemCount int   `json:"itemCount"`
}

func view(s domain.Snapshot) cartView {
	return cartView{Snapshot: s, Total: s.Total(), ItemCount: s.ItemCount()}
}

// Routes is mounted under /cart.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)

	r.Post("/books", h.addBook)
	r.Patch("/books/{id}", h.updateBook)
	r.Delete("/books/{id}", h.removeBook)

	r.Post("/products", h.addProduct)
	r.Patch("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.removeProduct)

	r.Delete("/posts/{id}", h.removePost)

	r.Post("/visibility", h.setVisibility)
	r.Put("/customer", h.setCustomer)

	return r
}

func (h *Handler) store(ctx context.Context) *application.Store {
	return h.carts.Get(ctx, session.ID(ctx))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, view(h.store(r.Context()).Snapshot()))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ClearCart")
	defer span.End()

	s := h.store(ctx)
	if err := s.Clear(ctx); err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(s.Snapshot()))
}

func (h *Handler) addBook(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddBook")
	defer span.End()

	var req addBookReq
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.String("book.id", req.Book.ID), attribute.String("purchase_type", req.PurchaseType))

	snap, err := h.store(ctx).AddBookLine(ctx, req.Book, domain.PurchaseMode(req.PurchaseType), domain.RentDuration(req.RentDuration))
	if err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(snap))
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateBookQuantity")
	defer span.End()

	var req quantityReq
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.store(ctx).UpdateBookQuantity(ctx, chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(snap))
}

func (h *Handler) removeBook(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveBook")
	defer span.End()

	snap, err := h.store(ctx).RemoveBookLine(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(snap))
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddProduct")
	defer span.End()

	var req addProductReq
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.store(ctx).AddProductLine(ctx, req.Product)
	if err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(snap))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProductQuantity")
	defer span.End()

	var req quantityReq
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.store(ctx).UpdateProductQuantity(ctx, chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(snap))
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveProduct")
	defer span.End()

	snap, err := h.store(ctx).RemoveProductLine(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(snap))
}

func (h *Handler) removePost(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemovePendingPost")
	defer span.End()

	snap, err := h.store(ctx).RemovePendingPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, span, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view(snap))
}

// setVisibility sets the panel flag, or toggles it when no value is given.
func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityReq
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, h.validate, &req); err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	s := h.store(r.Context())
	var visible bool
	if req.Visible != nil {
		s.SetVisible(*req.Visible)
		visible = *req.Visible
	} else {
		visible = s.ToggleVisible()
	}
	httpx.JSON(w, http.StatusOK, httpx.Map{"visible": visible})
}

func (h *Handler) setCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerReq
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	info := domain.CustomerInfo(req)
	h.store(r.Context()).SetCustomerDraft(info)
	httpx.JSON(w, http.StatusOK, info)
}

func (h *Handler) fail(w http.ResponseWriter, span trace.Span, err error) {
	switch domain.Code(err) {
	case domain.CodeInvalidArgument:
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case domain.CodeNotFound:
		httpx.Error(w, http.StatusNotFound, err.Error())
	default:
		span.RecordError(err)
		h.log.Error("cart request failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "cart could not be saved")
	}
}
