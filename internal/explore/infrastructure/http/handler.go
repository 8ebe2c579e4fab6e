package http

import (
	"log/slog"
	"net/http"

	cartapp "github.com/dmehra2102/potter-book-bank/internal/cart/application"
	cart "github.com/dmehra2102/potter-book-bank/internal/cart/domain"
	"github.com/dmehra2102/potter-book-bank/internal/explore/application"
	"github.com/dmehra2102/potter-book-bank/internal/session"
	"github.com/dmehra2102/potter-book-bank/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	carts    *cartapp.Registry
	validate *validator.Validate
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, carts *cartapp.Registry) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		carts:    carts,
		validate: validator.New(),
		tracer:   otel.Tracer("explore-http"),
	}
}

type submitReq struct {
	Category    string `json:"category" validate:"required,oneof=books confessions help notices general"`
	Content     string `json:"content" validate:"required"`
	AuthorName  string `json:"authorName" validate:"required_unless=IsAnonymous true"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// Routes is mounted under /explore.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/posts", h.submit)

	return r
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitPost")
	defer span.End()

	var req submitReq
	if err := httpx.Decode(r, h.validate, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	store := h.carts.Get(ctx, session.ID(ctx))
	post, err := h.service.Submit(ctx, store, application.Submission{
		Category:    cart.ExploreCategory(req.Category),
		Content:     req.Content,
		AuthorName:  req.AuthorName,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		if cart.Code(err) == cart.CodeInvalidArgument {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		span.RecordError(err)
		httpx.Error(w, http.StatusBadGateway, "post could not be submitted")
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}
