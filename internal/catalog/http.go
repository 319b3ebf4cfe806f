package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductDesk/internal/auth"
	"ProductDesk/internal/product"
	"ProductDesk/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger

	// Tokens, when set, guards the mutating routes.
	Tokens *auth.TokenMaker
	// WriteLimiter, when set, rate limits the mutating routes per client IP.
	WriteLimiter *kit.IPRateLimiter
}

type ratingView struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type productView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Price        float64    `json:"price"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Image        string     `json:"image"`
	Rating       ratingView `json:"rating"`
	Availability string     `json:"availability"`
}

func view(p product.Product) productView {
	return productView{
		ID:           p.ID,
		Title:        p.Title,
		Price:        p.Price,
		Description:  p.Description,
		Category:     p.Category,
		Image:        p.Image,
		Rating:       ratingView{Rate: p.Rating, Count: p.RatingCount},
		Availability: string(p.Availability),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.logger().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	r.Group(func(wr chi.Router) {
		if s.WriteLimiter != nil {
			wr.Use(s.WriteLimiter.Middleware)
		}
		if s.Tokens != nil {
			wr.Use(RequireWriter(s.Tokens))
		}
		wr.Post("/products", s.create)
		wr.Put("/products/{id}", s.update)
		wr.Delete("/products/{id}", s.delete)
	})

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListSortedByID(r.Context())
	if err != nil {
		s.logger().Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, view(p))
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.logger().Error("get product failed", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, view(p))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}
	p.ID = "p_" + uuid.NewString()
	p.Rating, p.RatingCount = 0, 0

	if err := s.Store.Create(r.Context(), p); err != nil {
		s.writeStoreError(w, r, "create", p.ID, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, view(p))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}
	p.ID = chi.URLParam(r, "id")

	out, err := s.Store.Update(r.Context(), p)
	if err != nil {
		s.writeStoreError(w, r, "update", p.ID, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, view(out))
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	out, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, "delete", id, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, view(out))
}

// decodeProduct writes a 400 and reports false when the body is not a
// valid product.
func (s *Server) decodeProduct(w http.ResponseWriter, r *http.Request) (product.Product, bool) {
	raw, err := kit.ReadBody(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return product.Product{}, false
	}

	p, err := product.Parse(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return product.Product{}, false
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if !p.Validate() {
		kit.WriteError(w, r, http.StatusBadRequest, "title, category and a non-negative price are required", nil)
		return product.Product{}, false
	}

	if p.InStock() {
		p.Availability = product.InStock
	} else {
		p.Availability = product.OutOfStock
	}
	return p, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, op, id string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
	case errors.Is(err, ErrExists):
		kit.WriteError(w, r, http.StatusConflict, "already exists", map[string]any{"id": id})
	case errors.Is(err, context.DeadlineExceeded):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.logger().Error(op+" product failed", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
