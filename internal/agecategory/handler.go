// AngelaMos | 2026
// handler.go

package agecategory

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/membership/internal/core"
)

type CategoryResponse struct {
	Age       int       `json:"age"`
	Count     int       `json:"count"`
	Cap       int       `json:"cap"`
	Unlocked  bool      `json:"unlocked"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects r to already be guarded by the internal API key.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/age-categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/{age}/increment", h.Increment)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	resp := ListResponse{Categories: make([]CategoryResponse, 0, len(categories))}
	for i := range categories {
		resp.Categories = append(resp.Categories, toResponse(&categories[i]))
	}

	core.OK(w, resp)
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(chi.URLParam(r, "age"))
	if err != nil {
		core.BadRequest(w, "age must be an integer")
		return
	}

	category, err := h.service.Increment(r.Context(), age)
	if err != nil {
		if errors.Is(err, ErrInvalidAge) {
			core.BadRequest(w, "age must be between 1 and 130")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toResponse(category))
}

func toResponse(c *Category) CategoryResponse {
	return CategoryResponse{
		Age:       c.Age,
		Count:     c.Count,
		Cap:       c.Cap,
		Unlocked:  c.Unlocked,
		UpdatedAt: c.UpdatedAt,
	}
}
