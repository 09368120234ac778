package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{category}", h.get)
}

type productResponse struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type categoryResponse struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Products []productResponse `json:"products"`
}

func toResponse(c catalog.Category) categoryResponse {
	resp := categoryResponse{
		Key:      c.Key,
		Label:    c.Label,
		Products: make([]productResponse, len(c.Products)),
	}

	for i, p := range c.Products {
		resp.Products[i] = productResponse{Name: p.Name, Price: p.Price}
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	categories := catalog.Categories()

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, ok := catalog.CategoryByKey(chi.URLParam(r, "category"))
	if !ok {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}
