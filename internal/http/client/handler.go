package client

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
)

type Handler struct {
	svc *client.Service
}

func NewHandler(svc *client.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
}

type clientResponse struct {
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	InvoiceCount  int       `json:"invoice_count"`
	LastInvoiceAt time.Time `json:"last_invoice_at"`
}

func toResponseList(clients []client.Client) []clientResponse {
	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = clientResponse{
			Name:          c.Name,
			Phone:         c.Phone,
			Address:       c.Address,
			InvoiceCount:  c.InvoiceCount,
			LastInvoiceAt: c.LastInvoiceAt,
		}
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.List(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(clients))
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.Suggest(r.Context(), auth.UserFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(clients))
}
