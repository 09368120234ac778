package invoice

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

type Handler struct {
	svc       *invoice.Service
	formatter render.Formatter
}

func NewHandler(svc *invoice.Service, f render.Formatter) *Handler {
	return &Handler{svc: svc, formatter: f}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Delete("/", h.deleteAll)
	r.Get("/stats", h.stats)
	r.Get("/number/{number}", h.getByNumber)
	r.Get("/number/{number}/html", h.html)
	r.Get("/number/{number}/pdf", h.pdf)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sortBy, err := invoice.ParseSortBy(r.URL.Query().Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	invs, err := h.svc.Query(r.Context(), auth.UserFromContext(r.Context()), invoice.Query{
		Search: r.URL.Query().Get("q"),
		SortBy: sortBy,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(invs))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	invs, err := h.svc.List(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStatsResponse(invoice.Summarize(invs)))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.GetByID(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(inv))
}

func (h *Handler) byNumber(w http.ResponseWriter, r *http.Request) (*invoice.Invoice, bool) {
	inv, err := h.svc.GetByNumber(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "number"))
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return inv, true
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.byNumber(w, r)
	if !ok {
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(inv))
}

func (h *Handler) html(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.byNumber(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := render.HTML(w, inv, h.formatter); err != nil {
		respond.Error(w, r, err)
	}
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.byNumber(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.PDFName(inv)))

	if err := render.PDF(w, inv, h.formatter); err != nil {
		respond.Error(w, r, err)
	}
}

type itemRequest struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type updateInvoiceRequest struct {
	CustomerName    *string          `json:"customer_name,omitempty"`
	CustomerPhone   *string          `json:"customer_phone,omitempty"`
	CustomerAddress *string          `json:"customer_address,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	Items           []itemRequest    `json:"items,omitempty"`
}

func (req updateInvoiceRequest) params() invoice.UpdateParams {
	p := invoice.UpdateParams{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
		Tax:             req.Tax,
	}

	if req.Items != nil {
		p.Items = make([]invoice.LineItem, len(req.Items))
		for i, it := range req.Items {
			id := it.ID
			if id == "" {
				id = uuid.NewString()
			}

			p.Items[i] = invoice.LineItem{
				ID:          id,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
			}
		}
	}

	return p
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Update(r.Context(), auth.UserFromContext(r.Context()), id, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type deleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAll(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, deleteAllResponse{Deleted: n})
}
