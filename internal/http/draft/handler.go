package draft

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	invoicehttp "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Handler struct {
	svc *builder.Service
}

func NewHandler(svc *builder.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.updateDetails)
	r.Delete("/{id}", h.discard)
	r.Post("/{id}/items", h.addItem)
	r.Patch("/{id}/items/{itemID}", h.updateItem)
	r.Delete("/{id}/items/{itemID}", h.removeItem)
	r.Post("/{id}/submit", h.submit)
}

type draftResponse struct {
	ID              uuid.UUID          `json:"id"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerAddress string             `json:"customer_address"`
	Notes           string             `json:"notes"`
	Tax             decimal.Decimal    `json:"tax"`
	Items           []invoice.LineItem `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
}

// editResponse reports whether an item edit was applied. Rejected edits
// leave the draft unchanged.
type editResponse struct {
	draftResponse
	Applied bool `json:"applied"`
}

func toResponse(d *builder.Draft) draftResponse {
	t := d.Totals()

	items := d.Items
	if items == nil {
		items = []invoice.LineItem{}
	}

	return draftResponse{
		ID:              d.ID,
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		CustomerAddress: d.CustomerAddress,
		Notes:           d.Notes,
		Tax:             d.Tax,
		Items:           items,
		Subtotal:        t.Subtotal,
		TaxAmount:       t.TaxAmount,
		TotalAmount:     t.Total,
	}
}

func draftID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Create(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(d))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	d, err := h.svc.Get(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

type detailsRequest struct {
	CustomerName    *string          `json:"customer_name,omitempty"`
	CustomerPhone   *string          `json:"customer_phone,omitempty"`
	CustomerAddress *string          `json:"customer_address,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
}

func (h *Handler) updateDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.svc.UpdateDetails(r.Context(), auth.UserFromContext(r.Context()), id, builder.DetailsParams{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
		Tax:             req.Tax,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

type addItemRequest struct {
	Category    string `json:"category"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, applied, err := h.svc.AddItem(r.Context(), auth.UserFromContext(r.Context()), id, req.Category, req.ProductName, req.Quantity)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, editResponse{draftResponse: toResponse(d), Applied: applied})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, applied, err := h.svc.UpdateItem(r.Context(), auth.UserFromContext(r.Context()), id, chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, editResponse{draftResponse: toResponse(d), Applied: applied})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	d, applied, err := h.svc.RemoveItem(r.Context(), auth.UserFromContext(r.Context()), id, chi.URLParam(r, "itemID"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, editResponse{draftResponse: toResponse(d), Applied: applied})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	inv, err := h.svc.Submit(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, invoicehttp.ToResponse(inv))
}

func (h *Handler) discard(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Discard(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
