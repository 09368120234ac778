package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

type Handler struct {
	store *settings.Store
}

func NewHandler(store *settings.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/company", h.getCompany)
	r.Put("/company", h.putCompany)
}

// scope keeps each user's company details apart.
func scope(r *http.Request) (string, error) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		return "", invoice.ErrUnauthenticated
	}

	return u.ID.String(), nil
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	s, err := scope(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	info, err := h.store.Get(r.Context(), s)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, info)
}

func (h *Handler) putCompany(w http.ResponseWriter, r *http.Request) {
	s, err := scope(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var info invoice.CompanyInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.Save(r.Context(), s, info); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, info)
}
