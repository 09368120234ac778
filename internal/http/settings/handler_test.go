package settings_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	settingshttp "github.com/MrJamesThe3rd/invoicer/internal/http/settings"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

func do(h http.Handler, user *auth.User, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/settings/company", strings.NewReader(body))
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Company(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/settings", settingshttp.NewHandler(settings.New(kv.NewMemory())).Routes)

	ada := &auth.User{ID: uuid.New()}
	bola := &auth.User{ID: uuid.New()}

	rec := do(r, ada, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name": "Your Company", "address": "", "phone": ""}`, rec.Body.String())

	rec = do(r, ada, http.MethodPut, `{"name": "Glow Naturals", "address": "Lekki", "phone": "0800"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, ada, http.MethodPut, `{"name": "Glow Naturals Ltd", "address": "Lekki", "phone": "0800"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, ada, http.MethodGet, "")
	assert.JSONEq(t, `{"name": "Glow Naturals Ltd", "address": "Lekki", "phone": "0800"}`, rec.Body.String())

	rec = do(r, bola, http.MethodGet, "")
	assert.Contains(t, rec.Body.String(), "Your Company")

	rec = do(r, ada, http.MethodPut, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, nil, http.MethodGet, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
