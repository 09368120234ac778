package client_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	clienthttp "github.com/MrJamesThe3rd/invoicer/internal/http/client"
)

func TestHandler(t *testing.T) {
	user := &auth.User{ID: uuid.New()}
	last := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	type testCase struct {
		name       string
		path       string
		setupMock  func(m *client.MockRepository)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "List",
			path: "/clients",
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().ListClients(gomock.Any(), user.ID).Return([]client.Client{
					{Name: "Ada Obi", Phone: "0803", InvoiceCount: 2, LastInvoiceAt: last},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"name":"Ada Obi","phone":"0803","invoice_count":2,"last_invoice_at":"2024-03-01T09:00:00Z"}]`,
		},
		{
			name: "Suggest",
			path: "/clients/suggest?q=ad",
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().FindClients(gomock.Any(), user.ID, "ad", client.SuggestLimit).Return([]client.Client{
					{Name: "Ada Obi", Address: "Lekki", InvoiceCount: 1, LastInvoiceAt: last},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"name":"Ada Obi","address":"Lekki","invoice_count":1,"last_invoice_at":"2024-03-01T09:00:00Z"}]`,
		},
		{
			name:       "SuggestBlank",
			path:       "/clients/suggest?q=%20",
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name: "StoreError",
			path: "/clients",
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().ListClients(gomock.Any(), user.ID).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := client.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			r := chi.NewRouter()
			r.Route("/clients", clienthttp.NewHandler(client.NewService(repo)).Routes)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = req.WithContext(auth.WithUser(req.Context(), user))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
