package export_test

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	exporthttp "github.com/MrJamesThe3rd/invoicer/internal/http/export"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

func TestHandler_Download(t *testing.T) {
	user := &auth.User{ID: uuid.New()}

	inv := &invoice.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-1",
		CustomerName:  "Ada Obi",
		Items:         []invoice.LineItem{{ID: "1", ProductName: "Soap", Quantity: 1, UnitPrice: decimal.NewFromInt(850)}},
		CreatedAt:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	inv.ApplyTotals()

	type testCase struct {
		name       string
		body       string
		user       *auth.User
		listed     bool
		wantStatus int
	}

	tests := []testCase{
		{name: "EmptyBody", body: "", user: user, listed: true, wantStatus: http.StatusOK},
		{name: "Filtered", body: `{"q": "ada", "sort": "amount"}`, user: user, listed: true, wantStatus: http.StatusOK},
		{name: "BadSort", body: `{"sort": "name"}`, user: user, wantStatus: http.StatusBadRequest},
		{name: "BadJSON", body: `{`, user: user, wantStatus: http.StatusBadRequest},
		{name: "SignedOut", body: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := invoice.NewMockRepository(ctrl)

			if tt.listed {
				repo.EXPECT().ListInvoices(gomock.Any(), user.ID).Return([]*invoice.Invoice{inv}, nil)
			}

			r := chi.NewRouter()
			r.Route("/export", exporthttp.NewHandler(export.NewService(invoice.NewService(repo), render.DefaultFormatter)).Routes)

			req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(tt.body))
			if tt.user != nil {
				req = req.WithContext(auth.WithUser(req.Context(), tt.user))
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				return
			}

			assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
			assert.Equal(t, "1", rec.Header().Get("X-Invoice-Count"))

			zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
			require.NoError(t, err)

			names := make([]string, len(zr.File))
			for i, f := range zr.File {
				names[i] = f.Name
			}

			assert.Equal(t, []string{"invoices/INV-1.pdf", export.SummaryName, export.WorkbookName}, names)
		})
	}
}
