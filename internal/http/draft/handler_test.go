package draft_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	drafthttp "github.com/MrJamesThe3rd/invoicer/internal/http/draft"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

const soap = "Carotone Brightening Soap (190g / 6.7oz)"

var user = &auth.User{ID: uuid.New()}

type draftBody struct {
	ID    uuid.UUID `json:"id"`
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Subtotal    string `json:"subtotal"`
	TotalAmount string `json:"total_amount"`
	Applied     *bool  `json:"applied"`
}

func setup(t *testing.T) (http.Handler, *invoice.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	store := kv.NewMemory()

	submitter := builder.NewSubmitter(invoice.NewService(repo), settings.New(store),
		builder.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))

	r := chi.NewRouter()
	r.Route("/drafts", drafthttp.NewHandler(builder.NewService(builder.NewDraftStore(store), submitter)).Routes)

	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, draftBody) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var got draftBody
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	}

	return rec, got
}

func TestHandler_DraftFlow(t *testing.T) {
	h, repo := setup(t)

	rec, d := do(t, h, http.MethodPost, "/drafts", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	base := "/drafts/" + d.ID.String()

	rec, _ = do(t, h, http.MethodPost, base+"/submit", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer name required")

	rec, _ = do(t, h, http.MethodPut, base, `{"customer_name": "Ada Obi", "tax": "10"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPut, base, `{"tax": "101"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	item := `{"category": "` + catalog.CategorySoaps + `", "product_name": "` + soap + `", "quantity": 2}`

	rec, d = do(t, h, http.MethodPost, base+"/items", item)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, d.Applied)
	assert.True(t, *d.Applied)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "1700", d.Subtotal)

	rec, d = do(t, h, http.MethodPost, base+"/items", `{"category": "soaps", "product_name": "Unknown", "quantity": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *d.Applied)
	assert.Len(t, d.Items, 1)

	itemID := d.Items[0].ID

	rec, d = do(t, h, http.MethodPatch, base+"/items/"+itemID, `{"quantity": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *d.Applied)
	assert.Equal(t, "2805", d.TotalAmount)

	rec, d = do(t, h, http.MethodPatch, base+"/items/"+itemID, `{"quantity": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *d.Applied)
	assert.Equal(t, 3, d.Items[0].Quantity)

	repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
		assert.Equal(t, "INV-1700000000000", inv.InvoiceNumber)
		assert.Equal(t, settings.DefaultName, inv.CompanyInfo.Name)
		inv.ID = uuid.New()

		return nil
	})

	rec, _ = do(t, h, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invoice_number":"INV-1700000000000"`)

	rec, _ = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_RemoveAndDiscard(t *testing.T) {
	h, _ := setup(t)

	_, d := do(t, h, http.MethodPost, "/drafts", "")
	base := "/drafts/" + d.ID.String()

	_, d = do(t, h, http.MethodPost, base+"/items", `{"category": "soaps", "product_name": "`+soap+`", "quantity": 1}`)
	require.Len(t, d.Items, 1)

	rec, d := do(t, h, http.MethodDelete, base+"/items/"+d.Items[0].ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *d.Applied)
	assert.Empty(t, d.Items)

	rec, d = do(t, h, http.MethodDelete, base+"/items/missing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *d.Applied)

	rec, _ = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/drafts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
