package store_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
)

var columns = []string{
	"id", "user_id", "invoice_number", "customer_name", "customer_phone", "customer_address",
	"items", "subtotal", "tax", "tax_amount", "total_amount", "company_info", "notes", "created_at", "updated_at",
}

func newStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db), mock
}

func row(rows *sqlmock.Rows, id, userID uuid.UUID, number string, company any) *sqlmock.Rows {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := `[{"id":"1","product_name":"Goat milk soap","quantity":2,"unit_price":"2500","total":"5000"}]`

	return rows.AddRow(
		id.String(), userID.String(), number, "Ada", "08031234567", "Lagos",
		[]byte(items), "5000", "10", "500", "5500", company, "thanks", now, now,
	)
}

func TestStore_CreateInvoice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, mock := newStore(t)
		id := uuid.New()
		now := time.Now()

		inv := &invoice.Invoice{
			UserID:        uuid.New(),
			InvoiceNumber: "INV-1",
			CustomerName:  "Ada",
			Items:         []invoice.LineItem{{ID: "1", ProductName: "Soap", Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
			CompanyInfo:   &invoice.CompanyInfo{Name: "Glow"},
		}
		inv.ApplyTotals()

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
			WithArgs(inv.UserID, "INV-1", "Ada", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), []byte(`{"name":"Glow","address":"","phone":""}`), "", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

		require.NoError(t, s.CreateInvoice(context.Background(), inv))
		assert.Equal(t, id, inv.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateNumber", func(t *testing.T) {
		s, mock := newStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := s.CreateInvoice(context.Background(), &invoice.Invoice{InvoiceNumber: "INV-1"})
		assert.ErrorIs(t, err, invoice.ErrDuplicateNumber)
	})
}

func TestStore_ListInvoices(t *testing.T) {
	s, mock := newStore(t)
	userID := uuid.New()

	rows := sqlmock.NewRows(columns)
	row(rows, uuid.New(), userID, "INV-2", []byte(`{"name":"Glow","address":"Ikeja","phone":"0803"}`))
	row(rows, uuid.New(), userID, "INV-1", nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices")).
		WithArgs(userID).
		WillReturnRows(rows)

	got, err := s.ListInvoices(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "INV-2", first.InvoiceNumber)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "Goat milk soap", first.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(5500).Equal(first.TotalAmount))
	require.NotNil(t, first.CompanyInfo)
	assert.Equal(t, "Ikeja", first.CompanyInfo.Address)
	assert.NoError(t, first.CheckTotals())

	assert.Nil(t, got[1].CompanyInfo)
}

func TestStore_GetInvoiceByNumber(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		s, mock := newStore(t)
		userID := uuid.New()
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("invoice_number = $1 AND user_id = $2")).
			WithArgs("INV-7", userID).
			WillReturnRows(row(sqlmock.NewRows(columns), id, userID, "INV-7", nil))

		got, err := s.GetInvoiceByNumber(context.Background(), userID, "INV-7")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		s, mock := newStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM invoices")).WillReturnError(sql.ErrNoRows)

		_, err := s.GetInvoiceByNumber(context.Background(), uuid.New(), "INV-404")
		assert.ErrorIs(t, err, invoice.ErrNotFound)
	})
}

func TestStore_UpdateInvoice_NotFound(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE invoices")).WillReturnError(sql.ErrNoRows)

	err := s.UpdateInvoice(context.Background(), &invoice.Invoice{ID: uuid.New(), UserID: uuid.New()})
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestStore_DeleteInvoice(t *testing.T) {
	type testCase struct {
		name     string
		affected int64
		wantErr  error
	}

	tests := []testCase{
		{name: "Deleted", affected: 1},
		{name: "Missing", affected: 0, wantErr: invoice.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStore(t)
			userID, id := uuid.New(), uuid.New()

			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoices WHERE id = $1 AND user_id = $2")).
				WithArgs(id, userID).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := s.DeleteInvoice(context.Background(), userID, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestStore_DeleteAllInvoices(t *testing.T) {
	s, mock := newStore(t)
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoices WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteAllInvoices(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestStore_Import(t *testing.T) {
	s, mock := newStore(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND invoice_number IN ($2, $3)")).
		WithArgs(userID, "INV-1", "INV-2").
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.NewString(), now, now))
	mock.ExpectCommit()

	ctx := context.Background()

	itx, err := s.BeginImport(ctx, userID)
	require.NoError(t, err)

	existing, err := itx.FindByNumbers(ctx, []string{"INV-1", "INV-2"})
	require.NoError(t, err)
	assert.Empty(t, existing)

	inv := &invoice.Invoice{UserID: userID, InvoiceNumber: "INV-1", CustomerName: "Ada", CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, itx.CreateInvoices(ctx, []*invoice.Invoice{inv}))
	require.NoError(t, itx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ImportConflictsAreTheUsersOwn(t *testing.T) {
	s, mock := newStore(t)
	user := &auth.User{ID: uuid.New()}
	existingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND invoice_number IN ($2, $3)")).
		WithArgs(user.ID, "INV-1", "INV-2").
		WillReturnRows(row(sqlmock.NewRows(columns), existingID, user.ID, "INV-2", nil))
	mock.ExpectRollback()

	lines := []invoice.LineItem{{ID: "1", ProductName: "Soap", Quantity: 1, UnitPrice: decimal.NewFromInt(850)}}

	got, err := invoice.NewService(s).ImportBatch(context.Background(), user, []invoice.CreateParams{
		{InvoiceNumber: "INV-1", CustomerName: "Ada", Items: lines},
		{InvoiceNumber: "INV-2", CustomerName: "Ada", Items: lines},
	})
	require.NoError(t, err)
	assert.Empty(t, got.Imported)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, existingID, got.Conflicts[0].Existing.ID)
	assert.Equal(t, user.ID, got.Conflicts[0].Existing.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
