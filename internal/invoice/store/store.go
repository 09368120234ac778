package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, user_id, invoice_number, customer_name, customer_phone, customer_address,
	items, subtotal, tax, tax_amount, total_amount, company_info, notes, created_at, updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var items, company []byte

	if err := s.Scan(
		&inv.ID, &inv.UserID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerPhone, &inv.CustomerAddress,
		&items, &inv.Subtotal, &inv.Tax, &inv.TaxAmount, &inv.TotalAmount, &company, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, fmt.Errorf("decoding items of %s: %w", inv.InvoiceNumber, err)
		}
	}

	if len(company) > 0 && string(company) != "null" {
		inv.CompanyInfo = &invoice.CompanyInfo{}
		if err := json.Unmarshal(company, inv.CompanyInfo); err != nil {
			return nil, fmt.Errorf("decoding company info of %s: %w", inv.InvoiceNumber, err)
		}
	}

	return &inv, nil
}

// encodeJSONB returns the JSONB column values for items and company info.
func encodeJSONB(inv *invoice.Invoice) (items []byte, company []byte, err error) {
	lines := inv.Items
	if lines == nil {
		lines = []invoice.LineItem{}
	}

	items, err = json.Marshal(lines)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding items: %w", err)
	}

	if inv.CompanyInfo != nil {
		company, err = json.Marshal(inv.CompanyInfo)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding company info: %w", err)
		}
	}

	return items, company, nil
}

func mapWriteError(action string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return invoice.ErrDuplicateNumber
	}

	return fmt.Errorf("%s: %w", action, err)
}

const insertInvoice = `
	INSERT INTO invoices (
		user_id, invoice_number, customer_name, customer_phone, customer_address,
		items, subtotal, tax, tax_amount, total_amount, company_info, notes, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13, NOW()), NOW())
	RETURNING id, created_at, updated_at
`

func insert(ctx context.Context, q queryer, inv *invoice.Invoice) error {
	items, company, err := encodeJSONB(inv)
	if err != nil {
		return err
	}

	var createdAt any
	if !inv.CreatedAt.IsZero() {
		createdAt = inv.CreatedAt
	}

	err = q.QueryRowContext(ctx, insertInvoice,
		inv.UserID,
		inv.InvoiceNumber,
		inv.CustomerName,
		inv.CustomerPhone,
		inv.CustomerAddress,
		items,
		inv.Subtotal,
		inv.Tax,
		inv.TaxAmount,
		inv.TotalAmount,
		company,
		inv.Notes,
		createdAt,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return mapWriteError("creating invoice", err)
	}

	return nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return insert(ctx, s.db, inv)
}

func (s *Store) ListInvoices(ctx context.Context, userID uuid.UUID) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return list(ctx, s.db, query, userID)
}

func list(ctx context.Context, q queryer, query string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invs, nil
}

func (s *Store) getOne(ctx context.Context, where string, args ...any) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE ` + where

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	return s.getOne(ctx, `id = $1 AND user_id = $2`, id, userID)
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, userID uuid.UUID, number string) (*invoice.Invoice, error) {
	return s.getOne(ctx, `invoice_number = $1 AND user_id = $2`, number, userID)
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, company, err := encodeJSONB(inv)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET customer_name = $1, customer_phone = $2, customer_address = $3, items = $4,
			subtotal = $5, tax = $6, tax_amount = $7, total_amount = $8, company_info = $9,
			notes = $10, updated_at = NOW()
		WHERE id = $11 AND user_id = $12
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		inv.CustomerName,
		inv.CustomerPhone,
		inv.CustomerAddress,
		items,
		inv.Subtotal,
		inv.Tax,
		inv.TaxAmount,
		inv.TotalAmount,
		company,
		inv.Notes,
		inv.ID,
		inv.UserID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteAllInvoices(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting invoices: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting invoices: %w", err)
	}

	return n, nil
}

func importLockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("invoice-import"))
	h.Write([]byte{0})
	h.Write(userID[:])

	return int64(h.Sum64())
}

type importTx struct {
	tx     *sql.Tx
	userID uuid.UUID
}

// BeginImport opens a transaction holding the user's import lock until commit or rollback.
func (s *Store) BeginImport(ctx context.Context, userID uuid.UUID) (invoice.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(userID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, userID: userID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

// FindByNumbers returns the importing user's invoices carrying any of numbers.
func (itx *importTx) FindByNumbers(ctx context.Context, numbers []string) ([]*invoice.Invoice, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(numbers))
	args := make([]any, 0, len(numbers)+1)
	args = append(args, itx.userID)

	for i, n := range numbers {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, n)
	}

	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE user_id = $1 AND invoice_number IN (` + strings.Join(placeholders, ", ") + `)`

	return list(ctx, itx.tx, query, args...)
}

func (itx *importTx) CreateInvoices(ctx context.Context, invs []*invoice.Invoice) error {
	for _, inv := range invs {
		if err := insert(ctx, itx.tx, inv); err != nil {
			return err
		}
	}

	return nil
}
