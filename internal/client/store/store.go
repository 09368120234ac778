package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/client"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// latestPerClient keeps the newest invoice of each customer name, ignoring case and padding.
const latestPerClient = `
	SELECT DISTINCT ON (LOWER(TRIM(customer_name)))
		TRIM(customer_name) AS name, customer_phone, customer_address,
		COUNT(*) OVER (PARTITION BY LOWER(TRIM(customer_name))) AS invoice_count,
		created_at
	FROM invoices
	WHERE user_id = $1 AND TRIM(customer_name) <> ''
`

func (s *Store) ListClients(ctx context.Context, userID uuid.UUID) ([]client.Client, error) {
	query := latestPerClient + `
		ORDER BY LOWER(TRIM(customer_name)), created_at DESC`

	return s.query(ctx, query, userID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) FindClients(ctx context.Context, userID uuid.UUID, prefix string, limit int) ([]client.Client, error) {
	query := `SELECT name, customer_phone, customer_address, invoice_count, created_at FROM (` +
		latestPerClient + `
			AND TRIM(customer_name) ILIKE $2 || '%'
			ORDER BY LOWER(TRIM(customer_name)), created_at DESC
		) c
		ORDER BY created_at DESC
		LIMIT $3`

	return s.query(ctx, query, userID, likeEscaper.Replace(prefix), limit)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]client.Client, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []client.Client

	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.Name, &c.Phone, &c.Address, &c.InvoiceCount, &c.LastInvoiceAt); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}

	return clients, nil
}
