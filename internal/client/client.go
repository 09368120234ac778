// Package client derives the customer list from stored invoices.
package client

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Client is a distinct customer with the contact details of their latest invoice.
type Client struct {
	Name          string
	Phone         string
	Address       string
	InvoiceCount  int
	LastInvoiceAt time.Time
}

// SuggestLimit caps how many clients Suggest returns.
const SuggestLimit = 5

//go:generate mockgen -source=client.go -destination=repository_mock.go -package=client
type Repository interface {
	// ListClients returns clients sorted by name, ignoring case.
	ListClients(ctx context.Context, userID uuid.UUID) ([]Client, error)
	// FindClients returns clients whose name starts with prefix, most recently billed first.
	FindClients(ctx context.Context, userID uuid.UUID, prefix string, limit int) ([]Client, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, user *auth.User) ([]Client, error) {
	if user == nil {
		return nil, invoice.ErrUnauthenticated
	}

	return s.repo.ListClients(ctx, user.ID)
}

// Suggest returns past clients matching what has been typed so far, for autofill.
// A blank prefix yields nothing.
func (s *Service) Suggest(ctx context.Context, user *auth.User, prefix string) ([]Client, error) {
	if user == nil {
		return nil, invoice.ErrUnauthenticated
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}

	return s.repo.FindClients(ctx, user.ID, prefix, SuggestLimit)
}
