package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	ListInvoices(ctx context.Context, userID uuid.UUID) ([]*Invoice, error)
	GetInvoice(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, userID uuid.UUID, number string) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error
	DeleteAllInvoices(ctx context.Context, userID uuid.UUID) (int64, error)

	BeginImport(ctx context.Context, userID uuid.UUID) (ImportTx, error)
}

type ImportTx interface {
	FindByNumbers(ctx context.Context, numbers []string) ([]*Invoice, error)
	CreateInvoices(ctx context.Context, invs []*Invoice) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateParams carries everything but the aggregates, which are always derived.
type CreateParams struct {
	InvoiceNumber   string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []LineItem
	Tax             decimal.Decimal
	CompanyInfo     *CompanyInfo
	Notes           string
	// CreatedAt keeps the original date of imported invoices. Zero means now.
	CreatedAt time.Time
}

// UpdateParams holds the fields to merge. Nil means unchanged. The merged invoice must still be valid.
type UpdateParams struct {
	CustomerName    *string
	CustomerPhone   *string
	CustomerAddress *string
	Notes           *string
	Items           []LineItem
	Tax             *decimal.Decimal
}

// Validate checks the fields every stored invoice needs.
func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.InvoiceNumber) == "" {
		return &ValidationError{Msg: "missing invoice number"}
	}

	return validateContent(p.CustomerName, p.Items, p.Tax)
}

// validateContent checks the fields a caller may set on create and update.
func validateContent(customer string, items []LineItem, tax decimal.Decimal) error {
	if strings.TrimSpace(customer) == "" {
		return &ValidationError{Msg: "missing customer name"}
	}

	if len(items) == 0 {
		return &ValidationError{Msg: "no items"}
	}

	for _, it := range items {
		if it.Quantity <= 0 {
			return &ValidationError{Msg: fmt.Sprintf("item %q: quantity must be positive", it.ProductName)}
		}

		if it.UnitPrice.IsNegative() {
			return &ValidationError{Msg: fmt.Sprintf("item %q: negative unit price", it.ProductName)}
		}
	}

	if tax.IsNegative() || tax.GreaterThan(hundred) {
		return &ValidationError{Msg: fmt.Sprintf("tax %s out of range", tax)}
	}

	return nil
}

func newInvoice(userID uuid.UUID, p CreateParams) *Invoice {
	inv := &Invoice{
		UserID:          userID,
		InvoiceNumber:   p.InvoiceNumber,
		CustomerName:    p.CustomerName,
		CustomerPhone:   p.CustomerPhone,
		CustomerAddress: p.CustomerAddress,
		Items:           append([]LineItem(nil), p.Items...),
		Tax:             p.Tax,
		CompanyInfo:     p.CompanyInfo,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
	inv.ApplyTotals()

	return inv
}

func (s *Service) Create(ctx context.Context, user *auth.User, params CreateParams) (*Invoice, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	inv := newInvoice(user.ID, params)
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// List returns every invoice of the user, newest first.
func (s *Service) List(ctx context.Context, user *auth.User) ([]*Invoice, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return s.repo.ListInvoices(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, user *auth.User, id uuid.UUID) (*Invoice, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return s.repo.GetInvoice(ctx, user.ID, id)
}

func (s *Service) GetByNumber(ctx context.Context, user *auth.User, number string) (*Invoice, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return s.repo.GetInvoiceByNumber(ctx, user.ID, number)
}

func (s *Service) Update(ctx context.Context, user *auth.User, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	inv, err := s.repo.GetInvoice(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	if params.CustomerName != nil {
		inv.CustomerName = *params.CustomerName
	}

	if params.CustomerPhone != nil {
		inv.CustomerPhone = *params.CustomerPhone
	}

	if params.CustomerAddress != nil {
		inv.CustomerAddress = *params.CustomerAddress
	}

	if params.Notes != nil {
		inv.Notes = *params.Notes
	}

	if params.Items != nil {
		inv.Items = append([]LineItem(nil), params.Items...)
	}

	if params.Tax != nil {
		inv.Tax = *params.Tax
	}

	if err := validateContent(inv.CustomerName, inv.Items, inv.Tax); err != nil {
		return nil, err
	}

	inv.ApplyTotals()

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Delete(ctx context.Context, user *auth.User, id uuid.UUID) error {
	if user == nil {
		return ErrUnauthenticated
	}

	return s.repo.DeleteInvoice(ctx, user.ID, id)
}

// DeleteAll removes every invoice of the user and reports how many went.
func (s *Service) DeleteAll(ctx context.Context, user *auth.User) (int64, error) {
	if user == nil {
		return 0, ErrUnauthenticated
	}

	return s.repo.DeleteAllInvoices(ctx, user.ID)
}

type ImportResult struct {
	Imported  []*Invoice
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Invoice
}

// ImportBatch stores all params in one transaction. If any invoice number is
// already taken nothing is written and the conflicts are reported instead.
func (s *Service) ImportBatch(ctx context.Context, user *auth.User, params []CreateParams) (*ImportResult, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	numbers := make([]string, 0, len(params))
	seen := make(map[string]struct{}, len(params))

	for i, p := range params {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("import #%d %s: %w", i+1, p.InvoiceNumber, err)
		}

		if _, dup := seen[p.InvoiceNumber]; dup {
			return nil, fmt.Errorf("import %s: %w", p.InvoiceNumber, ErrDuplicateNumber)
		}

		seen[p.InvoiceNumber] = struct{}{}
		numbers = append(numbers, p.InvoiceNumber)
	}

	itx, err := s.repo.BeginImport(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.FindByNumbers(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("find existing: %w", err)
	}

	lookup := make(map[string]*Invoice, len(existing))
	for _, inv := range existing {
		lookup[inv.InvoiceNumber] = inv
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		if inv, found := lookup[p.InvoiceNumber]; found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: inv})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	invs := make([]*Invoice, len(newParams))
	for i, p := range newParams {
		invs[i] = newInvoice(user.ID, p)
	}

	if err := itx.CreateInvoices(ctx, invs); err != nil {
		return nil, fmt.Errorf("create invoices: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: invs}, nil
}

// Query lists the user's invoices and narrows them in memory.
func (s *Service) Query(ctx context.Context, user *auth.User, q Query) ([]*Invoice, error) {
	invs, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}

	return Sort(Filter(invs, q.Search), q.SortBy), nil
}
