package builder

import (
	"context"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// ValidationError is returned when a draft is not ready to submit.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrCustomerNameRequired = &ValidationError{Msg: "customer name required"}
	ErrNoItems              = &ValidationError{Msg: "at least one item required"}
)

//go:generate mockgen -source=submit.go -destination=gateway_mock.go -package=builder
type Gateway interface {
	Create(ctx context.Context, user *auth.User, params invoice.CreateParams) (*invoice.Invoice, error)
}

type Settings interface {
	Get(ctx context.Context, scope string) (invoice.CompanyInfo, error)
}

type Submitter struct {
	gateway  Gateway
	settings Settings
	now      func() time.Time
	scope    func(*auth.User) string
}

type Option func(*Submitter)

// WithClock overrides the clock used for invoice numbers.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

// WithLocalSettings reads the unscoped local company profile instead of the user's.
func WithLocalSettings() Option {
	return func(s *Submitter) {
		s.scope = func(*auth.User) string { return "" }
	}
}

func NewSubmitter(gateway Gateway, settings Settings, opts ...Option) *Submitter {
	s := &Submitter{
		gateway:  gateway,
		settings: settings,
		now:      time.Now,
		scope:    userScope,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func userScope(u *auth.User) string {
	if u == nil {
		return ""
	}

	return u.ID.String()
}

// Validate reports the first reason d cannot be submitted.
func Validate(d *Draft) error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return ErrCustomerNameRequired
	}

	if len(d.Items) == 0 {
		return ErrNoItems
	}

	return nil
}

// Submit stores d as a new invoice stamped with the company details saved right now.
// Nothing reaches the gateway when validation fails, and gateway errors are returned as is.
func (s *Submitter) Submit(ctx context.Context, user *auth.User, d *Draft) (*invoice.Invoice, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}

	company, err := s.settings.Get(ctx, s.scope(user))
	if err != nil {
		return nil, err
	}

	return s.gateway.Create(ctx, user, invoice.CreateParams{
		InvoiceNumber:   invoice.NewNumber(s.now()),
		CustomerName:    strings.TrimSpace(d.CustomerName),
		CustomerPhone:   strings.TrimSpace(d.CustomerPhone),
		CustomerAddress: strings.TrimSpace(d.CustomerAddress),
		Items:           d.Items,
		Tax:             d.Tax,
		CompanyInfo:     &company,
		Notes:           d.Notes,
	})
}
