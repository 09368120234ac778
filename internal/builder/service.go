package builder

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Service edits drafts stored in a DraftStore on behalf of a signed-in user.
type Service struct {
	drafts    *DraftStore
	submitter *Submitter
}

func NewService(drafts *DraftStore, submitter *Submitter) *Service {
	return &Service{drafts: drafts, submitter: submitter}
}

// DetailsParams holds the draft header fields to change. Nil means unchanged.
type DetailsParams struct {
	CustomerName    *string
	CustomerPhone   *string
	CustomerAddress *string
	Notes           *string
	Tax             *decimal.Decimal
}

func owner(user *auth.User) (string, error) {
	if user == nil {
		return "", invoice.ErrUnauthenticated
	}

	return user.ID.String(), nil
}

func (s *Service) Create(ctx context.Context, user *auth.User) (*Draft, error) {
	o, err := owner(user)
	if err != nil {
		return nil, err
	}

	d := NewDraft()
	if err := s.drafts.Save(ctx, o, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) Get(ctx context.Context, user *auth.User, id uuid.UUID) (*Draft, error) {
	o, err := owner(user)
	if err != nil {
		return nil, err
	}

	return s.drafts.Load(ctx, o, id)
}

// edit loads a draft, applies fn and saves it when fn reports a change.
func (s *Service) edit(ctx context.Context, user *auth.User, id uuid.UUID, fn func(d *Draft) (bool, error)) (*Draft, bool, error) {
	o, err := owner(user)
	if err != nil {
		return nil, false, err
	}

	d, err := s.drafts.Load(ctx, o, id)
	if err != nil {
		return nil, false, err
	}

	changed, err := fn(d)
	if err != nil {
		return nil, false, err
	}

	if !changed {
		return d, false, nil
	}

	if err := s.drafts.Save(ctx, o, d); err != nil {
		return nil, false, err
	}

	return d, true, nil
}

func (s *Service) UpdateDetails(ctx context.Context, user *auth.User, id uuid.UUID, p DetailsParams) (*Draft, error) {
	d, _, err := s.edit(ctx, user, id, func(d *Draft) (bool, error) {
		if p.Tax != nil {
			if err := d.SetTax(*p.Tax); err != nil {
				return false, err
			}
		}

		if p.CustomerName != nil {
			d.CustomerName = *p.CustomerName
		}

		if p.CustomerPhone != nil {
			d.CustomerPhone = *p.CustomerPhone
		}

		if p.CustomerAddress != nil {
			d.CustomerAddress = *p.CustomerAddress
		}

		if p.Notes != nil {
			d.Notes = *p.Notes
		}

		return true, nil
	})

	return d, err
}

// AddItem reports false, with the unchanged draft, when the item was rejected.
func (s *Service) AddItem(ctx context.Context, user *auth.User, id uuid.UUID, category, product string, quantity int) (*Draft, bool, error) {
	return s.edit(ctx, user, id, func(d *Draft) (bool, error) {
		_, ok := d.AddItem(category, product, quantity)
		return ok, nil
	})
}

func (s *Service) UpdateItem(ctx context.Context, user *auth.User, id uuid.UUID, itemID string, quantity int) (*Draft, bool, error) {
	return s.edit(ctx, user, id, func(d *Draft) (bool, error) {
		return d.UpdateItem(itemID, quantity), nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, user *auth.User, id uuid.UUID, itemID string) (*Draft, bool, error) {
	return s.edit(ctx, user, id, func(d *Draft) (bool, error) {
		return d.RemoveItem(itemID), nil
	})
}

// Submit stores the draft as an invoice and discards the draft.
func (s *Service) Submit(ctx context.Context, user *auth.User, id uuid.UUID) (*invoice.Invoice, error) {
	o, err := owner(user)
	if err != nil {
		return nil, err
	}

	d, err := s.drafts.Load(ctx, o, id)
	if err != nil {
		return nil, err
	}

	inv, err := s.submitter.Submit(ctx, user, d)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, o, id); err != nil {
		slog.Warn("failed to discard submitted draft", "draft", id, "error", err)
	}

	return inv, nil
}

func (s *Service) Discard(ctx context.Context, user *auth.User, id uuid.UUID) error {
	o, err := owner(user)
	if err != nil {
		return err
	}

	return s.drafts.Delete(ctx, o, id)
}
