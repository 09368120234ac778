package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/invoicer/internal/kv"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	repo    Repository
	tokens  *Tokens
	revoked kv.Store
	cost    int
}

func NewService(repo Repository, tokens *Tokens, revoked kv.Store) *Service {
	return &Service{
		repo:    repo,
		tokens:  tokens,
		revoked: revoked,
		cost:    bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Msg: "email is required"}
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Msg: "email is invalid"}
	}

	return nil
}

// SignUp registers a new account. Password rules are checked before the store is touched.
func (s *Service) SignUp(ctx context.Context, email, password, confirm string) (*User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if password != confirm {
		return nil, &ValidationError{Msg: "Passwords do not match"}
	}

	if len(password) < MinPasswordLength {
		return nil, &ValidationError{Msg: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{Email: email, PasswordHash: string(hash)}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.revoked.Set(ctx, kv.Key("revoked", claims.ID), true, ttl); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	return nil
}

// Authenticate resolves the current user from a session token.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	var revoked bool

	found, err := s.revoked.Get(ctx, kv.Key("revoked", claims.ID), &revoked)
	if err != nil {
		return nil, fmt.Errorf("checking revocation: %w", err)
	}

	if found && revoked {
		return nil, ErrTokenRevoked
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}

		return nil, err
	}

	return u, nil
}
