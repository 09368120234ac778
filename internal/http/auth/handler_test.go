package auth_test

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
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	authhttp "github.com/MrJamesThe3rd/invoicer/internal/http/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
)

func newRouter(t *testing.T) (http.Handler, *auth.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := auth.NewMockRepository(ctrl)
	svc := auth.NewService(repo, auth.NewTokens("secret", "test", time.Hour), kv.NewMemory())

	r := chi.NewRouter()
	r.Route("/auth", authhttp.NewHandler(svc).Routes)

	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_SignUp(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m *auth.MockRepository)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "Created",
			body: `{"email": "shop@example.com", "password": "secret1", "confirm_password": "secret1"}`,
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *auth.User) error {
					u.ID = uuid.New()
					return nil
				})
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"email":"shop@example.com"`,
		},
		{
			name:       "Mismatch",
			body:       `{"email": "shop@example.com", "password": "secret1", "confirm_password": "secret2"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Passwords do not match",
		},
		{
			name:       "TooShort",
			body:       `{"email": "shop@example.com", "password": "abc", "confirm_password": "abc"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "at least 6 characters",
		},
		{
			name: "Taken",
			body: `{"email": "shop@example.com", "password": "secret1", "confirm_password": "secret1"}`,
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(auth.ErrEmailTaken)
			},
			wantStatus: http.StatusConflict,
			wantBody:   "email already registered",
		},
		{
			name:       "BadJSON",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := do(t, h, http.MethodPost, "/auth/signup", "", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_SessionFlow(t *testing.T) {
	h, repo := newRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &auth.User{ID: uuid.New(), Email: "shop@example.com", PasswordHash: string(hash)}

	repo.EXPECT().GetUserByEmail(gomock.Any(), "shop@example.com").Return(user, nil).Times(2)
	repo.EXPECT().GetUser(gomock.Any(), user.ID).Return(user, nil)

	rec := do(t, h, http.MethodPost, "/auth/signin", "", `{"email": "shop@example.com", "password": "nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/signin", "", `{"email": "shop@example.com", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	require.NotEmpty(t, session.Token)

	rec = do(t, h, http.MethodGet, "/auth/me", session.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ID.String())

	rec = do(t, h, http.MethodPost, "/auth/signout", session.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", session.Token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestHandler_MissingToken(t *testing.T) {
	h, _ := newRouter(t)

	rec := do(t, h, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/signout", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer  abc ", want: "abc"},
		{header: "Basic abc", want: ""},
		{header: "", want: ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		assert.Equal(t, tt.want, authhttp.BearerToken(req), tt.header)
	}
}
