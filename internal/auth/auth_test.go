package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

func sign(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestVerifier_OwnerID(t *testing.T) {
	v := NewHMAC(secret, "todo-api", "https://id.example.com/")
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid token",
			token: sign(t, secret, jwt.MapClaims{"sub": "user-1", "exp": exp, "aud": "todo-api", "iss": "https://id.example.com/"}),
			want:  "user-1",
		},
		{
			name:    "wrong secret",
			token:   sign(t, []byte("other"), jwt.MapClaims{"sub": "user-1", "exp": exp, "aud": "todo-api", "iss": "https://id.example.com/"}),
			wantErr: true,
		},
		{
			name:    "expired",
			token:   sign(t, secret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix(), "aud": "todo-api", "iss": "https://id.example.com/"}),
			wantErr: true,
		},
		{
			name:    "missing exp",
			token:   sign(t, secret, jwt.MapClaims{"sub": "user-1", "aud": "todo-api", "iss": "https://id.example.com/"}),
			wantErr: true,
		},
		{
			name:    "wrong audience",
			token:   sign(t, secret, jwt.MapClaims{"sub": "user-1", "exp": exp, "aud": "other", "iss": "https://id.example.com/"}),
			wantErr: true,
		},
		{
			name:    "wrong issuer",
			token:   sign(t, secret, jwt.MapClaims{"sub": "user-1", "exp": exp, "aud": "todo-api", "iss": "evil"}),
			wantErr: true,
		},
		{
			name:    "missing sub",
			token:   sign(t, secret, jwt.MapClaims{"exp": exp, "aud": "todo-api", "iss": "https://id.example.com/"}),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "not-a-jwt",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.OwnerID(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifier_Middleware(t *testing.T) {
	v := NewHMAC(secret, "", "")
	valid := sign(t, secret, jwt.MapClaims{"sub": "user-7", "exp": time.Now().Add(time.Hour).Unix()})

	var seen string
	h := v.Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = OwnerFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantUser string
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent, "user-7"},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent, "user-7"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "Bearer a.b.c", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestOwnerFrom(t *testing.T) {
	_, ok := OwnerFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)

	ctx := WithOwner(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "u1")
	owner, ok := OwnerFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", owner)
}
