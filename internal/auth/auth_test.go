package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestAuthorities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		claims map[string]any
		want   []string
	}{
		{
			name:   "empty claims",
			claims: map[string]any{},
			want:   []string{},
		},
		{
			name: "realm roles",
			claims: map[string]any{
				"realm_access": map[string]any{"roles": []any{"admin", "user"}},
			},
			want: []string{"ROLE_admin", "ROLE_user"},
		},
		{
			name: "top-level roles",
			claims: map[string]any{
				"roles": []any{"uploader"},
			},
			want: []string{"ROLE_uploader"},
		},
		{
			name: "resource roles across clients",
			claims: map[string]any{
				"resource_access": map[string]any{
					"account": map[string]any{"roles": []any{"manage-account"}},
					"gateway": map[string]any{"roles": []any{"download"}},
				},
			},
			want: []string{"ROLE_manage-account", "ROLE_download"},
		},
		{
			name: "all sources merged",
			claims: map[string]any{
				"realm_access": map[string]any{"roles": []any{"admin"}},
				"roles":        []any{"uploader"},
				"resource_access": map[string]any{
					"account": map[string]any{"roles": []any{"view-profile"}},
				},
			},
			want: []string{"ROLE_admin", "ROLE_uploader", "ROLE_view-profile"},
		},
		{
			name: "malformed shapes contribute nothing",
			claims: map[string]any{
				"realm_access":    "not a map",
				"roles":           "not a list",
				"resource_access": map[string]any{"account": []any{"not a map"}},
			},
			want: []string{},
		},
		{
			name: "non-string roles are skipped",
			claims: map[string]any{
				"roles": []any{"good", 42, nil},
			},
			want: []string{"ROLE_good"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ElementsMatch(t, tc.want, Authorities(tc.claims), "derived authorities")
		})
	}
}

// signToken produces an HS256 token over the given claims.
func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err, "signing token")
	return signed
}

func TestBearerAuthEngine(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	engine := NewBearerAuthEngine(secret)

	t.Run("valid token", func(t *testing.T) {
		signed := signToken(t, secret, jwt.MapClaims{
			"sub":          "alice",
			"exp":          time.Now().Add(time.Hour).Unix(),
			"realm_access": map[string]any{"roles": []any{"admin"}},
		})

		rq, _ := http.NewRequest(http.MethodGet, "/storage/docs", nil)
		rq.Header.Set("Authorization", BearerPrefix+signed)

		identity, err := engine.AuthenticateRequest(context.Background(), rq)
		require.NoError(t, err, "AuthenticateRequest error")
		require.NotNil(t, identity, "identity")
		require.Equal(t, "alice", identity.Subject, "subject")
		require.Equal(t, []string{"ROLE_admin"}, identity.Authorities, "authorities")
	})

	t.Run("missing header", func(t *testing.T) {
		rq, _ := http.NewRequest(http.MethodGet, "/storage/docs", nil)

		identity, err := engine.AuthenticateRequest(context.Background(), rq)
		require.NoError(t, err, "no credentials is not an error")
		require.Nil(t, identity, "no identity without credentials")
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := signToken(t, []byte("other-secret"), jwt.MapClaims{
			"sub": "mallory",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		rq, _ := http.NewRequest(http.MethodGet, "/storage/docs", nil)
		rq.Header.Set("Authorization", BearerPrefix+signed)

		_, err := engine.AuthenticateRequest(context.Background(), rq)
		require.Error(t, err, "forged token must fail")
	})

	t.Run("expired token", func(t *testing.T) {
		signed := signToken(t, secret, jwt.MapClaims{
			"sub": "alice",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		rq, _ := http.NewRequest(http.MethodGet, "/storage/docs", nil)
		rq.Header.Set("Authorization", BearerPrefix+signed)

		_, err := engine.AuthenticateRequest(context.Background(), rq)
		require.Error(t, err, "expired token must fail")
	})
}
