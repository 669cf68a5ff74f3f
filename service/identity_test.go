package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"budgetbite/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

func testOAuthConfig() config.OAuthConfig {
	return config.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func TestGoogleIdentity_AuthCodeURL(t *testing.T) {
	g := NewGoogleIdentity(testOAuthConfig())
	raw := g.AuthCodeURL("state-123")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:8080/api/v1/auth/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, "select_account", q.Get("prompt"))
}

func newFakeGoogle(t *testing.T, userinfo string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userinfo))
	})
	return httptest.NewServer(mux)
}

func newTestIdentity(srv *httptest.Server) *GoogleIdentity {
	g := NewGoogleIdentity(testOAuthConfig(), option.WithEndpoint(srv.URL+"/"))
	g.oauth.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	return g
}

func TestGoogleIdentity_Resolve(t *testing.T) {
	srv := newFakeGoogle(t, `{"id":"g-42","email":"riya@example.com","name":"Riya","picture":"https://img/riya.png"}`)
	defer srv.Close()

	id, err := newTestIdentity(srv).Resolve(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "g-42", Name: "Riya", Email: "riya@example.com", Picture: "https://img/riya.png"}, id)
}

func TestGoogleIdentity_Resolve_NameFallsBackToEmail(t *testing.T) {
	srv := newFakeGoogle(t, `{"id":"g-43","email":"anon@example.com"}`)
	defer srv.Close()

	id, err := newTestIdentity(srv).Resolve(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "anon@example.com", id.Name)
}

func TestGoogleIdentity_Resolve_Incomplete(t *testing.T) {
	srv := newFakeGoogle(t, `{"id":"g-44"}`)
	defer srv.Close()

	_, err := newTestIdentity(srv).Resolve(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrIdentityIncomplete)
}

func TestGoogleIdentity_Resolve_BadCode(t *testing.T) {
	srv := newFakeGoogle(t, `{}`)
	defer srv.Close()

	_, err := newTestIdentity(srv).Resolve(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "授权码换取 token 失败")
}
