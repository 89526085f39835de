package auth

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const githubTokenURL = "https://github.com/login/oauth/access_token"

// mockGitHub routes an isolated http.Client through httpmock and returns a
// context that makes oauth2 use it.
func mockGitHub(t *testing.T) context.Context {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(func() { httpmock.DeactivateAndReset() })

	httpmock.RegisterResponder(http.MethodPost, githubTokenURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"access_token": "gho_test",
			"token_type":   "bearer",
			"scope":        "read:user,user:email",
		}))

	return context.WithValue(context.Background(), oauth2.HTTPClient, client)
}

func TestGitHubProvider_AuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "secret", "http://localhost:8080/auth/github/callback")

	u, err := url.Parse(p.AuthURL("state-123"))
	require.NoError(t, err)

	assert.Equal(t, "github.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "http://localhost:8080/auth/github/callback", q.Get("redirect_uri"))
}

func TestGitHubProvider_Exchange_PublicEmail(t *testing.T) {
	ctx := mockGitHub(t)
	httpmock.RegisterResponder(http.MethodGet, githubAPI+"/user",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"id": 1234, "login": "admin", "email": "Admin@Example.com",
		}))

	p := NewGitHubProvider("id", "secret", "http://localhost/cb")
	u, err := p.Exchange(ctx, "code-abc")
	require.NoError(t, err)

	assert.Equal(t, int64(1234), u.ID)
	assert.Equal(t, "admin", u.Login)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.Equal(t, 0, httpmock.GetCallCountInfo()["GET "+githubAPI+"/user/emails"])
}

func TestGitHubProvider_Exchange_PrivateEmail(t *testing.T) {
	ctx := mockGitHub(t)
	httpmock.RegisterResponder(http.MethodGet, githubAPI+"/user",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"id": 1234, "login": "admin", "email": nil,
		}))
	httpmock.RegisterResponder(http.MethodGet, githubAPI+"/user/emails",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "main@example.com", "primary": true, "verified": true},
		}))

	p := NewGitHubProvider("id", "secret", "http://localhost/cb")
	u, err := p.Exchange(ctx, "code-abc")
	require.NoError(t, err)

	assert.Equal(t, "main@example.com", u.Email)
}

func TestGitHubProvider_Exchange_NoVerifiedEmail(t *testing.T) {
	ctx := mockGitHub(t)
	httpmock.RegisterResponder(http.MethodGet, githubAPI+"/user",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"id": 1, "login": "x"}))
	httpmock.RegisterResponder(http.MethodGet, githubAPI+"/user/emails",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []map[string]any{
			{"email": "x@example.com", "primary": true, "verified": false},
		}))

	p := NewGitHubProvider("id", "secret", "http://localhost/cb")
	_, err := p.Exchange(ctx, "code")
	assert.Error(t, err)
}

func TestGitHubProvider_Exchange_APIError(t *testing.T) {
	ctx := mockGitHub(t)
	httpmock.RegisterResponder(http.MethodGet, githubAPI+"/user",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"message":"Bad credentials"}`))

	p := NewGitHubProvider("id", "secret", "http://localhost/cb")
	_, err := p.Exchange(ctx, "code")
	assert.ErrorContains(t, err, "401")
}
