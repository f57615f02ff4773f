package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Elmamis69/jatrack/internal/domain"
	"github.com/Elmamis69/jatrack/internal/http/middleware"
	"github.com/Elmamis69/jatrack/internal/token"
)

func newTokenService() *token.Service {
	return token.NewService([]byte("0123456789abcdef0123456789abcdef"), "jatrack", time.Hour)
}

func issueFor(t *testing.T, tokens *token.Service, id int64, email string) string {
	t.Helper()
	signed, err := tokens.Issue(domain.User{ID: id, Email: email, Role: domain.RoleUser})
	require.NoError(t, err)
	return signed
}

// probe reports whether an identity was established for the request.
func probe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := middleware.GetIdentity(c); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	}
}

func newGatewayRouter(tokens *token.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := &middleware.Auth{Tokens: tokens}
	r := gin.New()
	r.Use(auth.Authenticate)
	r.GET("/open", probe())
	r.GET("/protected", auth.RequireAuth, probe())
	return r
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNoHeaderPassesThroughUnauthenticated(t *testing.T) {
	r := newGatewayRouter(newTokenService())

	w := get(r, "/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":null}`, w.Body.String())
}

func TestNonBearerHeaderPassesThrough(t *testing.T) {
	r := newGatewayRouter(newTokenService())

	for _, header := range []string{"Basic dXNlcjpwYXNz", "Token abc", "Bearer"} {
		w := get(r, "/open", header)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"user_id":null}`, w.Body.String())
	}
}

func TestInvalidTokenPassesThroughUnauthenticated(t *testing.T) {
	r := newGatewayRouter(newTokenService())

	w := get(r, "/open", "Bearer not-a-token")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":null}`, w.Body.String())
}

func TestValidTokenEstablishesIdentity(t *testing.T) {
	tokens := newTokenService()
	r := newGatewayRouter(tokens)

	signed := issueFor(t, tokens, 42, "alice@example.com")
	w := get(r, "/open", "Bearer "+signed)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":42}`, w.Body.String())
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	r := newGatewayRouter(newTokenService())

	for _, header := range []string{"", "Bearer expired-or-garbage"} {
		w := get(r, "/protected", header)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	tokens := newTokenService()
	r := newGatewayRouter(tokens)

	signed := issueFor(t, tokens, 7, "alice@example.com")
	w := get(r, "/protected", "Bearer "+signed)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateNeverOverwritesIdentity(t *testing.T) {
	tokens := newTokenService()
	auth := &middleware.Auth{Tokens: tokens}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Running the gateway twice must keep the first identity.
	r.Use(auth.Authenticate, auth.Authenticate)
	r.GET("/open", probe())

	signed := issueFor(t, tokens, 42, "alice@example.com")
	w := get(r, "/open", "Bearer "+signed)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":42}`, w.Body.String())
}

func TestExpiredTokenTreatedAsAnonymous(t *testing.T) {
	expired := token.NewService([]byte("0123456789abcdef0123456789abcdef"), "jatrack", -time.Minute)
	r := newGatewayRouter(newTokenService())

	signed := issueFor(t, expired, 42, "alice@example.com")

	w := get(r, "/open", "Bearer "+signed)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":null}`, w.Body.String())

	w = get(r, "/protected", "Bearer "+signed)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
