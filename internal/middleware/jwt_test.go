package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolade/campus-election/internal/utils"
)

const testSecret = "test-secret"

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (echo.Context, *httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/results", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return c, rec, reached
}

func TestJWTAuth(t *testing.T) {
	session, err := utils.NewSessionToken(testSecret, 42, utils.RoleAdmin, 1)
	require.NoError(t, err)

	t.Run("valid token sets identity", func(t *testing.T) {
		c, _, reached := runMiddleware(t, JWTAuth(testSecret), "Bearer "+session.Token)
		assert.True(t, reached)
		assert.EqualValues(t, 42, c.Get("user_id"))
		assert.Equal(t, utils.RoleAdmin, c.Get("role"))
	})

	t.Run("missing token rejected", func(t *testing.T) {
		_, rec, reached := runMiddleware(t, JWTAuth(testSecret), "")
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		forged, err := utils.NewSessionToken("other-secret", 42, utils.RoleAdmin, 1)
		require.NoError(t, err)
		_, rec, reached := runMiddleware(t, JWTAuth(testSecret), "Bearer "+forged.Token)
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalJWTAuth(t *testing.T) {
	t.Run("anonymous request passes through", func(t *testing.T) {
		c, rec, reached := runMiddleware(t, OptionalJWTAuth(testSecret), "")
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, c.Get("role"))
	})

	t.Run("valid token populates role", func(t *testing.T) {
		session, err := utils.NewSessionToken(testSecret, 7, utils.RoleAdmin, 1)
		require.NoError(t, err)
		c, _, reached := runMiddleware(t, OptionalJWTAuth(testSecret), "Bearer "+session.Token)
		assert.True(t, reached)
		assert.Equal(t, utils.RoleAdmin, c.Get("role"))
	})

	t.Run("invalid token stays anonymous instead of rejecting", func(t *testing.T) {
		c, rec, reached := runMiddleware(t, OptionalJWTAuth(testSecret), "Bearer not-a-jwt")
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, c.Get("role"))
	})
}
