//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"

	"rentaldesk/internal/handler/dto/request"
	"rentaldesk/internal/handler/dto/response"
	"rentaldesk/tests/common/dbtest"
	"rentaldesk/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func LoginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		request.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body response.LoginResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
	require.NotEmpty(t, body.AccessToken, "login response has no access token")
	return body.AccessToken
}

// CreateAndLogin seeds a user with the given role and returns a bearer token.
func CreateAndLogin(t *testing.T, db dbtest.DBLike, router *gin.Engine, email, role string) string {
	t.Helper()
	dbtest.CreateTestUser(t, db, email, role)
	return LoginUser(t, router, email, dbtest.TestPassword)
}
