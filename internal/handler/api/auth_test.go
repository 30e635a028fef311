//go:build unit

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentaldesk/internal/handler/api"
	"rentaldesk/internal/pkg/config"
	"rentaldesk/internal/pkg/cookie"
	"rentaldesk/internal/pkg/jwt"
	"rentaldesk/internal/usecase/commands"
	"rentaldesk/internal/usecase/queries"
	commandsmock "rentaldesk/tests/mock/commands"
	queriesmock "rentaldesk/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockAuthCommands
	mockQueries  *queriesmock.MockUserQueries
	handler      *api.AuthHandler
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockAuthCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockUserQueries(s.mockCtrl)
	jwtService := jwt.NewService("test-secret", 15*time.Minute, 7*24*time.Hour)
	s.handler = api.NewAuthHandler(s.mockCommands, s.mockQueries, jwtService, config.NewTestConfig())

	s.router.POST("/auth/login", s.handler.Login)
	s.router.POST("/auth/logout", s.handler.Logout)
	s.router.GET("/auth/me", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			c.Set("user_id", uuid.New())
		}
		s.handler.Me(c)
	})
}

func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) perform(method, url string, body any, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer some-token")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthHandlerTestSuite) TestLogin() {
	url := "/auth/login"
	body := map[string]any{"email": "clerk@example.com", "password": "password123"}

	s.Run("success: returns token and sets cookies", func() {
		view := &queries.AuthorizedUserView{ID: uuid.New(), Email: "clerk@example.com", Role: "staff", IsActive: true}
		s.mockCommands.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(&commands.LoginResult{
				AccessToken:  "test-jwt-token",
				RefreshToken: "test-refresh-token",
				User:         view,
			}, nil).Times(1)

		w := s.perform(http.MethodPost, url, body, false)
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), "test-jwt-token")

		var accessCookie *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == cookie.AccessTokenCookieName {
				accessCookie = c
			}
		}
		s.Require().NotNil(accessCookie)
		s.Equal("test-jwt-token", accessCookie.Value)
	})

	s.Run("unauthorized: wrong password", func() {
		s.mockCommands.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrInvalidCredentials).Times(1)

		w := s.perform(http.MethodPost, url, body, false)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("forbidden: inactive account", func() {
		s.mockCommands.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, queries.ErrUserInactive).Times(1)

		w := s.perform(http.MethodPost, url, body, false)
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("bad request: malformed email", func() {
		w := s.perform(http.MethodPost, url, map[string]any{"email": "not-an-email", "password": "password123"}, false)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *AuthHandlerTestSuite) TestMe() {
	s.Run("success: returns the current user", func() {
		view := &queries.AuthorizedUserView{ID: uuid.New(), Email: "clerk@example.com", Role: "manager", IsActive: true}
		s.mockQueries.EXPECT().GetCurrentUser(gomock.Any(), gomock.Any()).
			Return(view, nil).Times(1)

		w := s.perform(http.MethodGet, "/auth/me", nil, true)
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), "clerk@example.com")
	})

	s.Run("unauthorized: no identity in context", func() {
		w := s.perform(http.MethodGet, "/auth/me", nil, false)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("not found: user vanished", func() {
		s.mockQueries.EXPECT().GetCurrentUser(gomock.Any(), gomock.Any()).
			Return(nil, queries.ErrUserNotFound).Times(1)

		w := s.perform(http.MethodGet, "/auth/me", nil, true)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *AuthHandlerTestSuite) TestLogout() {
	s.Run("clears cookies", func() {
		w := s.perform(http.MethodPost, "/auth/logout", nil, false)
		s.Equal(http.StatusNoContent, w.Code)

		for _, c := range w.Result().Cookies() {
			if c.Name == cookie.AccessTokenCookieName || c.Name == cookie.RefreshTokenCookieName {
				s.Empty(c.Value)
				s.Negative(c.MaxAge)
			}
		}
	})
}
