package handler

//go:generate mockgen -source=handler.go -destination=mocks/auth-mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eureka/internal/auth/handler/mocks"
	"eureka/internal/auth/models"
	"eureka/pkg/domain"
	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/realtime/wire"
	"eureka/pkg/requestcontext"
	"eureka/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
	mockService *mocks.MockService
	router      chi.Router
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(ctrl)
	h := New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	h.Register(s.router)
}

func (s *AuthHandlerSuite) TestSignup() {
	user := &models.User{ID: domain.NewUserID(), Name: "Ada", Email: "ada@example.com", Handle: "ada1234"}

	s.Run("returns 201 with token and user", func() {
		s.mockService.EXPECT().Signup(gomock.Any(), "Ada", "ada@example.com", "secret1").
			Return(&models.Session{Token: "tok", User: user}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/signup", wire.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		rr := testutil.Do(s.router, req)

		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.Decode[wire.AuthResponse](s.T(), rr)
		s.Equal("tok", resp.Token)
		s.Equal(user.ID.String(), resp.User.ID)
		s.Equal("ada1234", resp.User.Handle)
	})

	s.Run("unknown fields are rejected", func() {
		req := testutil.NewRawJSONRequest(http.MethodPost, "/auth/signup", `{"name":"Ada","admin":true}`)
		testutil.AssertStatusAndError(s.T(), testutil.Do(s.router, req), http.StatusBadRequest, "bad_request")
	})

	s.Run("validation errors map to 400", func() {
		s.mockService.EXPECT().Signup(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidInput, "invalid email format"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/signup", wire.SignupRequest{Name: "Ada", Email: "x", Password: "secret1"})
		rr := testutil.Do(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("duplicate email maps to 409", func() {
		s.mockService.EXPECT().Signup(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "email already registered"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/signup", wire.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		testutil.AssertStatusAndError(s.T(), testutil.Do(s.router, req), http.StatusConflict, "conflict")
	})
}

func (s *AuthHandlerSuite) TestLogin() {
	s.mockService.EXPECT().Login(gomock.Any(), "ada@example.com", "bad").
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", wire.LoginRequest{Email: "ada@example.com", Password: "bad"})
	testutil.AssertStatusAndError(s.T(), testutil.Do(s.router, req), http.StatusUnauthorized, "unauthorized")
}

func (s *AuthHandlerSuite) TestMe() {
	userID := domain.NewUserID()
	s.mockService.EXPECT().Me(gomock.Any(), userID).Return(&models.User{ID: userID, Name: "Ada", Email: "ada@example.com"}, nil)

	req := testutil.AsUser(testutil.NewRawJSONRequest(http.MethodGet, "/auth/me", ""), userID)
	rr := testutil.Do(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("ada@example.com", testutil.Decode[wire.User](s.T(), rr).Email)
}

func (s *AuthHandlerSuite) TestLogout() {
	userID := domain.NewUserID()
	exp := time.Now().Add(time.Hour)
	s.mockService.EXPECT().Logout(gomock.Any(), "jti-9", exp).Return(nil)

	req := testutil.NewRawJSONRequest(http.MethodPost, "/auth/logout", "")
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithToken(ctx, "jti-9", exp)
	rr := testutil.Do(s.router, req.WithContext(ctx))

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	assert.Contains(s.T(), rr.Body.String(), "Logged out")
}
