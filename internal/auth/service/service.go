package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	"eureka/internal/auth/models"
	jwttoken "eureka/internal/jwt_token"
	"eureka/internal/platform/metrics"
	"eureka/pkg/domain"
	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/platform/sentinel"
	"eureka/pkg/requestcontext"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
	maxNameLength     = 100
	handleAttempts    = 3
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RevocationList records logged-out token ids until their natural expiry.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID domain.UserID, email string, expiresIn time.Duration) (jwttoken.IssuedToken, error)
}

// Service owns account creation, credential checks and token lifecycle.
type Service struct {
	users      UserStore
	trl        RevocationList
	tokens     TokenIssuer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tokenTTL   time.Duration
	bcryptCost int
	dummyHash  []byte
}

// Option configures a Service.
type Option func(*Service)

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(users UserStore, trl RevocationList, tokens TokenIssuer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:      users,
		trl:        trl,
		tokens:     tokens,
		logger:     logger,
		tokenTTL:   7 * 24 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	// compared against on unknown emails so login timing does not reveal
	// which addresses are registered
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
	return s
}

// Signup creates an account and signs the user in.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*models.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateSignup(name, email, password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	var user *models.User
	for attempt := 0; ; attempt++ {
		user = models.NewUser(name, email, hash, requestcontext.Now(ctx))
		err = s.users.Create(ctx, user)
		if err == nil {
			break
		}
		// a conflict here is almost always a handle suffix collision
		if errors.Is(err, sentinel.ErrConflict) && attempt+1 < handleAttempts {
			continue
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncrementUsersCreated()
	s.logger.InfoContext(ctx, "user signed up",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.issue(ctx, user)
}

// Login checks credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !govalidator.IsEmail(email) || password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, s.invalidCredentials(ctx)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, s.invalidCredentials(ctx)
	}
	return s.issue(ctx, user)
}

// Me returns the authenticated account.
func (s *Service) Me(ctx context.Context, userID domain.UserID) (*models.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// Profile returns the public author info for userID. Feed and notification
// services use it to hydrate payloads.
func (s *Service) Profile(ctx context.Context, userID domain.UserID) (domain.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Profile{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return domain.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user.Profile(), nil
}

// Logout revokes the token until it would have expired. Open websocket
// connections authenticated by it stay open; new upgrades are refused.
func (s *Service) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token id required")
	}
	ttl := expiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		s.logger.ErrorContext(ctx, "failed to add token to revocation list",
			"error", err,
			"jti", jti,
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return nil
}

// IsTokenRevoked satisfies the auth middleware's revocation checker.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.trl.IsRevoked(ctx, jti)
}

func (s *Service) issue(ctx context.Context, user *models.User) (*models.Session, error) {
	issued, err := s.tokens.GenerateAccessToken(user.ID, user.Email, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &models.Session{Token: issued.Token, JTI: issued.JTI, ExpiresAt: issued.ExpiresAt, User: user}, nil
}

func (s *Service) invalidCredentials(ctx context.Context) error {
	s.logger.WarnContext(ctx, "login failed - invalid credentials",
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
}

func validateSignup(name, email, password string) error {
	switch {
	case name == "":
		return dErrors.New(dErrors.CodeInvalidInput, "name cannot be empty")
	case !govalidator.IsByteLength(name, 1, maxNameLength):
		return dErrors.New(dErrors.CodeInvalidInput, "name is too long")
	case !govalidator.IsEmail(email):
		return dErrors.New(dErrors.CodeInvalidInput, "invalid email format")
	case len(password) < minPasswordLength:
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 6 characters")
	case len(password) > maxPasswordLength:
		return dErrors.New(dErrors.CodeInvalidInput, "password is too long")
	}
	return nil
}
