package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

type authRepository interface {
	Login(ctx context.Context, req dto.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*models.AuthResponse, error)
}

type sessionStore interface {
	AccessToken(ctx context.Context) (string, error)
	SaveSession(ctx context.Context, auth models.AuthResponse) error
	CachedUser(ctx context.Context) (*models.User, error)
	Clear(ctx context.Context) error
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authRepository
	tokens    sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authRepository, tokens sessionStore, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, tokens: tokens, validator: validate, logger: logger, now: time.Now}
}

// Login authenticates and persists the access token and user.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	resp, err := s.repo.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SaveSession(ctx, *resp); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", zap.Int64("user_id", resp.User.ID))
	return &resp.User, nil
}

// Register creates an account and logs in with it.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	resp, err := s.repo.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return s.Login(ctx, dto.LoginRequest{Email: req.Email, Password: req.Password})
	}
	if err := s.tokens.SaveSession(ctx, *resp); err != nil {
		return nil, err
	}
	s.logger.Info("registered", zap.Int64("user_id", resp.User.ID))
	return &resp.User, nil
}

// Logout forgets the stored token and user.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

// CurrentUser returns the user cached at login.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.tokens.CachedUser(ctx)
}

// TokenExpiry decodes the stored token's exp claim without verifying the
// signature; the client never holds the signing key. A token without exp
// returns the zero time.
func (s *AuthService) TokenExpiry(ctx context.Context) (time.Time, error) {
	raw, err := s.tokens.AccessToken(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrStoreMiss) {
			return time.Time{}, appErrors.ErrNotAuthenticated
		}
		return time.Time{}, err
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "malformed access token")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "malformed access token")
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// Authenticated reports whether a token is stored and not known to be expired.
func (s *AuthService) Authenticated(ctx context.Context) bool {
	exp, err := s.TokenExpiry(ctx)
	if err != nil {
		return false
	}
	return exp.IsZero() || exp.After(s.now())
}
