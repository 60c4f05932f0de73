package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService authenticates callers against the legacy directory and
// issues session tokens.
type AuthService struct {
	directory identity.Directory
	codec     *identity.PasswordCodec
	tokens    *auth.TokenManager
	logger    *zap.Logger
}

// NewAuthService creates the service.
func NewAuthService(directory identity.Directory, codec *identity.PasswordCodec, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{directory: directory, codec: codec, tokens: tokens, logger: logger}
}

// LoginResult carries the authenticated profile and its session token.
type LoginResult struct {
	Username  string
	UserCode  int64
	Role      domain.Role
	Token     string
	ExpiresAt time.Time
}

// Login runs the directory's two-step lookup, decrypts the stored secret
// and compares it against the submitted password. Unknown users, missing
// credentials, undecryptable blobs and mismatches all collapse into the
// same unauthorized error so the response leaks nothing.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}

	userCode, found, err := s.directory.LookupUserCode(ctx, username)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !found {
		return nil, invalidCredentials()
	}

	credential, found, err := s.directory.LookupCredential(ctx, userCode)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !found {
		return nil, invalidCredentials()
	}

	stored, err := s.codec.Decrypt(credential.EncryptedPassword)
	if err != nil {
		s.logger.Warn("stored credential failed to decrypt",
			zap.String("username", username), zap.Error(err))
		return nil, invalidCredentials()
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return nil, invalidCredentials()
	}

	role := domain.RoleFromMarker(credential.RoleMarker)
	token, expiresAt, err := s.tokens.GenerateToken(username, userCode, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("login succeeded",
		zap.String("username", username), zap.String("role", string(role)))
	return &LoginResult{
		Username:  username,
		UserCode:  userCode,
		Role:      role,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ListAdministrators exposes the directory roster for the frontends'
// preference picker.
func (s *AuthService) ListAdministrators(ctx context.Context) ([]domain.Administrator, error) {
	admins, err := s.directory.ListAdministrators(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return admins, nil
}

// ListUsers exposes every directory account for the admin panel.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized("usuario o contraseña incorrectos")
}
