package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// SessionStore keeps the last sign-in per profile.
type SessionStore interface {
	Save(ctx context.Context, profile string, sess domain.Session) error
	Load(ctx context.Context, profile string) (*domain.Session, error)
	Clear(ctx context.Context, profile string) error
}

// AuthResult is returned by successful sign-up and sign-in.
type AuthResult struct {
	Identity  *domain.Identity
	Role      domain.UserRole
	Token     string
	ExpiresAt time.Time
}

// ProfileUpdate carries the editable profile fields. Nil leaves a field as is.
type ProfileUpdate struct {
	DisplayName *string
	Role        *domain.UserRole
}

// AuthService coordinates account and sign-in flows.
type AuthService struct {
	users      repository.UserRepository
	sessions   SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Sessions SessionStore
	Logger   *zap.Logger
}

// NewAuthService builds the service. Sessions may be nil, in which case
// nothing is remembered between sign-ins.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// SignUp creates a password account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, profile, email, password, displayName string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s: %w", email, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return nil, err
	}

	account := &domain.Account{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		Role:         domain.UserRoleOperator,
		PasswordHash: hash,
		ProviderIDs:  []string{domain.ProviderIDPassword},
	}
	if err := s.users.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account created", zap.String("uid", account.UID))
	return s.signedIn(ctx, profile, account)
}

// SignIn authenticates with email and password.
func (s *AuthService) SignIn(ctx context.Context, profile, email, password string) (*AuthResult, error) {
	account, err := s.checkPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signedIn(ctx, profile, account)
}

// SignOut forgets the remembered session. Tokens are stateless and stay
// valid until they expire.
func (s *AuthService) SignOut(ctx context.Context, profile string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Clear(ctx, profile)
}

// CurrentUser resolves a bearer token to the caller's identity.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", domain.ErrNotAuthenticated)
	}
	account, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", claims.Subject, domain.ErrNotAuthenticated)
		}
		return nil, err
	}
	return account.Identity(), nil
}

// Account returns the stored account of an authenticated caller.
func (s *AuthService) Account(ctx context.Context, caller *domain.Identity) (*domain.Account, error) {
	if caller == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return s.users.GetByID(ctx, caller.UID)
}

// LastSession returns what was remembered for profile, or domain.ErrNotFound.
func (s *AuthService) LastSession(ctx context.Context, profile string) (*domain.Session, error) {
	if s.sessions == nil {
		return nil, domain.ErrNotFound
	}
	return s.sessions.Load(ctx, profile)
}

// Resume signs the remembered account of profile back in without a
// password. It is meant for trusted local clients only.
func (s *AuthService) Resume(ctx context.Context, profile string) (*domain.Identity, error) {
	sess, err := s.LastSession(ctx, profile)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	account, err := s.users.GetByEmail(ctx, sess.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	return account.Identity(), nil
}

// Reauthenticate confirms the caller still knows the password.
func (s *AuthService) Reauthenticate(ctx context.Context, caller *domain.Identity, password string) error {
	if caller == nil {
		return domain.ErrNotAuthenticated
	}
	_, err := s.checkPassword(ctx, caller.Email, password)
	return err
}

// UpdatePassword replaces the password after reauthenticating with the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, caller *domain.Identity, currentPassword, newPassword string) error {
	if caller == nil {
		return domain.ErrNotAuthenticated
	}
	account, err := s.checkPassword(ctx, caller.Email, currentPassword)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return err
	}
	account.PasswordHash = hash
	if err := s.users.Update(ctx, account); err != nil {
		return err
	}
	s.logger.Info("password updated", zap.String("uid", account.UID))
	return nil
}

// UpdateProfile changes display name and role label.
func (s *AuthService) UpdateProfile(ctx context.Context, caller *domain.Identity, update ProfileUpdate) (*domain.Account, error) {
	if caller == nil {
		return nil, domain.ErrNotAuthenticated
	}
	account, err := s.users.GetByID(ctx, caller.UID)
	if err != nil {
		return nil, err
	}
	if update.DisplayName != nil {
		account.DisplayName = strings.TrimSpace(*update.DisplayName)
	}
	if update.Role != nil {
		account.Role = domain.ParseUserRole(string(*update.Role))
	}
	if err := s.users.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) checkPassword(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if account.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (s *AuthService) signedIn(ctx context.Context, profile string, account *domain.Account) (*AuthResult, error) {
	identity := account.Identity()
	token, exp, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return nil, err
	}
	if s.sessions != nil {
		sess := domain.Session{Email: identity.Email, Provider: identity.Provider()}
		if err := s.sessions.Save(ctx, profile, sess); err != nil {
			s.logger.Warn("remember session failed", zap.String("uid", identity.UID), zap.Error(err))
		}
	}
	return &AuthResult{Identity: identity, Role: account.Role, Token: token, ExpiresAt: exp}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return nil
}
