package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
	"buddhist-lent/pledgeboard/internal/models/dtos"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	ResetTTL   time.Duration
	AppBaseURL string
	BcryptCost int
}

type AuthService struct {
	users    *repositories.UserRepository
	sessions *common.SessionService
	tokens   *auth.TokenService
	mailer   Mailer
	metrics  *metrics.MetricsRegistry
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(
	users *repositories.UserRepository,
	sessions *common.SessionService,
	tokens *auth.TokenService,
	mailer Mailer,
	metricsReg *metrics.MetricsRegistry,
	cfg AuthConfig,
) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		mailer:   mailer,
		metrics:  metricsReg,
		cfg:      cfg,
		now:      time.Now,
	}
}

// LoginResult carries both credentials handed out at login.
type LoginResult struct {
	User      *gormModels.User
	Session   *common.SessionData
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Signup creates a member account.
func (s *AuthService) Signup(ctx context.Context, req dtos.SignupRequest) (*gormModels.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, invalid(err)
	}

	taken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, badRequest(constants.ErrCodeDuplicate, constants.MsgEmailTaken)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &gormModels.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         constants.RoleMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, badRequest(constants.ErrCodeDuplicate, constants.MsgEmailTaken)
		}
		return nil, err
	}

	logging.Info("User signed up", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and opens a session plus a bearer token.
func (s *AuthService) Login(ctx context.Context, req dtos.LoginRequest) (*LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, invalid(err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.countLogin("failure")
		return nil, newError(http.StatusUnauthorized, constants.ErrCodeUnauthorized, constants.MsgInvalidCredentials, nil)
	}

	session, err := s.sessions.CreateSession(ctx, user.ID, user.Name)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.sessions.DeleteSession(ctx, session.SessionID)
		return nil, err
	}

	s.countLogin("success")
	return &LoginResult{User: user, Session: session, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout ends whichever credential the request used.
func (s *AuthService) Logout(ctx context.Context, claims auth.UserClaims) {
	switch c := claims.(type) {
	case *auth.SessionClaims:
		s.sessions.DeleteSession(ctx, c.SessionID)
	case *auth.JWTClaims:
		if c.Token != nil {
			s.tokens.Revoke(ctx, c.Token)
		}
	}
}

// ResolveSession loads the user behind a session id.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*auth.SessionClaims, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	refreshed, err := s.sessions.RefreshSession(ctx, session)
	if err != nil {
		logging.Warn("Failed to refresh session", "user_id", user.ID, "error", err)
	}
	return &auth.SessionClaims{
		UserIDValue: user.ID,
		RoleValue:   user.Role,
		NameValue:   user.Name,
		SessionID:   session.SessionID,
		Refreshed:   refreshed,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// ResolveToken loads the user behind a bearer token.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*auth.JWTClaims, error) {
	issued, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, issued.UserID)
	if err != nil {
		return nil, err
	}
	return &auth.JWTClaims{
		UserIDValue: user.ID,
		RoleValue:   user.Role,
		NameValue:   user.Name,
		Token:       issued,
	}, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword mails a reset link. The outcome is the same whether or not
// the address is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, req dtos.ForgotPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return invalid(err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		logging.Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.New().String()
	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(token), s.now()); err != nil {
		return err
	}

	link := strings.TrimRight(s.cfg.AppBaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password. It expires in %s.\n\n%s\n",
		user.Name, s.cfg.ResetTTL, link)
	if err := s.mailer.Send(ctx, user.Email, "Reset your password", body); err != nil {
		logging.Error("Failed to send password reset mail", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, req dtos.ResetPasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return invalid(err)
	}

	user, err := s.users.GetByResetTokenHash(ctx, hashResetToken(strings.TrimSpace(req.Token)))
	if errors.Is(err, repositories.ErrNotFound) {
		return badRequest(constants.ErrCodeTokenExpired, constants.MsgInvalidResetToken)
	}
	if err != nil {
		return err
	}

	if user.ResetTokenCreatedAt == nil || s.now().Sub(*user.ResetTokenCreatedAt) > s.cfg.ResetTTL {
		if err := s.users.UpdateFields(ctx, user.ID, map[string]any{"reset_token_hash": nil, "reset_token_created_at": nil}); err != nil {
			logging.Warn("Failed to clear expired reset token", "user_id", user.ID, "error", err)
		}
		return badRequest(constants.ErrCodeTokenExpired, constants.MsgInvalidResetToken)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, user.ID, hash)
}

func (s *AuthService) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}
