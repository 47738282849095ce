package services

import (
	"context"
	"errors"
	"time"

	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/config"
	"github.com/tuckshop/backend/internal/models"
	"go.uber.org/zap"
)

// AuthResult is returned by register and login.
// @Description Authentication response structure
type AuthResult struct {
	Token     string          `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *models.Account `json:"user"`
}

type RegisterInput struct {
	models.AccountInput
	Password string
}

type AuthService struct {
	accounts  AccountRepository
	creator   *AccountService
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenManager
	blacklist auth.Blacklist
	logger    *zap.Logger

	// dummyHash is verified against when the identifier is unknown so both
	// failure paths cost one argon2 derivation.
	dummyHash string
}

func NewAuthService(accounts AccountRepository, creator *AccountService, hasher *auth.PasswordHasher, tokens *auth.TokenManager, blacklist auth.Blacklist, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts:  accounts,
		creator:   creator,
		hasher:    hasher,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger.Named("auth"),
		dummyHash: hasher.Dummy(),
	}
}

// Register creates a student or parent account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Role != models.RoleStudent && in.Role != models.RoleParent {
		return nil, apperrors.Validation("role", "self-registration is only available to students and parents")
	}

	spec, err := models.NewAccountSpec(in.AccountInput)
	if err != nil {
		return nil, err
	}

	account, err := s.creator.create(ctx, spec, in.Password)
	if err != nil {
		s.logger.Info("registration failed", zap.String("role", string(in.Role)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(account.Role)),
	)
	return s.issue(account)
}

// Login verifies credentials. Unknown identifier, wrong password and role
// mismatch all yield the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string, role models.Role) (*AuthResult, error) {
	account, err := s.accounts.FindByIdentifier(ctx, models.ClassifyIdentifier(identifier), identifier)
	if err != nil {
		err = translate(err, apperrors.ErrInvalidCredentials)
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.hasher.Verify(password, s.dummyHash)
			s.logger.Info("login failed: unknown identifier")
		}
		return nil, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.logger.Info("login failed: wrong password", zap.String("account_id", account.ID.String()))
		return nil, apperrors.ErrInvalidCredentials
	}

	if role != "" && role != account.Role {
		s.logger.Info("login failed: role mismatch", zap.String("account_id", account.ID.String()))
		return nil, apperrors.ErrInvalidCredentials
	}

	account.PasswordHash = ""
	if account.Role == models.RoleParent {
		if full, err := s.accounts.Get(ctx, account.ID); err == nil {
			account = full
		}
	}

	s.logger.Info("login successful", zap.String("account_id", account.ID.String()))
	return s.issue(account)
}

func (s *AuthService) issue(account *models.Account) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, apperrors.ErrInternal.Wrap(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: account}, nil
}

// Logout revokes the caller's token. A blacklist failure is logged and the
// logout still succeeds on the client side.
func (s *AuthService) Logout(ctx context.Context, p auth.Principal) {
	if err := s.blacklist.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		s.logger.Warn("failed to blacklist token", zap.String("account_id", p.AccountID.String()), zap.Error(err))
	}
}

// Authenticate parses a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	p, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, apperrors.ErrInvalidToken
	}

	revoked, err := s.blacklist.IsRevoked(ctx, p.TokenID)
	if err != nil {
		// Redis outage: accept the signature-valid token rather than lock everyone out.
		s.logger.Warn("blacklist lookup failed", zap.Error(err))
	}
	if revoked {
		return auth.Principal{}, apperrors.ErrInvalidToken
	}
	return p, nil
}

// BootstrapAdmin creates the configured admin when no admin exists yet.
func (s *AuthService) BootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		s.logger.Debug("admin bootstrap not configured")
		return nil
	}

	exists, err := s.accounts.HasRole(ctx, models.RoleAdmin)
	if err != nil {
		return translate(err, apperrors.ErrAccountNotFound)
	}
	if exists {
		return nil
	}

	spec, err := models.NewAccountSpec(models.AccountInput{Name: cfg.AdminName, Role: models.RoleAdmin, Email: cfg.AdminEmail})
	if err != nil {
		return err
	}

	account, err := s.creator.create(ctx, spec, cfg.AdminPassword)
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("account_id", account.ID.String()))
	return nil
}
