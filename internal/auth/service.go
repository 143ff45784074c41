package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/frahmantamala/inventory-management/internal/user"
	"golang.org/x/crypto/bcrypt"
)

const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeChallenge = "challenge"
)

// TxStore is the repository bound to one open transaction.
type TxStore interface {
	GetByID(id int64) (*userDatamodel.User, error)
	SetTwoFactor(id int64, secret *string, enabled bool) error
	SetTwoFactorSecret(id int64, secret string) error
	AppendAudit(entry *audit.Entry) error
}

type UserRepository interface {
	// GetByUsername returns nil, nil when no such user exists.
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

type Options struct {
	BCryptCost int
	TOTPIssuer string
}

// Service is the main auth service with dependencies
type Service struct {
	repo     UserRepository
	tokens   TokenGenerator
	bus      *events.EventBus
	logger   *slog.Logger
	opts     Options
	now      func() time.Time
	dummy    []byte
	dummyErr error
	once     sync.Once
}

// NewService creates a new auth service
func NewService(repo UserRepository, tokens TokenGenerator, bus *events.EventBus, logger *slog.Logger, opts Options) *Service {
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}
	if opts.TOTPIssuer == "" {
		opts.TOTPIssuer = "Inventario Pro"
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		bus:    bus,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// dummyHash is compared against when the user does not exist, so a missing
// user costs the same bcrypt work as a wrong password.
func (s *Service) dummyHash() []byte {
	s.once.Do(func() {
		s.dummy, s.dummyErr = bcrypt.GenerateFromPassword([]byte("inventory-dummy-password"), s.opts.BCryptCost)
	})
	return s.dummy
}

// Login checks the password. Unknown users and wrong passwords produce the
// same error. Accounts with 2FA get a challenge token instead of a session.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err)
		return nil, store.TranslateError(err)
	}

	hash := s.dummyHash()
	if row != nil {
		hash = []byte(row.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(dto.Password)) != nil || row == nil {
		s.logger.Warn("login failed", "username", dto.Username)
		s.publishLogin(ctx, dto.Username, OutcomeFailure)
		return nil, internal.ErrInvalidCredentials
	}

	if err := s.repo.SetLastLogin(ctx, row.ID, s.now().UTC()); err != nil {
		s.logger.Error("failed to stamp last login", "error", err, "user_id", row.ID)
		return nil, store.TranslateError(err)
	}

	u := user.FromDataModel(row)
	if u.RequiresTwoFactor() {
		challenge, _, err := s.tokens.Generate(u.ID, u.Username, u.Role, PurposeChallenge)
		if err != nil {
			return nil, internal.NewInternalError("failed to issue challenge", err)
		}
		s.publishLogin(ctx, u.Username, OutcomeChallenge)
		return &LoginResponse{User: u, RequiresTwoFactor: true, ChallengeToken: challenge}, nil
	}

	tokens, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login succeeded", "user_id", u.ID, "username", u.Username)
	s.publishLogin(ctx, u.Username, OutcomeSuccess)
	return &LoginResponse{User: u, Tokens: tokens}, nil
}

// VerifyTwoFactor completes a login that was answered with a challenge.
func (s *Service) VerifyTwoFactor(ctx context.Context, dto VerifyTwoFactorDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokens.Validate(dto.ChallengeToken, PurposeChallenge)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, store.TranslateError(err)
	}
	if row.TwoFactorSecret == nil || !ValidateCode(dto.Code, *row.TwoFactorSecret, s.now()) {
		s.logger.Warn("two factor verification failed", "user_id", row.ID)
		s.publishLogin(ctx, row.Username, OutcomeFailure)
		return nil, internal.ErrInvalidTwoFactorCode
	}

	stamped := s.now().UTC()
	if err := s.repo.SetLastLogin(ctx, row.ID, stamped); err != nil {
		s.logger.Error("failed to stamp last login", "error", err, "user_id", row.ID)
		return nil, store.TranslateError(err)
	}
	row.LastLogin = &stamped

	u := user.FromDataModel(row)
	tokens, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.publishLogin(ctx, u.Username, OutcomeSuccess)
	return &LoginResponse{User: u, Tokens: tokens}, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (*AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokens.Validate(dto.RefreshToken, PurposeRefresh)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, store.TranslateError(err)
	}
	return s.issue(user.FromDataModel(row))
}

// Authenticate turns an access token into the principal of the request. The
// user is reloaded so deleted accounts and role changes take effect at once.
func (s *Service) Authenticate(ctx context.Context, token string) (*internal.Principal, error) {
	if token == "" {
		return nil, internal.ErrUnauthenticated
	}
	claims, err := s.tokens.Validate(token, PurposeAccess)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, store.TranslateError(err)
	}
	return user.FromDataModel(row).Principal(), nil
}

// GenerateTwoFactorSecret stores a fresh secret for the caller, replacing any
// previous one. The enabled flag is left as it is until EnableTwoFactor
// confirms a code.
func (s *Service) GenerateTwoFactorSecret(ctx context.Context, actor *internal.Principal) (*TwoFactorSetup, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	setup, err := newTwoFactorSetup(s.opts.TOTPIssuer, actor.Username)
	if err != nil {
		s.logger.Error("failed to generate totp secret", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to generate secret", err)
	}

	err = s.repo.InTx(ctx, func(tx TxStore) error {
		if _, err := tx.GetByID(actor.ID); err != nil {
			return err
		}
		if err := tx.SetTwoFactorSecret(actor.ID, setup.Secret); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetUser, audit.ID(actor.ID),
			"generated two-factor secret"))
	})
	if err != nil {
		s.logger.Error("failed to store totp secret", "error", err, "user_id", actor.ID)
		return nil, store.TranslateError(err)
	}
	return setup, nil
}

func (s *Service) EnableTwoFactor(ctx context.Context, actor *internal.Principal, dto EnableTwoFactorDTO) error {
	if actor == nil {
		return internal.ErrUnauthenticated
	}
	if err := dto.Validate(); err != nil {
		return err
	}
	if !ValidateCode(dto.Code, dto.Secret, s.now()) {
		return internal.ErrInvalidTwoFactorCode
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		if _, err := tx.GetByID(actor.ID); err != nil {
			return err
		}
		secret := dto.Secret
		if err := tx.SetTwoFactor(actor.ID, &secret, true); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetUser, audit.ID(actor.ID),
			"enabled two-factor authentication"))
	})
	if err != nil {
		s.logger.Error("failed to enable 2fa", "error", err, "user_id", actor.ID)
		return store.TranslateError(err)
	}
	return nil
}

// DisableTwoFactor turns 2FA off for userID. Users may disable their own;
// administrators may disable anyone's.
func (s *Service) DisableTwoFactor(ctx context.Context, actor *internal.Principal, userID int64) error {
	if actor == nil {
		return internal.ErrUnauthenticated
	}
	if actor.ID != userID {
		if err := policy.Check(actor, policy.ActionDisable2FA, policy.ResourceUser); err != nil {
			return err
		}
	}

	err := s.repo.InTx(ctx, func(tx TxStore) error {
		row, err := tx.GetByID(userID)
		if err != nil {
			return err
		}
		if err := tx.SetTwoFactor(userID, nil, false); err != nil {
			return err
		}
		return tx.AppendAudit(audit.NewEntry(actor.Username, audit.ActionUpdate, audit.TargetUser, audit.ID(userID),
			"disabled two-factor authentication for "+row.Username))
	})
	if err != nil {
		s.logger.Error("failed to disable 2fa", "error", err, "user_id", userID, "actor", actor.Username)
		return store.TranslateError(err)
	}
	return nil
}

func (s *Service) issue(u *user.User) (*AuthTokens, error) {
	access, expiresAt, err := s.tokens.Generate(u.ID, u.Username, u.Role, PurposeAccess)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	refresh, _, err := s.tokens.Generate(u.ID, u.Username, u.Role, PurposeRefresh)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &AuthTokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

func (s *Service) publishLogin(ctx context.Context, username, outcome string) {
	if err := s.bus.Publish(ctx, events.NewLoginAttemptedEvent(username, outcome)); err != nil {
		s.logger.Warn("failed to publish login event", "error", err)
	}
}
