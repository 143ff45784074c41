package auth

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	users      map[int64]*userDatamodel.User
	audits     []*audit.Entry
	lastLogins map[int64]time.Time
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	return &mockUserRepository{
		users: map[int64]*userDatamodel.User{
			1: {ID: 1, Username: "admin", Email: "admin@example.com", PasswordHash: string(hash), Role: string(internal.RoleAdmin)},
			2: {ID: 2, Username: "operator", Email: "operator@example.com", PasswordHash: string(hash), Role: string(internal.RoleOperator)},
		},
		lastLogins: map[int64]time.Time{},
	}
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*userDatamodel.User, error) {
	return m.getByID(id)
}

func (m *mockUserRepository) getByID(id int64) (*userDatamodel.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) SetLastLogin(_ context.Context, id int64, at time.Time) error {
	m.lastLogins[id] = at
	return nil
}

func (m *mockUserRepository) InTx(_ context.Context, fn func(tx TxStore) error) error {
	return fn(&mockTx{repo: m})
}

type mockTx struct {
	repo *mockUserRepository
}

func (t *mockTx) GetByID(id int64) (*userDatamodel.User, error) {
	return t.repo.getByID(id)
}

func (t *mockTx) SetTwoFactor(id int64, secret *string, enabled bool) error {
	u := t.repo.users[id]
	u.TwoFactorSecret = secret
	u.TwoFactorEnabled = enabled
	return nil
}

func (t *mockTx) SetTwoFactorSecret(id int64, secret string) error {
	t.repo.users[id].TwoFactorSecret = &secret
	return nil
}

func (t *mockTx) AppendAudit(entry *audit.Entry) error {
	t.repo.audits = append(t.repo.audits, entry)
	return nil
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		repo    *mockUserRepository
		tokens  *JWTTokenGenerator
		service *Service
		ctx     context.Context
		now     time.Time
	)

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		tokens = NewJWTTokenGenerator("test-secret-key", 15*time.Minute, 24*time.Hour, 5*time.Minute)
		tokens.now = func() time.Time { return now }

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, tokens, nil, logger, Options{BCryptCost: bcrypt.MinCost, TOTPIssuer: "Test"})
		service.now = func() time.Time { return now }
		ctx = context.Background()
	})

	enrol := func(id int64) string {
		setup, err := newTwoFactorSetup("Test", repo.users[id].Username)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		repo.users[id].TwoFactorSecret = &setup.Secret
		repo.users[id].TwoFactorEnabled = true
		return setup.Secret
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("issues access and refresh tokens for valid credentials", func() {
			resp, err := service.Login(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.RequiresTwoFactor).To(gomega.BeFalse())
			gomega.Expect(resp.Tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(resp.Tokens.RefreshToken).NotTo(gomega.BeEmpty())
			gomega.Expect(resp.Tokens.ExpiresAt).To(gomega.Equal(now.Add(15 * time.Minute)))
			gomega.Expect(resp.User.Username).To(gomega.Equal("admin"))
			gomega.Expect(repo.lastLogins).To(gomega.HaveKeyWithValue(int64(1), now))
		})

		ginkgo.It("returns the same error for an unknown user and a wrong password", func() {
			_, unknownErr := service.Login(ctx, LoginDTO{Username: "ghost", Password: "correct_password"})
			_, wrongErr := service.Login(ctx, LoginDTO{Username: "admin", Password: "nope"})

			gomega.Expect(unknownErr).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(wrongErr).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(unknownErr.Error()).To(gomega.Equal(wrongErr.Error()))
			gomega.Expect(repo.lastLogins).To(gomega.BeEmpty())
		})

		ginkgo.It("rejects empty credentials as a validation error", func() {
			_, err := service.Login(ctx, LoginDTO{Username: " ", Password: ""})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})

		ginkgo.It("answers with a challenge when two-factor is enabled", func() {
			enrol(1)

			resp, err := service.Login(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.RequiresTwoFactor).To(gomega.BeTrue())
			gomega.Expect(resp.Tokens).To(gomega.BeNil())
			gomega.Expect(resp.ChallengeToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("skips the challenge for SSO accounts", func() {
			enrol(1)
			provider := "azure"
			repo.users[1].SSOProvider = &provider

			resp, err := service.Login(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.RequiresTwoFactor).To(gomega.BeFalse())
			gomega.Expect(resp.Tokens).NotTo(gomega.BeNil())
		})
	})

	ginkgo.Describe("VerifyTwoFactor", func() {
		var (
			secret    string
			challenge string
		)

		ginkgo.BeforeEach(func() {
			secret = enrol(1)
			resp, err := service.Login(ctx, LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			challenge = resp.ChallengeToken
		})

		ginkgo.It("accepts the current code", func() {
			code, err := GenerateCode(secret, now)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			resp, err := service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: code})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Tokens.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("stamps last login when the second factor succeeds", func() {
			delete(repo.lastLogins, 1)
			now = now.Add(time.Minute)

			stale, _ := GenerateCode(secret, now.Add(-10*time.Minute))
			_, err := service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: stale})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidTwoFactorCode))
			gomega.Expect(repo.lastLogins).NotTo(gomega.HaveKey(int64(1)))

			code, err := GenerateCode(secret, now)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			resp, err := service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: code})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(repo.lastLogins).To(gomega.HaveKeyWithValue(int64(1), now))
			gomega.Expect(*resp.User.LastLogin).To(gomega.Equal(now))
		})

		ginkgo.It("accepts a code from one step either side", func() {
			for _, offset := range []time.Duration{-30 * time.Second, 30 * time.Second} {
				code, err := GenerateCode(secret, now.Add(offset))
				gomega.Expect(err).NotTo(gomega.HaveOccurred())

				_, err = service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: code})
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
			}
		})

		ginkgo.It("rejects a code three steps old", func() {
			code, err := GenerateCode(secret, now.Add(-90*time.Second))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: code})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidTwoFactorCode))
		})

		ginkgo.It("allows the same code to be used twice within its window", func() {
			code, err := GenerateCode(secret, now)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: code})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			_, err = service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: code})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("does not accept an access token as a challenge", func() {
			access, _, err := tokens.Generate(1, "admin", internal.RoleAdmin, PurposeAccess)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			code, _ := GenerateCode(secret, now)

			_, err = service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: access, Code: code})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("rejects an expired challenge", func() {
			code, _ := GenerateCode(secret, now)
			now = now.Add(6 * time.Minute)

			_, err := service.VerifyTwoFactor(ctx, VerifyTwoFactorDTO{ChallengeToken: challenge, Code: code})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("issues a new pair from a refresh token", func() {
			resp, err := service.Login(ctx, LoginDTO{Username: "operator", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			now = now.Add(time.Hour)
			fresh, err := service.RefreshTokens(ctx, RefreshTokenDTO{RefreshToken: resp.Tokens.RefreshToken})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(fresh.ExpiresAt).To(gomega.Equal(now.Add(15 * time.Minute)))
		})

		ginkgo.It("does not accept an access token", func() {
			resp, _ := service.Login(ctx, LoginDTO{Username: "operator", Password: "correct_password"})

			_, err := service.RefreshTokens(ctx, RefreshTokenDTO{RefreshToken: resp.Tokens.AccessToken})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("rejects tokens of deleted users", func() {
			resp, _ := service.Login(ctx, LoginDTO{Username: "operator", Password: "correct_password"})
			delete(repo.users, 2)

			_, err := service.RefreshTokens(ctx, RefreshTokenDTO{RefreshToken: resp.Tokens.RefreshToken})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("builds the principal from the stored user", func() {
			resp, _ := service.Login(ctx, LoginDTO{Username: "operator", Password: "correct_password"})
			repo.users[2].Role = string(internal.RoleUserManager)

			p, err := service.Authenticate(ctx, resp.Tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(p.ID).To(gomega.Equal(int64(2)))
			gomega.Expect(p.Role).To(gomega.Equal(internal.RoleUserManager))
		})

		ginkgo.It("rejects an expired access token", func() {
			resp, _ := service.Login(ctx, LoginDTO{Username: "operator", Password: "correct_password"})
			now = now.Add(16 * time.Minute)

			_, err := service.Authenticate(ctx, resp.Tokens.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})

		ginkgo.It("rejects a token signed with another key", func() {
			other := NewJWTTokenGenerator("another-secret", time.Minute, time.Minute, time.Minute)
			other.now = tokens.now
			forged, _, err := other.Generate(1, "admin", internal.RoleAdmin, PurposeAccess)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Authenticate(ctx, forged)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("rejects tokens of deleted users", func() {
			resp, _ := service.Login(ctx, LoginDTO{Username: "operator", Password: "correct_password"})
			delete(repo.users, 2)

			_, err := service.Authenticate(ctx, resp.Tokens.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("Two-factor management", func() {
		admin := &internal.Principal{ID: 1, Username: "admin", Role: internal.RoleAdmin}
		operator := &internal.Principal{ID: 2, Username: "operator", Role: internal.RoleOperator}

		ginkgo.It("enables two-factor only with a matching code", func() {
			setup, err := service.GenerateTwoFactorSecret(ctx, operator)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(setup.OTPAuthURL).To(gomega.ContainSubstring("issuer=Test"))
			gomega.Expect(*repo.users[2].TwoFactorSecret).To(gomega.Equal(setup.Secret))
			gomega.Expect(repo.users[2].TwoFactorEnabled).To(gomega.BeFalse())

			stale, _ := GenerateCode(setup.Secret, now.Add(-10*time.Minute))
			err = service.EnableTwoFactor(ctx, operator, EnableTwoFactorDTO{Secret: setup.Secret, Code: stale})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidTwoFactorCode))
			gomega.Expect(repo.users[2].TwoFactorEnabled).To(gomega.BeFalse())

			code, _ := GenerateCode(setup.Secret, now)
			gomega.Expect(service.EnableTwoFactor(ctx, operator, EnableTwoFactorDTO{Secret: setup.Secret, Code: code})).To(gomega.Succeed())
			gomega.Expect(repo.users[2].TwoFactorEnabled).To(gomega.BeTrue())
			gomega.Expect(*repo.users[2].TwoFactorSecret).To(gomega.Equal(setup.Secret))
			gomega.Expect(repo.audits).NotTo(gomega.BeEmpty())
			gomega.Expect(repo.audits[len(repo.audits)-1].TargetType).To(gomega.Equal(audit.TargetUser))
		})

		ginkgo.It("replaces the stored secret without touching the enabled flag", func() {
			old := enrol(2)

			setup, err := service.GenerateTwoFactorSecret(ctx, operator)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(setup.Secret).NotTo(gomega.Equal(old))
			gomega.Expect(*repo.users[2].TwoFactorSecret).To(gomega.Equal(setup.Secret))
			gomega.Expect(repo.users[2].TwoFactorEnabled).To(gomega.BeTrue())
			gomega.Expect(repo.audits).To(gomega.HaveLen(1))
			gomega.Expect(repo.audits[0].Details).To(gomega.Equal("generated two-factor secret"))
		})

		ginkgo.It("fails to generate a secret for a deleted account", func() {
			delete(repo.users, 2)
			_, err := service.GenerateTwoFactorSecret(ctx, operator)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(repo.audits).To(gomega.BeEmpty())
		})

		ginkgo.It("lets users disable their own two-factor", func() {
			enrol(2)
			gomega.Expect(service.DisableTwoFactor(ctx, operator, 2)).To(gomega.Succeed())
			gomega.Expect(repo.users[2].TwoFactorEnabled).To(gomega.BeFalse())
			gomega.Expect(repo.users[2].TwoFactorSecret).To(gomega.BeNil())
		})

		ginkgo.It("only lets administrators disable another user's two-factor", func() {
			enrol(1)
			err := service.DisableTwoFactor(ctx, operator, 1)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeForbidden))
			gomega.Expect(repo.users[1].TwoFactorEnabled).To(gomega.BeTrue())

			enrol(2)
			gomega.Expect(service.DisableTwoFactor(ctx, admin, 2)).To(gomega.Succeed())
			gomega.Expect(repo.audits[0].Details).To(gomega.ContainSubstring("operator"))
		})
	})
})
