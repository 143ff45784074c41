package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/frahmantamala/inventory-management/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	VerifyTwoFactor(ctx context.Context, dto VerifyTwoFactorDTO) (*LoginResponse, error)
	RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (*AuthTokens, error)
	Authenticate(ctx context.Context, token string) (*internal.Principal, error)
	GenerateTwoFactorSecret(ctx context.Context, actor *internal.Principal) (*TwoFactorSetup, error)
	EnableTwoFactor(ctx context.Context, actor *internal.Principal, dto EnableTwoFactorDTO) error
	DisableTwoFactor(ctx context.Context, actor *internal.Principal, userID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var dto VerifyTwoFactorDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.VerifyTwoFactor(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout is stateless: tokens simply expire. The endpoint only confirms the
// caller was authenticated.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Principal(r); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GenerateTwoFactor(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	setup, err := h.Service.GenerateTwoFactorSecret(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, setup)
}

func (h *Handler) EnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto EnableTwoFactorDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.EnableTwoFactor(r.Context(), actor, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.DisableTwoFactor(r.Context(), actor, actor.ID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DisableUserTwoFactor is the administrator variant for another account.
func (h *Handler) DisableUserTwoFactor(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.DisableTwoFactor(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware resolves the bearer token into a principal. Requests without
// a valid access token never reach the wrapped handler.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, r, internal.ErrUnauthenticated)
			return
		}

		principal, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithUser(r.Context(), principal)
		ctx = logger.With(ctx, "user", principal.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
