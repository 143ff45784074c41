package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextUserKey ctxKey = "principal"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleUserManager Role = "user_manager"
	RoleOperator    Role = "operator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUserManager, RoleOperator:
		return true
	}
	return false
}

// Principal is the authenticated actor of a request. It is built from a
// verified session token, never from request input.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// SystemPrincipal attributes background work such as scheduled syncs.
var SystemPrincipal = &Principal{ID: 0, Username: "system", Role: RoleAdmin}

func ContextWithUser(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextUserKey, p)
}

func UserFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextUserKey).(*Principal)
	return p, ok && p != nil
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
