package auth

import (
	"net/http"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/transport"
)

// RBACAuthorization gates routes on the same policy table the services
// consult, so a route can never be more permissive than its service.
type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(baseHandler *transport.BaseHandler) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: baseHandler,
	}
}

func (ra *RBACAuthorization) Require(action policy.Action, resource policy.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				ra.HandleServiceError(w, r, internal.ErrUnauthenticated)
				return
			}

			if err := policy.Check(user, action, resource); err != nil {
				ra.Logger.WarnContext(r.Context(), "access denied",
					"user_id", user.ID,
					"role", user.Role,
					"action", action,
					"resource", resource)
				ra.HandleServiceError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
