package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/transport"
)

type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

// Check lets the request through when the user holds any of the permissions.
func (ra *RBACAuthorization) Check(next http.HandlerFunc, permissions ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			ra.HandleServiceError(w, internal.ErrInvalidToken.WithMessage("unauthorized"))
			return
		}

		if !user.HasAnyPermission(permissions...) {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", user.ID,
				"role", user.Role,
				"required_permissions", permissions)
			ra.HandleServiceError(w, internal.ErrUnauthorizedAccess.WithMessage("insufficient permissions"))
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permissions...)
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.HandleServiceError(w, internal.ErrInvalidToken.WithMessage("unauthorized"))
				return
			}
			if !user.IsAdmin() {
				ra.Logger.WarnContext(r.Context(), "access denied: admin role required", "user_id", user.ID)
				ra.HandleServiceError(w, internal.ErrUnauthorizedAccess.WithMessage("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
