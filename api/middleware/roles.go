package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

const adminSecretHeader = "x-admin-secret"

func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits operators either through the shared admin secret
// header or through an admin-role JWT already validated upstream.
func RequireAdmin(secret string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				provided := r.Header.Get(adminSecretHeader)
				if provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1 {
					ctx := WithRole(r.Context(), string(enums.RoleAdmin))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			if RoleFromContext(r.Context()) == string(enums.RoleAdmin) {
				next.ServeHTTP(w, r)
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
		})
	}
}
