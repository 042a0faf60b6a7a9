package handler

import (
	"net/http"

	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// RequireSession rejects requests while no operator is signed in.
// Permission checks happen in the services, which know the screen and action.
func RequireSession(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authSvc == nil || !authSvc.Current().Authenticated {
				logger.Debug("session: none active",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "no active session: please sign in")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
