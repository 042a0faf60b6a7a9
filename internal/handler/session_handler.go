package handler

import (
	"net/http"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Session & navigation
// ============================================================

func signInHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/session")
		defer span.End()

		var req domain.SignInRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		view, err := authSvc.SignIn(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func currentSessionHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authSvc.Current())
	}
}

func signOutHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/session")
		defer span.End()

		if err := authSvc.SignOut(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func navigationHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := authSvc.Navigation()
		if items == nil {
			items = []domain.NavigationItem{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items":         items,
			"redirectRoute": authSvc.Current().RedirectRoute,
		})
	}
}
