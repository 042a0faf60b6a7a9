package handler

import (
	"net/http"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Admin: roles
// ============================================================

func listRolesHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/roles")
		defer span.End()

		roles, err := admin.ListRoles(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if roles == nil {
			roles = []domain.Role{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
	}
}

func getRoleHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/roles/{id}")
		defer span.End()

		role, err := admin.GetRole(ctx, pathID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, role)
	}
}

func createRoleHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/roles")
		defer span.End()

		var role domain.Role
		if err := decodeJSON(r, &role); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := admin.CreateRole(ctx, &role)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, out)
	}
}

func updateRoleHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/roles/{id}")
		defer span.End()

		var role domain.Role
		if err := decodeJSON(r, &role); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := admin.UpdateRole(ctx, pathID(r), &role)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func deleteRoleHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/roles/{id}")
		defer span.End()

		if err := admin.DeleteRole(ctx, pathID(r)); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Admin: users
// ============================================================

func listUsersHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/users")
		defer span.End()

		users, err := admin.ListUsers(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if users == nil {
			users = []domain.AdminUser{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}

func getUserHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/users/{id}")
		defer span.End()

		user, err := admin.GetUser(ctx, pathID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func createUserHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users")
		defer span.End()

		var in domain.UserInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := admin.CreateUser(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, out)
	}
}

func updateUserHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/users/{id}")
		defer span.End()

		var in domain.UserInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := admin.UpdateUser(ctx, pathID(r), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func deleteUserHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/users/{id}")
		defer span.End()

		if err := admin.DeleteUser(ctx, pathID(r)); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Admin: tabs
// ============================================================

func listTabsHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/tabs")
		defer span.End()

		tabs, err := admin.ListTabs(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if tabs == nil {
			tabs = []domain.Feature{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"tabs": tabs})
	}
}

func createTabHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/tabs")
		defer span.End()

		var tab domain.Feature
		if err := decodeJSON(r, &tab); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := admin.CreateTab(ctx, &tab)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, out)
	}
}

func updateTabHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/tabs/{id}")
		defer span.End()

		var tab domain.Feature
		if err := decodeJSON(r, &tab); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := admin.UpdateTab(ctx, pathID(r), &tab)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func deleteTabHandler(admin *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/tabs/{id}")
		defer span.End()

		if err := admin.DeleteTab(ctx, pathID(r)); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
