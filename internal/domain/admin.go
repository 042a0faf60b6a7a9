package domain

// ============================================================
// Administrative resources: roles, users, tabs (features)
// ============================================================

// Feature is a tab that permissions are granted on.
type Feature struct {
	ID   ID     `json:"id"`
	Name string `json:"name" validate:"required"`
}

// RolePermission grants operations on one feature.
type RolePermission struct {
	FeatureID  ID       `json:"featureId" validate:"required"`
	Operations []string `json:"operations" validate:"dive,required"`
}

// Role is a named set of feature permissions.
type Role struct {
	ID          ID               `json:"id"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Permissions []RolePermission `json:"permissions" validate:"dive"`
}

// AdminUser is a user as listed on the users screen.
type AdminUser struct {
	ID       ID       `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	RoleID   ID       `json:"role_id"`
	Role     *RoleRef `json:"role,omitempty"`
}

// UserInput is the create/update form of a user. On update Password may be
// empty; when present it must match ConfirmPassword.
type UserInput struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	RoleID          ID     `json:"role_id" validate:"required"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}
