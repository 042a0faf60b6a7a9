package domain

// RoleRef is the role attached to a signed-in user.
type RoleRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// User is the signed-in operator's profile, as returned by sign-in and as
// persisted in durable client storage under "userData".
type User struct {
	ID          ID          `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Permissions Permissions `json:"permissions"`
	Role        *RoleRef    `json:"role,omitempty"`
}

// RoleName returns the user's role name or "" when no role is attached.
func (u *User) RoleName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// Clone returns a deep copy so callers cannot mutate shared session state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Role != nil {
		r := *u.Role
		c.Role = &r
	}
	if u.Permissions != nil {
		c.Permissions = make(Permissions, len(u.Permissions))
		for k, v := range u.Permissions {
			c.Permissions[k] = append([]PermissionTag{}, v...)
		}
	}
	return &c
}

// SignInRequest is the body of POST /api/auth/signin.
type SignInRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// SignInResponse is the backend's answer to sign-in.
type SignInResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Data    *User  `json:"data"`
	Message string `json:"message"`
}

// SessionView is what the browser sees of the current session.
type SessionView struct {
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user,omitempty"`
	RedirectRoute string `json:"redirectRoute"`
}
