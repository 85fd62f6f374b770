package models

// Role is the marketplace role carried on every account.
type Role string

const (
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
	RoleAdmin      Role = "Admin"
)

// User is the identity shape returned by the auth endpoints.
type User struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// AuthResponse is the login/register response body.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// AvatarResponse is the avatar upload response body.
type AvatarResponse struct {
	Avatar  string `json:"avatar"`
	Message string `json:"message"`
}
