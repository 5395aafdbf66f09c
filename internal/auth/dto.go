package auth

import (
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/users"
)

const minPasswordLen = 6

// LoginRequest is accepted both as JSON and as the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Remember bool   `json:"remember" form:"remember"`
}

// RegisterRequest is accepted both as JSON and as the registration form.
type RegisterRequest struct {
	Nombre          string `json:"nombre" form:"nombre" validate:"required,max=100"`
	Apellido        string `json:"apellido" form:"apellido" validate:"required,max=100"`
	Email           string `json:"email" form:"email" validate:"required,email,max=120"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password,omitempty" form:"confirm_password"`
}

// LoginResult tells callers who logged in and where to send them next.
type LoginResult struct {
	User         *users.UserDTO     `json:"user"`
	ActiveSystem *systems.SystemDTO `json:"active_system,omitempty"`
	HasSystem    bool               `json:"has_system"`
}

const (
	RedirectDashboard = "/inicio"
	RedirectAddSystem = "/add-system"
)

// Redirect is the page a freshly logged in user lands on.
func (r LoginResult) Redirect() string {
	if r.HasSystem {
		return RedirectDashboard
	}
	return RedirectAddSystem
}
