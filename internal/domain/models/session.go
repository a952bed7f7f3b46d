package models

// Role gates privileged views.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserProfile is the persisted half of a session.
type UserProfile struct {
	ID           ID     `json:"id,omitempty"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Organization string `json:"organization,omitempty"`
	Role         Role   `json:"role"`
	Type         string `json:"type,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *UserProfile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Session pairs a bearer token with the profile it was issued for.
type Session struct {
	Token   string      `json:"token"`
	Profile UserProfile `json:"profile"`
}
