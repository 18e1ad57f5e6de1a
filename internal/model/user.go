package model

// User roles. RoleAdmin is the privileged role gating admin-only routes.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile is the only identity record in the system, keyed by email.
// Created or replaced via upsert on login.
type UserProfile struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Education string `json:"education,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Image     string `json:"image,omitempty"`
}

// IsAdmin reports whether the profile carries the privileged role.
func (u UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProfileFromDocument extracts the fields the authorization gate needs.
func ProfileFromDocument(doc Document) UserProfile {
	return UserProfile{
		ID:    String(doc["id"]),
		Email: String(doc["email"]),
		Role:  String(doc["role"]),
		Name:  String(doc["name"]),
	}
}
