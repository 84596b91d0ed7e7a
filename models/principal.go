package models

// Principal is the authenticated caller of a request
type Principal struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

// IsUser reports whether the principal acts as a buyer
func (p Principal) IsUser() bool {
	return p.Role == RoleUser
}

// IsArtisan reports whether the principal acts as a seller
func (p Principal) IsArtisan() bool {
	return p.Role == RoleArtisan
}

// ValidRole reports whether role is one of the known principal roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleArtisan
}
