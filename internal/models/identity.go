// internal/models/identity.go
package models

// Identity is the verified caller handed to services by the auth middleware.
type Identity struct {
	UserID uint
	Role   Role
}

func (i Identity) Is(role Role) bool {
	return i.Role == role
}
