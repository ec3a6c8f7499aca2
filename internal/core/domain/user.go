package domain

import (
	"strings"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	CanonicalEmail string    `json:"-"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
}

// CanonicalEmail is the form used for uniqueness checks and credential lookup.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserRegisterForm struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

type UserCredentials struct {
	Email        string
	PasswordHash string
}

// UserEditForm carries optional changes; nil fields are left untouched.
type UserEditForm struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=2"`
	LastName  *string `json:"lastName" validate:"omitnil,min=2"`
	Email     *string `json:"email" validate:"omitnil,email"`
}

type AdminUser struct {
	ID        uuid.UUID `json:"id"`
	AccessoID uuid.UUID `json:"accesso_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// UpstreamProfile is what the upstream viewer endpoint reports about an admin.
type UpstreamProfile struct {
	AccessoID uuid.UUID
	FirstName string
	LastName  string
}
