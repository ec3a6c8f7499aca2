package domain

import (
	"slices"

	"github.com/google/uuid"
)

// ResponseTypeCode is the only authorization response type served.
const ResponseTypeCode = "code"

// GrantTypeAuthorizationCode is the only token grant served.
const GrantTypeAuthorizationCode = "authorization_code"

type Application struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	SecretKey            string    `json:"secret_key,omitempty"`
	RedirectURI          []string  `json:"redirect_uri"`
	IsDev                bool      `json:"is_dev"`
	AllowedRegistrations bool      `json:"allowed_registrations"`
}

// IsAllowedRedirect matches the exact string against the registered set.
func (a *Application) IsAllowedRedirect(redirectURI string) bool {
	return slices.Contains(a.RedirectURI, redirectURI)
}

func (a *Application) IsAllowedResponse(responseType string) bool {
	return responseType == ResponseTypeCode
}

func (a *Application) IsAllowedSecret(clientID uuid.UUID, secret string) bool {
	return a.ID == clientID && a.SecretKey != "" && a.SecretKey == secret
}

// IsEnabled is false for applications that can never complete an exchange.
func (a *Application) IsEnabled() bool {
	return a.SecretKey != "" && len(a.RedirectURI) > 0
}

// WithoutSecret returns a copy safe to hand to non-admin readers.
func (a Application) WithoutSecret() Application {
	a.SecretKey = ""
	a.RedirectURI = slices.Clone(a.RedirectURI)
	return a
}

type ApplicationForm struct {
	Title                string   `json:"title" validate:"min=2"`
	RedirectURI          []string `json:"redirectUri" validate:"min=1,dive,url"`
	IsDev                bool     `json:"isDev"`
	AllowedRegistrations bool     `json:"allowedRegistrations"`
}

// ApplicationEditForm leaves nil fields untouched. A non-nil empty
// RedirectURI is rejected.
type ApplicationEditForm struct {
	Title                *string  `json:"title" validate:"omitnil,min=2"`
	RedirectURI          []string `json:"redirectUri" validate:"omitnil,min=1,dive,url"`
	IsDev                *bool    `json:"isDev"`
	AllowedRegistrations *bool    `json:"allowedRegistrations"`
}
