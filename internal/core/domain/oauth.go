package domain

import "fmt"

// AuthorizeErrorKind values are the RFC 6749 §4.1.2.1 codes plus the
// local "unauthenticated" case.
type AuthorizeErrorKind string

const (
	AuthorizeUnauthenticated         AuthorizeErrorKind = "unauthenticated"
	AuthorizeInvalidRequest          AuthorizeErrorKind = "invalid_request"
	AuthorizeUnsupportedResponseType AuthorizeErrorKind = "unsupported_response_type"
	AuthorizeInvalidScope            AuthorizeErrorKind = "invalid_scope"
	AuthorizeAccessDenied            AuthorizeErrorKind = "access_denied"
)

// AuthorizeError carries RedirectURI and State only once the redirect
// target has been validated against the client.
type AuthorizeError struct {
	Kind        AuthorizeErrorKind
	RedirectURI string
	State       string
}

func (e *AuthorizeError) Error() string {
	return fmt.Sprintf("authorize: %s", e.Kind)
}

// CanRedirect reports whether the error may be delivered to the client.
func (e *AuthorizeError) CanRedirect() bool {
	return e.RedirectURI != ""
}

type TokenErrorKind string

const (
	TokenInvalidRequest       TokenErrorKind = "invalid_request"
	TokenInvalidClient        TokenErrorKind = "invalid_client"
	TokenInvalidGrant         TokenErrorKind = "invalid_grant"
	TokenUnauthorizedClient   TokenErrorKind = "unauthorized_client"
	TokenUnsupportedGrantType TokenErrorKind = "unsupported_grant_type"
	TokenInvalidScope         TokenErrorKind = "invalid_scope"
)

type TokenError struct {
	Kind TokenErrorKind
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token exchange: %s", e.Kind)
}

// UpstreamErrorKind classifies admin login failures against accesso.
type UpstreamErrorKind string

const (
	UpstreamFailed       UpstreamErrorKind = "accesso_failed"
	UpstreamTryLater     UpstreamErrorKind = "try_later"
	UpstreamUnauthorized UpstreamErrorKind = "unauthorized_client"
)

type UpstreamError struct {
	Kind UpstreamErrorKind
	Err  error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("accesso: %s", e.Kind)
	}
	return fmt.Sprintf("accesso: %s: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
