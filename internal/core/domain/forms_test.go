package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.ErrorIs(t, err, ErrInvalidForm)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	return verr.Fields
}

func TestRegisterConfirmForm_Validate(t *testing.T) {
	tests := []struct {
		name       string
		form       RegisterConfirmForm
		wantFields map[string]string
	}{
		{
			name: "valid",
			form: RegisterConfirmForm{ConfirmationCode: "able-baker", FirstName: "Al", LastName: "Bo", Password: "hunter2hunter"},
		},
		{
			name: "everything too short",
			form: RegisterConfirmForm{ConfirmationCode: "abc", FirstName: "A", LastName: "B", Password: "short"},
			wantFields: map[string]string{
				"confirmationCode": "too short",
				"firstName":        "too short",
				"lastName":         "too short",
				"password":         "too short",
			},
		},
		{
			name:       "multibyte names count runes",
			form:       RegisterConfirmForm{ConfirmationCode: "abcdefg", FirstName: "Ян", LastName: "Ё", Password: "12345678"},
			wantFields: map[string]string{"lastName": "too short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, validationFields(t, err))
		})
	}
}

func TestRegisterRequestForm_Validate(t *testing.T) {
	assert.NoError(t, RegisterRequestForm{Email: "alice@example.com"}.Validate())

	for _, email := range []string{"Alice <alice@example.com>", "not-an-email", ""} {
		t.Run(email, func(t *testing.T) {
			fields := validationFields(t, RegisterRequestForm{Email: email}.Validate())
			assert.Equal(t, map[string]string{"email": "invalid email"}, fields)
		})
	}
}

func TestUserEditForm_Validate(t *testing.T) {
	short, bad := "A", "nope"
	assert.NoError(t, UserEditForm{}.Validate())

	fields := validationFields(t, UserEditForm{FirstName: &short, Email: &bad}.Validate())
	assert.Equal(t, map[string]string{"firstName": "too short", "email": "invalid email"}, fields)
}

func TestAuthorizeForm_Validate(t *testing.T) {
	assert.NoError(t, AuthorizeForm{RedirectURI: "https://c/cb"}.Validate())
	assert.NoError(t, AuthorizeForm{RedirectURI: "http://localhost:3000/callback?x=1"}.Validate())

	for _, uri := range []string{"/relative/path", "c/cb", ""} {
		t.Run(uri, func(t *testing.T) {
			fields := validationFields(t, AuthorizeForm{RedirectURI: uri}.Validate())
			assert.Equal(t, map[string]string{"redirectUri": "invalid url"}, fields)
		})
	}
}

func TestTokenExchangeForm_Validate(t *testing.T) {
	fields := validationFields(t, TokenExchangeForm{RedirectURI: "cb"}.Validate())
	assert.Equal(t, map[string]string{"code": "required", "redirect_uri": "invalid url"}, fields)
}

func TestApplicationForms_Validate(t *testing.T) {
	assert.NoError(t, ApplicationForm{Title: "Blog", RedirectURI: []string{"https://blog/cb"}}.Validate())

	fields := validationFields(t, ApplicationForm{Title: "B"}.Validate())
	assert.Equal(t, map[string]string{"title": "too short", "redirectUri": "required"}, fields)

	fields = validationFields(t, ApplicationForm{Title: "Blog", RedirectURI: []string{"https://blog/cb", "blog"}}.Validate())
	assert.Equal(t, map[string]string{"redirectUri": "invalid url"}, fields)

	assert.NoError(t, ApplicationEditForm{}.Validate())
	fields = validationFields(t, ApplicationEditForm{RedirectURI: []string{}}.Validate())
	assert.Equal(t, map[string]string{"redirectUri": "required"}, fields)
}

func TestCanonicalEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", CanonicalEmail("ALICE@Example.com"))
}
