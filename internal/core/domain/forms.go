package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateForm runs the struct tags of form and reports failures keyed by
// wire field name.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name, _, _ := strings.Cut(fe.Field(), "[")
		if _, seen := fields[name]; !seen {
			fields[name] = reason(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.Slice {
			return "required"
		}
		return "too short"
	case "email":
		return "invalid email"
	case "url":
		return "invalid url"
	default:
		return fe.Tag()
	}
}

type RegisterRequestForm struct {
	Email string `json:"email" validate:"email"`
}

func (f RegisterRequestForm) Validate() error {
	return validateForm(f)
}

type RegisterConfirmForm struct {
	ConfirmationCode string `json:"confirmationCode" validate:"min=7"`
	FirstName        string `json:"firstName" validate:"min=2"`
	LastName         string `json:"lastName" validate:"min=2"`
	Password         string `json:"password" validate:"min=8"`
}

func (f RegisterConfirmForm) Validate() error {
	return validateForm(f)
}

type SessionCreateForm struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=8"`
}

func (f SessionCreateForm) Validate() error {
	return validateForm(f)
}

func (f UserEditForm) Validate() error {
	return validateForm(f)
}

type AuthorizeForm struct {
	ResponseType string   `json:"responseType"`
	ClientID     string   `json:"clientId"`
	RedirectURI  string   `json:"redirectUri" validate:"url"`
	Scopes       []string `json:"scope"`
	State        string   `json:"state"`
}

func (f AuthorizeForm) Validate() error {
	return validateForm(f)
}

type TokenExchangeForm struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code" validate:"required"`
	RedirectURI  string `json:"redirect_uri" validate:"url"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (f TokenExchangeForm) Validate() error {
	return validateForm(f)
}

func (f ApplicationForm) Validate() error {
	return validateForm(f)
}

func (f ApplicationEditForm) Validate() error {
	return validateForm(f)
}
