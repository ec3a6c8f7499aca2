package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApplication_IsAllowedRedirect(t *testing.T) {
	app := Application{RedirectURI: []string{"https://c/cb", "http://localhost/cb"}}

	assert.True(t, app.IsAllowedRedirect("https://c/cb"))
	assert.False(t, app.IsAllowedRedirect("https://c/cb/"))
	assert.False(t, app.IsAllowedRedirect("https://c/cb?x=1"))
	assert.False(t, app.IsAllowedRedirect("https://C/cb"))
	assert.False(t, app.IsAllowedRedirect("https://c/other"))
}

func TestApplication_IsAllowedSecret(t *testing.T) {
	id := uuid.New()
	app := Application{ID: id, SecretKey: "s", RedirectURI: []string{"https://c/cb"}}

	assert.True(t, app.IsAllowedSecret(id, "s"))
	assert.False(t, app.IsAllowedSecret(id, "wrong"))
	assert.False(t, app.IsAllowedSecret(uuid.New(), "s"))
	assert.True(t, app.IsEnabled())

	app.SecretKey = ""
	assert.False(t, app.IsAllowedSecret(id, ""))
	assert.False(t, app.IsEnabled())
}

func TestApplication_WithoutSecret(t *testing.T) {
	app := Application{SecretKey: "s", RedirectURI: []string{"https://c/cb"}}
	public := app.WithoutSecret()

	assert.Empty(t, public.SecretKey)
	assert.Equal(t, "s", app.SecretKey)
	public.RedirectURI[0] = "changed"
	assert.Equal(t, "https://c/cb", app.RedirectURI[0])
}

func TestAuthorizationCode_IsExpired(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	code := AuthorizationCode{Code: "c", CreatedAt: created}

	assert.False(t, code.IsExpired(created))
	assert.False(t, code.IsExpired(created.Add(15*time.Minute-time.Second)))
	assert.True(t, code.IsExpired(created.Add(15*time.Minute)))
	assert.True(t, code.IsExpired(created.Add(time.Hour)))
}
