package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, app *TestApp) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: app.Server.URL, client: &http.Client{Jar: jar}}
}

func (b *browser) call(method, path string, body any, header http.Header) (int, map[string]any) {
	b.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, b.base+path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.ContentLength != 0 {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

func (b *browser) post(path string, body any) (int, map[string]any) {
	b.t.Helper()
	return b.call(http.MethodPost, path, body, nil)
}

func (b *browser) signUp(app *TestApp, email, password string) {
	b.t.Helper()
	t := b.t

	status, _ := b.post("/register/request", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, status)

	status, _ = b.post("/register/confirmation", map[string]string{
		"confirmationCode": app.Mail.CodeFor(email),
		"firstName":        "Alice",
		"lastName":         "Liddell",
		"password":         password,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := b.post("/session/create", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Alice", body["firstName"])
}

func TestUserJourney(t *testing.T) {
	app := setupTestApp(t)
	alice := newBrowser(t, app)
	alice.signUp(app, "alice@example.com", "hunter2hunter")

	status, body := alice.post("/session/get", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"firstName": "Alice", "lastName": "Liddell"}, body["user"])

	status, body = alice.post("/register/request", map[string]string{"email": "ALICE@Example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "email_already_registered", body["error"])

	status, body = alice.post("/oauth/authorize", map[string]string{
		"responseType": "code",
		"clientId":     app.AdminClient.ID.String(),
		"redirectUri":  AdminRedirect,
		"state":        "xyz",
	})
	require.Equal(t, http.StatusOK, status)
	code, _ := body["code"].(string)
	require.NotEmpty(t, code)

	anonymous := newBrowser(t, app)
	status, body = anonymous.post("/oauth/token", map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  AdminRedirect,
		"client_id":     app.AdminClient.ID.String(),
		"client_secret": "admin-secret",
	})
	require.Equal(t, http.StatusCreated, status)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	status, body = anonymous.call(http.MethodPost, "/viewer.get", nil, http.Header{"X-Access-Token": {token}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice", body["firstName"])

	status, _ = alice.post("/session/delete", map[string]bool{"deleteAllSessions": true})
	require.Equal(t, http.StatusOK, status)
	status, _ = alice.post("/session/get", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminLoginThroughOwnUpstream(t *testing.T) {
	app := setupTestApp(t)
	operator := newBrowser(t, app)
	operator.signUp(app, "ops@example.com", "correct-horse")

	status, body := operator.call(http.MethodGet, "/admin/session/login", nil, nil)
	require.Equal(t, http.StatusOK, status)
	loginURL, err := url.Parse(body["url"].(string))
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", loginURL.Path)
	assert.Equal(t, app.AdminClient.ID.String(), loginURL.Query().Get("client_id"))
	assert.Equal(t, body["state"], loginURL.Query().Get("state"))

	status, body = operator.post("/oauth/authorize", map[string]string{
		"responseType": loginURL.Query().Get("response_type"),
		"clientId":     loginURL.Query().Get("client_id"),
		"redirectUri":  loginURL.Query().Get("redirect_uri"),
		"state":        loginURL.Query().Get("state"),
	})
	require.Equal(t, http.StatusOK, status)

	status, body = operator.post("/admin/session/create", map[string]any{"authorizationCode": body["code"]})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Alice", body["firstName"])

	status, body = operator.post("/admin/applications", map[string]any{
		"title":       "Blog",
		"redirectUri": []string{"https://blog.example.com/cb"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.NotEmpty(t, body["secretKey"])

	status, body = operator.call(http.MethodGet, "/admin/applications", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["applications"], 2)

	status, body = operator.post("/admin/session/create", map[string]any{"authorizationCode": "stale"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "try_later", body["error"])

	status, _ = operator.call(http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}
