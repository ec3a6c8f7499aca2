package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

const accessTokenHeader = "X-Access-Token"

type OAuthHandler struct {
	oauth  ports.OAuthService
	viewer ports.ViewerService
}

func NewOAuthHandler(oauth ports.OAuthService, viewer ports.ViewerService) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, viewer: viewer}
}

// scopeList decodes either a space separated string or an array of scopes.
type scopeList []string

func (s *scopeList) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*s = strings.Fields(joined)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("scope must be a string or an array of strings")
	}
	*s = list
	return nil
}

type authorizeBody struct {
	ResponseType string    `json:"responseType"`
	ClientID     string    `json:"clientId"`
	RedirectURI  string    `json:"redirectUri"`
	Scope        scopeList `json:"scope,omitempty"`
	State        string    `json:"state,omitempty"`
}

type authorizeResponse struct {
	RedirectURI string `json:"redirectUri"`
	Code        string `json:"code"`
	State       string `json:"state,omitempty"`
}

type authorizeErrorResponse struct {
	Error       string `json:"error"`
	RedirectURI string `json:"redirectUri,omitempty"`
	State       string `json:"state,omitempty"`
}

// Authorize godoc
// @Summary      Issues an authorization code
// @Description  Issues a code for the signed-in user. The redirect target and state are only echoed back once they were validated against the client. scope may be a space separated string or an array.
// @Tags         oauth
// @Accept       json
// @Success      200
// @Failure      400
// @Failure      401
// @Failure      500
// @Router       /oauth/authorize [post]
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	var body authorizeBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeJSON(w, r, http.StatusBadRequest, authorizeErrorResponse{Error: string(domain.AuthorizeInvalidRequest)})
		return
	}

	res, err := h.oauth.Authorize(r.Context(), userFromContext(r.Context()), domain.AuthorizeForm{
		ResponseType: body.ResponseType,
		ClientID:     body.ClientID,
		RedirectURI:  body.RedirectURI,
		Scopes:       body.Scope,
		State:        body.State,
	})
	if err != nil {
		var authErr *domain.AuthorizeError
		if !errors.As(err, &authErr) {
			writeServiceError(w, r, err)
			return
		}
		log.Ctx(r.Context()).Info().Str("error_code", string(authErr.Kind)).Msg("authorize rejected")
		writeJSON(w, r, http.StatusBadRequest, authorizeErrorResponse{
			Error:       string(authErr.Kind),
			RedirectURI: authErr.RedirectURI,
			State:       authErr.State,
		})
		return
	}

	writeJSON(w, r, http.StatusOK, authorizeResponse{
		RedirectURI: res.RedirectURI,
		Code:        res.Code,
		State:       res.State,
	})
}

type tokenBody struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the unix time the token stops working.
	ExpiresIn int64 `json:"expires_in"`
}

type tokenErrorResponse struct {
	Error string `json:"error"`
}

// Token godoc
// @Summary      Exchanges an authorization code
// @Description  Trades a code for an access token. Both JSON and form encoded bodies are accepted, and client credentials may come through HTTP Basic auth.
// @Tags         oauth
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      500
// @Router       /oauth/token [post]
func (h *OAuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	body, err := readTokenBody(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, tokenErrorResponse{Error: string(domain.TokenInvalidRequest)})
		return
	}

	res, err := h.oauth.Exchange(r.Context(), domain.TokenExchangeForm{
		GrantType:    body.GrantType,
		Code:         body.Code,
		RedirectURI:  body.RedirectURI,
		ClientID:     body.ClientID,
		ClientSecret: body.ClientSecret,
	})
	if err != nil {
		var tokenErr *domain.TokenError
		if !errors.As(err, &tokenErr) {
			writeServiceError(w, r, err)
			return
		}
		log.Ctx(r.Context()).Info().Str("error_code", string(tokenErr.Kind)).Msg("token exchange rejected")
		writeJSON(w, r, http.StatusBadRequest, tokenErrorResponse{Error: string(tokenErr.Kind)})
		return
	}

	writeJSON(w, r, http.StatusCreated, tokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresAt.Unix(),
	})
}

func readTokenBody(r *http.Request) (tokenBody, error) {
	var body tokenBody
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return body, errors.Join(domain.ErrInvalidPayload, err)
		}
		body.GrantType = r.PostForm.Get("grant_type")
		body.Code = r.PostForm.Get("code")
		body.RedirectURI = r.PostForm.Get("redirect_uri")
		body.ClientID = r.PostForm.Get("client_id")
		body.ClientSecret = r.PostForm.Get("client_secret")
	} else if err := decodeJSON(r, &body, false); err != nil {
		return body, err
	}

	if body.ClientID == "" && body.ClientSecret == "" {
		id, secret, err := basicClientCredentials(r)
		if err != nil {
			return body, err
		}
		body.ClientID, body.ClientSecret = id, secret
	}
	return body, nil
}

// basicClientCredentials reads RFC 6749 section 2.3.1 credentials, which are
// form encoded before being placed in the Basic header.
func basicClientCredentials(r *http.Request) (string, string, error) {
	id, secret, ok := r.BasicAuth()
	if !ok {
		return "", "", nil
	}
	id, err := url.QueryUnescape(id)
	if err != nil {
		return "", "", errors.Join(domain.ErrInvalidPayload, err)
	}
	secret, err = url.QueryUnescape(secret)
	if err != nil {
		return "", "", errors.Join(domain.ErrInvalidPayload, err)
	}
	return id, secret, nil
}

type viewerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Viewer godoc
// @Summary      Returns the token owner
// @Description  Reads the user an access token was issued for. The token is taken from the X-Access-Token header.
// @Tags         oauth
// @Success      200
// @Failure      401
// @Router       /viewer.get [post]
func (h *OAuthHandler) Viewer(w http.ResponseWriter, r *http.Request) {
	token := accessTokenFromRequest(r)
	if token == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidToken)
		return
	}

	user, err := h.viewer.Get(r.Context(), token)
	if errors.Is(err, domain.ErrUnauthorized) {
		writeError(w, r, http.StatusBadRequest, codeUnauthorized)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, viewerResponse{
		ID:        user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func accessTokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(accessTokenHeader); token != "" {
		return token
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
