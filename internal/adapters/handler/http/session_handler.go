package http

import (
	"net/http"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
	accounts ports.AccountService
	cookies  CookieConfig
	now      ports.Clock
}

func NewSessionHandler(sessions ports.SessionService, accounts ports.AccountService, cookies CookieConfig, now ports.Clock) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		accounts: accounts,
		cookies:  cookies.withDefaults(),
		now:      now,
	}
}

type sessionCreateBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userNames struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type sessionGetResponse struct {
	User userNames `json:"user"`
}

type accountResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Create godoc
// @Summary      Signs the user in
// @Description  Checks the credentials and sets the session cookie.
// @Tags         session
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      500
// @Router       /session/create [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body sessionCreateBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	session, user, err := h.sessions.Create(r.Context(), domain.SessionCreateForm{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.cookies.set(w, h.cookies.Name, session.Token, session.ExpiresAt)
	writeJSON(w, r, http.StatusCreated, userNames{FirstName: user.FirstName, LastName: user.LastName})
}

// Get godoc
// @Summary      Returns the signed-in user
// @Description  Reads the user behind the session cookie.
// @Tags         session
// @Success      200
// @Failure      401
// @Router       /session/get [post]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}

	writeJSON(w, r, http.StatusOK, sessionGetResponse{
		User: userNames{FirstName: user.FirstName, LastName: user.LastName},
	})
}

type sessionDeleteBody struct {
	DeleteAllSessions bool `json:"deleteAllSessions"`
}

// Delete godoc
// @Summary      Signs the user out
// @Description  Deletes the current session, or every session of the user when deleteAllSessions is set.
// @Tags         session
// @Accept       json
// @Success      200
// @Failure      400
// @Failure      401
// @Router       /session/delete [post]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}

	var body sessionDeleteBody
	if err := decodeJSON(r, &body, true); err != nil {
		writeServiceError(w, r, err)
		return
	}

	strategy := ports.DeleteAllSessions()
	if !body.DeleteAllSessions {
		cookie, _ := r.Cookie(h.cookies.Name)
		strategy = ports.DeleteSingleSession(cookie.Value)
	}
	if err := h.sessions.Delete(r.Context(), user, strategy); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.cookies.expire(w, h.cookies.Name, h.now())
	w.WriteHeader(http.StatusOK)
}

type accountEditBody struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

// EditAccount godoc
// @Summary      Edits the signed-in user
// @Description  Updates the names or the email of the user behind the session cookie. Omitted fields are left untouched.
// @Tags         session
// @Accept       json
// @Success      200
// @Failure      400
// @Failure      401
// @Router       /account/edit [post]
func (h *SessionHandler) EditAccount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, r, http.StatusUnauthorized, codeUnauthorized)
		return
	}

	var body accountEditBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.accounts.Edit(r.Context(), user, domain.UserEditForm{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, accountResponse{
		ID:        updated.ID.String(),
		Email:     updated.Email,
		FirstName: updated.FirstName,
		LastName:  updated.LastName,
	})
}
