package http

import (
	"errors"
	"net/http"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type AdminHandler struct {
	sessions ports.AdminSessionService
	cookies  CookieConfig
	loginURL func(state string) string
	now      ports.Clock
}

func NewAdminHandler(sessions ports.AdminSessionService, cookies CookieConfig, loginURL func(state string) string, now ports.Clock) *AdminHandler {
	return &AdminHandler{
		sessions: sessions,
		cookies:  cookies.withDefaults(),
		loginURL: loginURL,
		now:      now,
	}
}

type adminLoginResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// Login godoc
// @Summary      Starts the admin login
// @Description  Hands out the upstream authorize URL. The admin UI keeps state and compares it when accesso redirects back.
// @Tags         admin
// @Success      200
// @Failure      500
// @Router       /admin/session/login [get]
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.loginURL == nil {
		writeError(w, r, http.StatusNotFound, "admin_login_disabled")
		return
	}
	state := xid.New().String()
	writeJSON(w, r, http.StatusOK, adminLoginResponse{URL: h.loginURL(state), State: state})
}

type adminSessionCreateBody struct {
	AuthorizationCode string `json:"authorizationCode"`
}

type adminUserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type adminSessionGetResponse struct {
	User adminUserResponse `json:"user"`
}

// Create godoc
// @Summary      Finishes the admin login
// @Description  Exchanges the upstream authorization code and sets the admin session cookie.
// @Tags         admin
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      500
// @Router       /admin/session/create [post]
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body adminSessionCreateBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	session, admin, err := h.sessions.Create(r.Context(), body.AuthorizationCode)
	if err != nil {
		var upstream *domain.UpstreamError
		if !errors.As(err, &upstream) {
			writeServiceError(w, r, err)
			return
		}
		log.Ctx(r.Context()).Warn().Err(err).Msg("admin login rejected by accesso")
		status := http.StatusBadRequest
		if upstream.Kind == domain.UpstreamUnauthorized {
			status = http.StatusUnauthorized
		}
		writeError(w, r, status, string(upstream.Kind))
		return
	}

	h.cookies.set(w, h.cookies.AdminName, session.Token, session.ExpiresAt)
	writeJSON(w, r, http.StatusCreated, userNames{FirstName: admin.FirstName, LastName: admin.LastName})
}

// Get godoc
// @Summary      Returns the signed-in admin
// @Description  Reads the admin behind the admin session cookie.
// @Tags         admin
// @Success      200
// @Failure      401
// @Router       /admin/session/get [post]
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	admin := adminFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, adminSessionGetResponse{
		User: adminUserResponse{
			ID:        admin.ID.String(),
			FirstName: admin.FirstName,
			LastName:  admin.LastName,
		},
	})
}

// Delete godoc
// @Summary      Signs the admin out
// @Description  Deletes the admin session and clears its cookie.
// @Tags         admin
// @Success      200
// @Failure      401
// @Router       /admin/session/delete [post]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin := adminFromContext(r.Context())

	var body sessionDeleteBody
	if err := decodeJSON(r, &body, true); err != nil {
		writeServiceError(w, r, err)
		return
	}

	strategy := ports.DeleteAllSessions()
	if !body.DeleteAllSessions {
		cookie, _ := r.Cookie(h.cookies.AdminName)
		strategy = ports.DeleteSingleSession(cookie.Value)
	}
	if err := h.sessions.Delete(r.Context(), admin, strategy); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.cookies.expire(w, h.cookies.AdminName, h.now())
	w.WriteHeader(http.StatusOK)
}
