package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type ApplicationHandler struct {
	service ports.ApplicationService
}

func NewApplicationHandler(service ports.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

type applicationResponse struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	SecretKey            string   `json:"secretKey,omitempty"`
	RedirectURI          []string `json:"redirectUri"`
	IsDev                bool     `json:"isDev"`
	AllowedRegistrations bool     `json:"allowedRegistrations"`
}

func toApplicationResponse(app *domain.Application) applicationResponse {
	redirects := app.RedirectURI
	if redirects == nil {
		redirects = []string{}
	}
	return applicationResponse{
		ID:                   app.ID.String(),
		Title:                app.Title,
		SecretKey:            app.SecretKey,
		RedirectURI:          redirects,
		IsDev:                app.IsDev,
		AllowedRegistrations: app.AllowedRegistrations,
	}
}

type applicationListResponse struct {
	Applications []applicationResponse `json:"applications"`
}

// List godoc
// @Summary      Lists client applications
// @Tags         applications
// @Success      200
// @Failure      401
// @Router       /admin/applications [get]
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := applicationListResponse{Applications: make([]applicationResponse, 0, len(apps))}
	for _, app := range apps {
		res.Applications = append(res.Applications, toApplicationResponse(app))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Get godoc
// @Summary      Returns a client application
// @Tags         applications
// @Param        id  path  string  true  "Application ID"
// @Success      200
// @Failure      401
// @Failure      404
// @Router       /admin/applications/{id} [get]
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}

	app, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toApplicationResponse(app))
}

type applicationCreateBody struct {
	Title                string   `json:"title"`
	RedirectURI          []string `json:"redirectUri"`
	IsDev                bool     `json:"isDev"`
	AllowedRegistrations bool     `json:"allowedRegistrations"`
}

// Create godoc
// @Summary      Registers a client application
// @Description  Answers with the cleartext secret. It is not retrievable later.
// @Tags         applications
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      401
// @Router       /admin/applications [post]
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body applicationCreateBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	app, err := h.service.Create(r.Context(), domain.ApplicationForm{
		Title:                body.Title,
		RedirectURI:          body.RedirectURI,
		IsDev:                body.IsDev,
		AllowedRegistrations: body.AllowedRegistrations,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toApplicationResponse(app))
}

type applicationEditBody struct {
	Title                *string  `json:"title"`
	RedirectURI          []string `json:"redirectUri"`
	IsDev                *bool    `json:"isDev"`
	AllowedRegistrations *bool    `json:"allowedRegistrations"`
}

// Edit godoc
// @Summary      Edits a client application
// @Description  Omitted fields are left untouched.
// @Tags         applications
// @Accept       json
// @Param        id  path  string  true  "Application ID"
// @Success      200
// @Failure      400
// @Failure      401
// @Failure      404
// @Router       /admin/applications/{id} [patch]
func (h *ApplicationHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}

	var body applicationEditBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	app, err := h.service.Edit(r.Context(), id, domain.ApplicationEditForm{
		Title:                body.Title,
		RedirectURI:          body.RedirectURI,
		IsDev:                body.IsDev,
		AllowedRegistrations: body.AllowedRegistrations,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toApplicationResponse(app))
}

// RegenerateSecret godoc
// @Summary      Rotates the client secret
// @Description  Answers with the new cleartext secret. The previous one stops working immediately.
// @Tags         applications
// @Param        id  path  string  true  "Application ID"
// @Success      200
// @Failure      401
// @Failure      404
// @Router       /admin/applications/{id}/regenerate-secret [post]
func (h *ApplicationHandler) RegenerateSecret(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}

	app, err := h.service.RegenerateSecret(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toApplicationResponse(app))
}

func applicationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, codeApplicationNotFound)
		return uuid.Nil, false
	}
	return id, true
}
