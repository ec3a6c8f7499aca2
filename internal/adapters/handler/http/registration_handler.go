package http

import (
	"net/http"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type RegistrationHandler struct {
	service ports.RegistrationService
}

func NewRegistrationHandler(service ports.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

type registerRequestBody struct {
	Email string `json:"email"`
}

type registerRequestResponse struct {
	ExpiresAt int64 `json:"expiresAt"`
}

// Request godoc
// @Summary      Starts a registration
// @Description  Stores a registration request for the email and sends the confirmation code to it.
// @Tags         register
// @Accept       json
// @Success      200
// @Failure      400
// @Failure      500
// @Router       /register/request [post]
func (h *RegistrationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body registerRequestBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	req, err := h.service.CreateRegisterRequest(r.Context(), domain.RegisterRequestForm{Email: body.Email})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, registerRequestResponse{ExpiresAt: req.ExpiresAt.Unix()})
}

type registerConfirmBody struct {
	ConfirmationCode string `json:"confirmationCode"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Password         string `json:"password"`
}

// Confirm godoc
// @Summary      Finishes a registration
// @Description  Creates the user from a confirmation code. The code is consumed even when the user cannot be created.
// @Tags         register
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      500
// @Router       /register/confirmation [post]
func (h *RegistrationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var body registerConfirmBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	err := h.service.ConfirmRegistration(r.Context(), domain.RegisterConfirmForm{
		ConfirmationCode: body.ConfirmationCode,
		FirstName:        body.FirstName,
		LastName:         body.LastName,
		Password:         body.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
