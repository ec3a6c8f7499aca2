package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

// Wire error codes shared by the non-OAuth endpoints.
const (
	codeInvalidForm            = "invalid_form"
	codeInvalidPayload         = "invalid_payload"
	codeUnauthorized           = "unauthorized"
	codeInvalidToken           = "invalid_token"
	codeInvalidCredentials     = "invalid_credentials"
	codeEmailAlreadyRegistered = "email_already_registered"
	codeCodeInvalidOrExpired   = "code_invalid_or_expired"
	codeEmailAlreadyActivated  = "email_already_activated"
	codeApplicationNotFound    = "application_not_found"
	codeTryLater               = "try_later"
	codeInternal               = "internal_server_error"
)

type errorResponse struct {
	Error         string            `json:"error"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	writeJSON(w, r, status, errorResponse{
		Error:         code,
		CorrelationID: CorrelationCtx(r.Context()),
	})
}

// decodeJSON reads a single JSON document. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.Join(domain.ErrInvalidPayload, err)
	}
	return nil
}

// writeServiceError answers with the wire code of a workflow error. Anything
// not classified here is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		logger.Debug().Interface("fields", validation.Fields).Msg("form rejected")
		writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Error:         codeInvalidForm,
			Fields:        validation.Fields,
			CorrelationID: CorrelationCtx(r.Context()),
		})
		return
	}

	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logEvent(logger, status).Str("error_code", code).Msg("request rejected")
	}
	writeError(w, r, status, code)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest, codeInvalidPayload
	case errors.Is(err, domain.ErrEmailAlreadyRegistered), errors.Is(err, domain.ErrEmailAlreadyExists):
		return http.StatusBadRequest, codeEmailAlreadyRegistered
	case errors.Is(err, domain.ErrCodeNotFound):
		return http.StatusBadRequest, codeCodeInvalidOrExpired
	case errors.Is(err, domain.ErrAlreadyActivated):
		return http.StatusBadRequest, codeEmailAlreadyActivated
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, codeInvalidCredentials
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrAdminUserNotFound):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, codeApplicationNotFound
	case errors.Is(err, domain.ErrEmailDelivery):
		return http.StatusServiceUnavailable, codeTryLater
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func logEvent(logger *zerolog.Logger, status int) *zerolog.Event {
	if status == http.StatusServiceUnavailable {
		return logger.Warn()
	}
	return logger.Info()
}
