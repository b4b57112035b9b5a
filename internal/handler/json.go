package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/lock"
)

// Codes let the client pick a recovery action without parsing messages.
const (
	CodeAlreadyAssigned = "already_assigned"
	CodeNotAssigned     = "not_assigned"
	CodeNoSession       = "no_session"
	CodeNotInWorkingSet = "not_in_working_set"
	CodeNotFound        = "not_found"
	CodeEditConflict    = "edit_conflict"
	CodeDuplicate       = "duplicate"
	CodeBusy            = "busy"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "requestID", requestIDFrom(r), "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.codedErrorResponse(w, r, "", msg, nil)
}

func (h *Handler) codedErrorResponse(w http.ResponseWriter, r *http.Request, code, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Code:    code,
		Data:    data,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "internal server error",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// engineError answers the recoverable engine failures with a code and falls back to a
// 500 for anything else.
func (h *Handler) engineError(w http.ResponseWriter, r *http.Request, err error) {
	var aae *domain.AlreadyAssignedError
	switch {
	case errors.As(err, &aae):
		h.codedErrorResponse(w, r, CodeAlreadyAssigned, err.Error(), map[string]any{
			"clientID":   aae.ClientID,
			"holderID":   aae.HolderID,
			"holderName": aae.HolderName,
		})
	case errors.Is(err, domain.ErrAlreadyAssigned):
		h.codedErrorResponse(w, r, CodeAlreadyAssigned, err.Error(), nil)
	case errors.Is(err, domain.ErrNotAssigned):
		h.codedErrorResponse(w, r, CodeNotAssigned, err.Error(), nil)
	case errors.Is(err, domain.ErrNoSession):
		h.codedErrorResponse(w, r, CodeNoSession, "select a shift for this date first", nil)
	case errors.Is(err, domain.ErrNotInWorkingSet):
		h.codedErrorResponse(w, r, CodeNotInWorkingSet, "client is not in the current shift's list, refresh and try again", nil)
	case errors.Is(err, domain.ErrRecordNotFound):
		h.codedErrorResponse(w, r, CodeNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrEditConflict):
		h.codedErrorResponse(w, r, CodeEditConflict, "record was modified concurrently, please retry", nil)
	case errors.Is(err, domain.ErrDuplicate):
		h.codedErrorResponse(w, r, CodeDuplicate, err.Error(), nil)
	case errors.Is(err, lock.ErrLockNotAcquired):
		h.codedErrorResponse(w, r, CodeBusy, "another update is in progress, please retry", nil)
	case errors.Is(err, domain.ErrInvalidShift),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidRecord):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}
