package handler

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

// GetMyInfo returns the login user and, for staff logins, the linked staff profile so
// the mobile app knows which staff id to work under.
func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	resp := struct {
		*domain.User
		Staff *domain.Staff `json:"staff,omitempty"`
	}{User: myInfo}

	st, err := h.store.GetStaffByUserID(r.Context(), myInfo.ID)
	switch {
	case err == nil:
		resp.Staff = st
	case !errors.Is(err, domain.ErrRecordNotFound):
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "profile loaded", resp)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "old password is wrong")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo.PasswordHash = string(hashedPassword)

	if err := h.store.UpdateUser(r.Context(), myInfo); err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "password updated", nil)
}
