package handler

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/utils"
)

// CreateStaff creates the staff profile together with a staff login. The generated
// password is only ever sent by mail.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required,alphanum"`
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.Name,
		Email:        req.Email,
		Role:         domain.RoleStaff,
	}
	st, err := domain.NewStaff(req.Name)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	st.Phone = req.Phone
	st.Location = req.Location

	if err := h.store.CreateStaffAccount(r.Context(), user, st); err != nil {
		h.engineError(w, r, err)
		return
	}

	if err := h.mail.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeNewAccount,
		To:   user.Email,
		Data: domain.NewAccountMailData{
			FullName: user.FullName,
			Username: user.Username,
			Password: password,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "staff member created, login details sent by mail", st)
}

func (h *Handler) GetAllStaff(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.GetAllStaff(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "staff loaded", all)
}

func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)
	h.successResponse(w, r, "staff member loaded", st)
}

func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)

	var req struct {
		Name        *string `json:"name" validate:"omitempty,min=1"`
		Phone       *string `json:"phone"`
		Location    *string `json:"location"`
		IsAvailable *bool   `json:"isAvailable"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Phone != nil {
		st.Phone = *req.Phone
	}
	if req.Location != nil {
		st.Location = *req.Location
	}
	if req.IsAvailable != nil {
		st.IsAvailable = *req.IsAvailable
	}

	if err := h.store.UpdateStaff(r.Context(), st); err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "staff member updated", st)
}

// DeleteStaff removes the profile and its login. Clients held by the staff member
// become unassigned.
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)

	if err := h.store.DeleteStaff(r.Context(), st.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if st.UserID != nil {
		if err := h.store.DeleteUser(r.Context(), *st.UserID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "staff member deleted", nil)
}

// GetStaffClients lists every client assigned to the staff member, or only those of
// one shift with ?shift=AM|PM.
func (h *Handler) GetStaffClients(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)

	shift, err := utils.ParseOptionalShift(r.URL.Query().Get("shift"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var clients []*domain.Client
	if shift == "" {
		clients, err = h.index.ListByStaff(r.Context(), st.ID)
	} else {
		clients, err = h.index.ListByStaffAndShift(r.Context(), st.ID, shift)
	}
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "clients loaded", clients)
}
