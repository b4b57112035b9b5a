package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

const tokenCookieName = "__milk_delivery_token"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), RequestIDCtxKey, requestID))

		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration, "requestID", requestID)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // multi-line, unreadable through slog
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "not logged in")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		tokenString := cookie.Value
		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, "invalid token")
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) subject(r *http.Request) (int64, error) {
	subString, _ := r.Context().Value(SubCtxKey).(string)
	return strconv.ParseInt(subString, 10, 64)
}

func (h *Handler) role(r *http.Request) domain.Role {
	roleCtx, _ := r.Context().Value(RoleCtxKey).(string)
	return domain.Role(roleCtx)
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := h.subject(r)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		myInfo, err := h.store.GetUserByID(r.Context(), sub)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				h.errorResponse(w, r, "user does not exist")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, h.role(r)) {
				h.errorResponse(w, r, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) staffInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staffID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.errorResponse(w, r, "invalid staff id")
			return
		}

		st, err := h.store.GetStaffByID(r.Context(), staffID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				h.errorResponse(w, r, "staff member does not exist")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), StaffInfoCtx, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownStaffOnly lets admins through and limits staff logins to their own profile.
func (h *Handler) ownStaffOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.role(r) == domain.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}

		sub, err := h.subject(r)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		st := r.Context().Value(StaffInfoCtx).(*domain.Staff)
		if st.UserID == nil || *st.UserID != sub {
			h.errorResponse(w, r, "permission denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) clientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.errorResponse(w, r, "invalid client id")
			return
		}

		c, err := h.store.GetClientByID(r.Context(), clientID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				h.errorResponse(w, r, "client does not exist")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ClientInfoCtx, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientVisible lets admins through and limits staff logins to clients they currently
// hold. Runs after clientInfo.
func (h *Handler) clientVisible(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.role(r) == domain.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}

		sub, err := h.subject(r)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		st, err := h.store.GetStaffByUserID(r.Context(), sub)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				h.errorResponse(w, r, "permission denied")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		c := r.Context().Value(ClientInfoCtx).(*domain.Client)
		a, err := h.store.FindAssignment(r.Context(), c.ID)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			h.internalServerError(w, r, err)
			return
		}
		if a == nil || a.StaffID != st.ID {
			h.errorResponse(w, r, "permission denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}
