package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/gaushala-dev/milk-delivery/backend/internal/assignment"
	"github.com/gaushala-dev/milk-delivery/backend/internal/config"
	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/ledger"
	"github.com/gaushala-dev/milk-delivery/backend/internal/lock"
	"github.com/gaushala-dev/milk-delivery/backend/internal/metrics"
	"github.com/gaushala-dev/milk-delivery/backend/internal/session"
)

// Store is everything the HTTP layer reads or writes. *repository.Repository and
// *memstore.Store both satisfy it.
type Store interface {
	assignment.Store
	session.Store
	ledger.Store

	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error

	CreateClient(ctx context.Context, client *domain.Client) error
	GetAllClients(ctx context.Context) ([]*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) error
	DeleteClient(ctx context.Context, id int64) error

	CreateStaffAccount(ctx context.Context, user *domain.User, st *domain.Staff) error
	GetStaffByUserID(ctx context.Context, userID int64) (*domain.Staff, error)
	GetAllStaff(ctx context.Context) ([]*domain.Staff, error)
	UpdateStaff(ctx context.Context, st *domain.Staff) error
	DeleteStaff(ctx context.Context, id int64) error

	GetAllAssignments(ctx context.Context) ([]*domain.Assignment, error)
	ListDeliveryRecordsByDate(ctx context.Context, date domain.Date) ([]*domain.DeliveryRecord, error)
	ListDeliveryRecordsBetween(ctx context.Context, start, end domain.Date) ([]*domain.DeliveryRecord, error)
	GetClientHistory(ctx context.Context, clientID int64) ([]domain.HistoryEvent, error)
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      Store
	translator ut.Translator
	mail       MailPublisher
	metrics    *metrics.Recorder
	location   *time.Location

	index    *assignment.Index
	sessions *session.Manager
	ledger   *ledger.Ledger

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store Store, locker lock.Locker, mail MailPublisher, rec *metrics.Recorder) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	index := assignment.NewIndex(store, locker)
	sessions := session.NewManager(store, locker)

	return &Handler{
		validate:   validate,
		config:     cfg,
		store:      store,
		translator: trans,
		mail:       mail,
		metrics:    rec,
		location:   loc,

		index:    index,
		sessions: sessions,
		ledger:   ledger.New(store, index, sessions, locker),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) today() domain.Date {
	return domain.Today(h.location)
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.metrics.Middleware)

	h.Mux.Handle("/metrics", h.metrics.Handler())

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// everything below requires a login
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/clients", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateClient)
			r.Get("/", h.GetAllClients)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.clientInfo)
				r.Get("/", h.GetClient)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateClient)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteClient)
				r.With(h.clientVisible).Get("/history", h.GetClientHistory)
				r.With(h.clientVisible).Get("/bill", h.GetBill)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/bill/send", h.SendBill)
			})
		})

		r.Route("/staff", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateStaff)
			r.Get("/", h.GetAllStaff)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.staffInfo)
				r.Get("/", h.GetStaff)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateStaff)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteStaff)

				// a staff member may only work their own sheet
				r.Group(func(r chi.Router) {
					r.Use(h.ownStaffOnly)
					r.Get("/clients", h.GetStaffClients)
					r.Get("/sessions/{date}", h.GetSession)
					r.Put("/sessions/{date}", h.SelectShift)
					r.Get("/deliveries/{date}", h.GetWorkingSet)
					r.Post("/deliveries/{date}/{clientID}/delivered", h.MarkDelivered)
					r.Post("/deliveries/{date}/{clientID}/not-delivered", h.MarkNotDelivered)
				})
			})
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/", h.GetAllAssignments)
			r.Post("/", h.Assign)
			r.Delete("/", h.Unassign)
		})

		r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/dashboard", h.GetDashboard)
	})
}
