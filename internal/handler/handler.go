package handler

import (
	"context"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	id_translations "github.com/go-playground/validator/v10/translations/id"
	"github.com/hdclinic/bed-scheduler/backend/internal/config"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
	"github.com/redis/go-redis/v9"
)

// Store is everything the HTTP layer reads and writes. *repository.Repository
// implements it.
type Store interface {
	scheduler.Store

	Ping(ctx context.Context) error

	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error

	GetAllPatients(ctx context.Context) ([]*domain.Patient, error)
	GetPatientsCreatedBetween(ctx context.Context, from, to civil.Date) ([]*domain.Patient, error)
	GetPatientByID(ctx context.Context, id int64) (*domain.Patient, error)
	CreatePatient(ctx context.Context, p *domain.Patient) error
	UpdatePatient(ctx context.Context, p *domain.Patient) error
	DeletePatient(ctx context.Context, id int64) error

	ListSlotsInRange(ctx context.Context, from, to *civil.Date) ([]*domain.ScheduleSlot, error)
	ListSlotsByPatient(ctx context.Context, patientID int64) ([]*domain.ScheduleSlot, error)
	GetSlotByID(ctx context.Context, id int64) (*domain.ScheduleSlot, error)
	CreateSlot(ctx context.Context, s *domain.ScheduleSlot) error
	UpdateSlot(ctx context.Context, s *domain.ScheduleSlot) error
	DeleteSlot(ctx context.Context, id int64) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Store
	engine      *scheduler.Engine
	translator  ut.Translator
	mailer      MailPublisher
	redisClient *redis.Client
	logger      *slog.Logger

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, engine *scheduler.Engine, mailer MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	idLocale := id.New()
	uni := ut.New(idLocale, idLocale)
	trans, _ := uni.GetTranslator("id")
	if err := id_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerCustomValidations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		engine:      engine,
		translator:  trans,
		mailer:      mailer,
		redisClient: rdb,
		logger:      slog.Default(),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/health", h.Health)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// everything below needs a session
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)
		r.Use(h.preventInactiveUser)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
				r.Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/patients", func(r chi.Router) {
			r.Post("/", h.CreatePatient)
			r.Get("/", h.GetAllPatients)
			r.Get("/export/csv", h.ExportPatientsCSV)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.patient)
				r.Get("/", h.GetPatient)
				r.Put("/", h.UpdatePatient)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeletePatient)
				r.Get("/schedules", h.GetPatientSchedules)
			})
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.GetSchedules)
			r.Post("/", h.CreateSchedule)
			r.Get("/grid", h.GetScheduleGrid)
			r.Get("/export/csv", h.ExportSchedulesCSV)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/auto-generate", h.AutoGenerateSchedules)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/clear", h.ClearSchedules)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scheduleSlot)
				r.Get("/", h.GetSchedule)
				r.Put("/", h.UpdateSchedule)
				r.Delete("/", h.DeleteSchedule)
				r.Patch("/status", h.UpdateScheduleStatus)
			})
		})

		r.Get("/beds/status", h.GetBedStatus)
	})
}
