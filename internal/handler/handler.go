package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/jtomassoni/scheduler-sub001/internal/config"
	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/jtomassoni/scheduler-sub001/internal/engine"
	"github.com/jtomassoni/scheduler-sub001/internal/repository"
	"github.com/jtomassoni/scheduler-sub001/internal/workflow"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate       *validator.Validate
	config         *config.Config
	repository     *repository.Repository
	translator     ut.Translator
	eventChannel   *amqp.Channel
	redisClient    *redis.Client
	autoFiller     *engine.AutoFiller
	approverPolicy workflow.ApproverPolicy

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, eventCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:       validate,
		config:         cfg,
		repository:     repo,
		translator:     trans,
		eventChannel:   eventCh,
		redisClient:    rdb,
		autoFiller:     engine.NewAutoFiller(repo, engine.DefaultRankPolicy()),
		approverPolicy: workflow.DefaultApproverPolicy(),

		Mux: chi.NewRouter(),
	}, nil
}

var managerRoles = []domain.Role{domain.RoleManager, domain.RoleGeneralManager, domain.RoleSuperAdmin}
var adminRoles = []domain.Role{domain.RoleGeneralManager, domain.RoleSuperAdmin}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/availability/{year}/{month}", func(r chi.Router) {
				r.Use(h.preventInactiveStaff)
				r.Put("/", h.SubmitMyAvailability)
				r.Get("/", h.GetMyAvailability)
				r.Post("/lock", h.LockMyAvailability)
			})
		})

		r.Route("/staff-members", func(r chi.Router) {
			r.With(h.RequiredRole(managerRoles)).Post("/", h.CreateStaffMember)
			r.Get("/", h.GetAllStaffMembers) // 员工之间的基本信息互相可见
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.staffInfo)
				r.Get("/", h.GetStaffMember)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(managerRoles)).Patch("/", h.UpdateStaffMember)
				r.With(h.RequiredRole(managerRoles)).Patch("/password", h.UpdateStaffPassword)
			})
		})

		r.Route("/venues", func(r chi.Router) {
			r.With(h.RequiredRole(adminRoles)).Post("/", h.CreateVenue)
			r.Get("/", h.GetAllVenues)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.venueInfo)
				r.Get("/", h.GetVenue)
				r.With(h.RequiredRole(adminRoles)).Patch("/", h.UpdateVenue)
				r.With(h.RequiredRole(adminRoles)).Delete("/", h.DeleteVenue)
				r.Get("/shifts", h.GetVenueShifts)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.RequiredRole(managerRoles)).Post("/", h.CreateShift)
			r.With(h.RequiredRole(managerRoles)).Post("/auto-schedule", h.AutoScheduleRange)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftInfo)
				r.Get("/", h.GetShift)
				r.With(h.RequiredRole(managerRoles)).Delete("/", h.DeleteShift)
				r.With(h.RequiredRole(managerRoles)).Post("/autofill", h.AutoFillShift)
				r.With(h.RequiredRole(managerRoles)).Post("/tips", h.PublishShiftTips)
				r.Route("/overrides", func(r chi.Router) {
					r.Post("/", h.CreateOverride)
					r.Get("/", h.GetShiftOverrides)
				})
				r.Post("/trades", h.ProposeTrade)
			})
		})

		r.Route("/overrides/{id}", func(r chi.Router) {
			r.Use(h.overrideInfo)
			r.Get("/", h.GetOverride)
			r.Post("/decision", h.DecideOverride)
		})

		r.Route("/trades/{id}", func(r chi.Router) {
			r.Use(h.tradeInfo)
			r.Get("/", h.GetTrade)
			r.Post("/accept", h.AcceptTrade)
			r.Post("/decline", h.DeclineTrade)
			r.Post("/cancel", h.CancelTrade)
			r.With(h.RequiredRole(managerRoles)).Post("/approve", h.ApproveTrade)
		})
	})
}
