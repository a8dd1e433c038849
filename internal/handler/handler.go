package handler

import (
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/events"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/repository"
	"golang.org/x/time/rate"
)

// MailPublisher 把邮件交给邮件服务发送，由 events.MailQueue 实现
type MailPublisher interface {
	PublishMail(msg domain.MailMessage) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	store       catalog.Store
	translator  ut.Translator
	mailer      MailPublisher
	redisClient *redis.Client
	publisher   *events.Publisher
	limiter     *rate.Limiter

	// 当前使用的目录快照，重新加载时整体替换
	current atomic.Pointer[snapshot]
	// 同一时间只允许一次重新加载，保证后读到的数据后写入
	reloadMu sync.Mutex
	// 目录事件监听中断时为 true，此时快照可能已经过期
	eventsDown atomic.Bool

	// 用于识别自己发出的目录事件
	InstanceID string

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailer MailPublisher, rdb *redis.Client, publisher *events.Publisher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	h := &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailer:      mailer,
		redisClient: rdb,
		publisher:   publisher,
		limiter:     rate.NewLimiter(rate.Limit(cfg.Optimizer.RateLimit), cfg.Optimizer.RateBurst),
		InstanceID:  uuid.NewString(),

		Mux: chi.NewRouter(),
	}
	if repo != nil {
		h.store = repo
	}

	return h, nil
}

func (h *Handler) RegisterRoutes() {
	metrics.RegisterDefault()

	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Method("GET", "/metrics", metrics.Handler())

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(h.auth).Get("/me", h.GetMyInfo)
	})

	h.Mux.Route("/regions", func(r chi.Router) {
		r.Get("/", h.GetAllRegions)
		r.With(h.auth, h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleEditor})).Post("/", h.CreateRegion)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.region)
			r.Get("/", h.GetRegion)
			r.Get("/tours", h.GetRegionTours)
			r.Route("/package", func(r chi.Router) {
				// 搜索的开销随线路数量指数增长，需要限流
				r.Use(h.rateLimit)
				r.Post("/", h.GeneratePackage)
				r.Post("/share", h.SharePackage)
			})
		})
	})

	h.Mux.Route("/tours", func(r chi.Router) {
		r.With(h.auth, h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleEditor})).Post("/", h.CreateTour)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.tour)
			r.Get("/", h.GetTour)
			r.Group(func(r chi.Router) {
				r.Use(h.auth)
				r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleEditor}))
				r.Delete("/", h.DeleteTour)
				r.Post("/attractions", h.LinkTourAttraction)
				r.Delete("/attractions/{attractionID}", h.UnlinkTourAttraction)
			})
		})
	})

	h.Mux.Route("/attractions", func(r chi.Router) {
		r.With(h.auth, h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleEditor})).Post("/", h.CreateAttraction)
		r.With(h.attraction).Get("/{id}", h.GetAttraction)
	})

	// 只有管理员可以手动触发重新加载
	h.Mux.With(h.auth, h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/catalog/reload", h.ReloadCatalogHandler)
}
