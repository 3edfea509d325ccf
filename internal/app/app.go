// Package app is the composition root: it wires persistence, services and
// transport into one runnable API.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"workhours/internal/config"
	"workhours/internal/database"
	"workhours/internal/handler"
	"workhours/internal/metrics"
	"workhours/internal/middleware"
	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/service"
	"workhours/internal/store"
	"workhours/internal/websocket"

	_ "workhours/api/swagger" // swagger docs

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	now     func() time.Time
	db      *gorm.DB
	redis   *redis.Client
	store   *store.Store
	hub     *websocket.Hub
	metrics *metrics.Metrics
	auth    *middleware.Auth

	History     service.HistoryService
	Employees   service.EmployeeService
	Schools     service.SchoolService
	WorkEntries service.WorkEntryService
	Positions   service.PositionService
	Roles       service.RoleService
	Sessions    service.SessionService
	Aggregation service.AggregationService
	Reports     service.ReportService
}

// New connects persistence, loads the store and seeds the administrator role
// and, when no active administrator exists, a first administrator account.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	weekStart, err := cfg.WeekStartDay()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, now: time.Now}

	a.db, err = database.NewConnection(cfg.DBDriver, cfg.DatabaseURL, cfg.SQLitePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slot, err := a.sessionSlot(ctx)
	if err != nil {
		return nil, err
	}

	a.store = store.New(database.Tables(a.db))
	if err := a.store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	log.Info().
		Int("employees", a.store.Employees.Len()).
		Int("schools", a.store.Schools.Len()).
		Int("work_entries", a.store.WorkEntries.Len()).
		Msg("store loaded")

	a.hub = websocket.NewHub(log)
	go a.hub.Run()
	a.metrics = metrics.New()

	txManager := database.TransactionManager(a.db)
	a.History = service.NewHistoryService(a.store, a.hub, a.metrics, a.now, log)
	a.Sessions = service.NewSessionService(a.store, slot, service.SessionConfig{
		Secret:     []byte(cfg.JWTSecret),
		Expiration: cfg.JWTExpiration(),
	}, log)
	a.Roles = service.NewRoleService(a.store, a.History, txManager, log)
	a.Employees = service.NewEmployeeService(a.store, a.History, a.Sessions, txManager, log)
	a.Schools = service.NewSchoolService(a.store, a.History, txManager, log)
	a.WorkEntries = service.NewWorkEntryService(a.store, a.History, txManager, a.now, log)
	a.Positions = service.NewPositionService(a.store, a.History, txManager, log)
	a.Aggregation = service.NewAggregationService(a.store, a.now, weekStart)
	a.Reports = service.NewReportService(a.Aggregation, a.Schools, log)

	a.auth = middleware.NewAuth(a.Sessions, a.Roles, cfg.IsProduction(), int(cfg.JWTExpiration().Seconds()))

	if err := a.seed(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// sessionSlot returns a Redis slot when REDIS_URL is set, an in-process one otherwise
func (a *App) sessionSlot(ctx context.Context) (repository.SessionSlot, error) {
	if a.cfg.RedisURL == "" {
		a.log.Info().Msg("REDIS_URL not set, sessions kept in memory")
		return repository.NewMemorySlot(), nil
	}

	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	a.redis = redis.NewClient(opts)
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return repository.NewRedisSlot(a.redis, a.cfg.JWTExpiration()), nil
}

func (a *App) seed(ctx context.Context) error {
	if _, err := a.Roles.SeedAdministratorRole(ctx); err != nil {
		return err
	}

	admins := a.Employees.ListEmployees(ctx, service.EmployeeFilter{ActiveOnly: true, Role: model.RoleAdministrator})
	if len(admins) > 0 || a.cfg.SeedAdminUsername == "" {
		return nil
	}
	taken := a.Employees.ListEmployees(ctx, service.EmployeeFilter{})
	if i := slices.IndexFunc(taken, func(e model.Employee) bool { return e.Username == a.cfg.SeedAdminUsername }); i >= 0 {
		a.log.Warn().
			Str("username", a.cfg.SeedAdminUsername).
			Str("employee_id", taken[i].ID).
			Msg("no active administrator found and the seed username is taken, skipping seed")
		return nil
	}

	emp, err := a.Employees.CreateEmployee(ctx, service.CreateEmployeeRequest{
		Name:     model.RoleAdministrator,
		Username: a.cfg.SeedAdminUsername,
		Password: a.cfg.SeedAdminPassword,
		Role:     model.RoleAdministrator,
	})
	if err != nil {
		return fmt.Errorf("failed to seed administrator: %w", err)
	}
	a.log.Warn().Str("username", emp.Username).Msg("no active administrator found, seeded one; change its password")
	return nil
}

// Router builds the HTTP API
func (a *App) Router() *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery(a.log), middleware.Logger(a.log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = a.cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	router.GET("/health", a.health)

	// WebSocket feed of history entries
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(a.hub, c, func(c *gin.Context, token string) error {
			_, err := a.auth.Restore(c, token)
			return err
		})
	})

	api := router.Group("")
	handler.NewAuthHandler(a.Sessions, a.Roles, a.auth).RegisterRoutes(api)
	handler.NewEmployeeHandler(a.Employees, a.auth).RegisterRoutes(api)
	handler.NewSchoolHandler(a.Schools, a.auth).RegisterRoutes(api)
	handler.NewWorkEntryHandler(a.WorkEntries, a.auth).RegisterRoutes(api)
	handler.NewPositionHandler(a.Positions, a.auth).RegisterRoutes(api)
	handler.NewRoleHandler(a.Roles, a.auth).RegisterRoutes(api)
	handler.NewHistoryHandler(a.History, a.auth).RegisterRoutes(api)
	handler.NewHoursHandler(a.Aggregation, a.Reports, a.auth, a.now).RegisterRoutes(api)

	return router
}

func (a *App) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "OK", "websocket_clients": a.hub.ClientCount()}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "DEGRADED"
			body["database"] = "unreachable"
		}
	}
	if a.redis != nil && a.redis.Ping(c.Request.Context()).Err() != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "DEGRADED"
		body["redis"] = "unreachable"
	}
	c.JSON(status, body)
}

// Close disconnects websocket clients and releases connections
func (a *App) Close() error {
	a.hub.Close()

	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
