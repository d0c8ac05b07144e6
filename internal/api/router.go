package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/app"
	iauth "github.com/silverlynx18/sock/internal/auth"
	"github.com/silverlynx18/sock/internal/handlers"
	"github.com/silverlynx18/sock/internal/middleware"
	"github.com/silverlynx18/sock/internal/permissions"
	"github.com/silverlynx18/sock/internal/realtime"
	"github.com/silverlynx18/sock/internal/services"
)

// Services bundles the constructed service layer for route registration.
type Services struct {
	Users         *services.UserService
	Groups        *services.GroupService
	Invites       *services.InviteService
	Statuses      *services.StatusService
	Notifications *services.NotificationService
	Audit         *services.AuditService
}

// BuildServices constructs the full service stack from a database handle.
func BuildServices(db *gorm.DB, checker *permissions.Checker, hub *realtime.Hub, cfg *app.Config) (*Services, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}

	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}

	groups, err := services.NewGroupService(db, checker, audit)
	if err != nil {
		return nil, err
	}

	notifications, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}

	inviteOpts := []services.InviteOption{}
	if cfg != nil {
		if cfg.Invites.Expiry > 0 {
			inviteOpts = append(inviteOpts, services.WithInviteExpiry(cfg.Invites.Expiry))
		}
		if cfg.Invites.TokenLength > 0 {
			inviteOpts = append(inviteOpts, services.WithInviteTokenSize(cfg.Invites.TokenLength))
		}
		if cfg.Invites.AcceptURL != "" {
			inviteOpts = append(inviteOpts, services.WithInviteAcceptURL(cfg.Invites.AcceptURL))
		}
	}
	invites, err := services.NewInviteService(db, checker, groups, users, notifications, audit, inviteOpts...)
	if err != nil {
		return nil, err
	}

	statuses, err := services.NewStatusService(db, checker, hub)
	if err != nil {
		return nil, err
	}

	return &Services{
		Users:         users,
		Groups:        groups,
		Invites:       invites,
		Statuses:      statuses,
		Notifications: notifications,
		Audit:         audit,
	}, nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}

	svcs, err := BuildServices(db, checker, hub, cfg)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler, err := handlers.NewAuthHandler(svcs.Users, jwt)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	if err := registerGroupRoutes(api, svcs, checker); err != nil {
		return nil, err
	}
	if err := registerInviteRoutes(api, svcs, checker); err != nil {
		return nil, err
	}
	if err := registerStatusRoutes(api, svcs); err != nil {
		return nil, err
	}
	if cfg.Features.Notifications.Enabled {
		if err := registerNotificationRoutes(api, svcs); err != nil {
			return nil, err
		}
	}

	if cfg.Features.Realtime.Enabled && hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(hub, jwt, realtime.KnownStreams()...)
		r.GET("/api/ws", realtimeHandler.Stream)
	}

	return r, nil
}
