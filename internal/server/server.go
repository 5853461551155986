package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tenantry/internal/config"
	"github.com/smallbiznis/tenantry/internal/membership"
	"github.com/smallbiznis/tenantry/internal/membership/domain"
	"github.com/smallbiznis/tenantry/internal/observability"
	obsmiddleware "github.com/smallbiznis/tenantry/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/tenantry/internal/observability/metrics"
	obstracing "github.com/smallbiznis/tenantry/internal/observability/tracing"
	"github.com/smallbiznis/tenantry/internal/providers/email"
	"github.com/smallbiznis/tenantry/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	email.Module,
	membership.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", httpMetrics.Handler())

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	membershipSvc domain.Service
	acceptLimiter *ratelimit.InviteAcceptLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	MembershipSvc domain.Service
	AcceptLimiter *ratelimit.InviteAcceptLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		membershipSvc: p.MembershipSvc,
		acceptLimiter: p.AcceptLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Organizations --------
	api.POST("/organizations", s.CreateOrganization)
	api.DELETE("/organizations/:id", s.DeleteOrganization)

	// -------- Members --------
	api.GET("/organizations/:id/members", s.ListOrganizationMembers)
	api.POST("/organizations/:id/members", s.AddOrganizationMember)
	api.DELETE("/organizations/:id/members/:user_id", s.LeaveOrganization)

	// -------- Roles --------
	api.POST("/organizations/:id/members/:user_id/roles", s.AssignMemberRole)
	api.DELETE("/organizations/:id/members/:user_id/roles", s.DeleteMemberRole)

	// -------- Invitations --------
	api.POST("/organizations/:id/invites", s.InviteOrganizationMember)
	api.DELETE("/organizations/:id/invites", s.RevokeInvitation)
	api.POST("/invites/accept", s.AcceptInvitation)
}
