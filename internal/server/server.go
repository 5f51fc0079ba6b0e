package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	actiondomain "github.com/clubworks/prestige/internal/action/domain"
	awarddomain "github.com/clubworks/prestige/internal/award/domain"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/clubworks/prestige/internal/config"
	"github.com/clubworks/prestige/internal/hub"
	ledgerdomain "github.com/clubworks/prestige/internal/ledger/domain"
	mcdomain "github.com/clubworks/prestige/internal/membershipclass/domain"
	obsmiddleware "github.com/clubworks/prestige/internal/observability/logger"
	obsmetrics "github.com/clubworks/prestige/internal/observability/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Log:             log.Named("http"),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	hub         hub.Provider
	awardSvc    awarddomain.Service
	categorySvc categorydomain.Service
	ledgerSvc   ledgerdomain.Service
	classSvc    mcdomain.Service
	actionSvc   actiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Hub         hub.Provider
	AwardSvc    awarddomain.Service
	CategorySvc categorydomain.Service
	LedgerSvc   ledgerdomain.Service
	ClassSvc    mcdomain.Service
	ActionSvc   actiondomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		hub:         p.Hub,
		awardSvc:    p.AwardSvc,
		categorySvc: p.CategorySvc,
		ledgerSvc:   p.LedgerSvc,
		classSvc:    p.ClassSvc,
		actionSvc:   p.ActionSvc,
	}

	svc.registerAwardRoutes()
	svc.registerVIPRoutes()
	svc.registerCategoryRoutes()
	svc.registerMembershipClassRoutes()
	svc.registerMemberRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAwardRoutes() {
	awards := s.engine.Group("/awards", s.AuthRequired())

	awards.GET("", s.ListAwards)
	awards.POST("", s.CreateAward)
	awards.GET("/:id", s.GetAward)
	awards.GET("/:id/actions", s.ListAwardActions)
	awards.PUT("/:id", s.UpdateAward)
	awards.DELETE("/:id", s.RemoveAward)
}

func (s *Server) registerVIPRoutes() {
	vip := s.engine.Group("/vip", s.AuthRequired())

	vip.GET("", s.ListVIPAwards)
	vip.POST("", s.CreateVIPAward)
	vip.GET("/:id", s.GetAward)
	vip.GET("/:id/actions", s.ListAwardActions)
	vip.PUT("/:id", s.UpdateVIPAward)
	vip.DELETE("/:id", s.RemoveAward)
}

func (s *Server) registerCategoryRoutes() {
	categories := s.engine.Group("/categories", s.AuthRequired())

	categories.GET("", s.ListCategories)
}

func (s *Server) registerMembershipClassRoutes() {
	mc := s.engine.Group("/membership-class", s.AuthRequired())

	mc.GET("", s.ListClasses)
	mc.GET("/levels", s.GetLevels)
	mc.GET("/:id", s.GetClass)
	mc.GET("/:id/actions", s.ListClassActions)
	mc.POST("", s.CreateClass)
	mc.PUT("/:id", s.ApproveClass)
	mc.DELETE("/:id", s.RemoveClass)
}

func (s *Server) registerMemberRoutes() {
	members := s.engine.Group("/members", s.AuthRequired())

	members.GET("/:user", s.GetMemberInfo)
	members.GET("/:user/awards", s.ListMemberAwards)
	members.GET("/:user/prestige", s.ListMemberPrestige)
	members.GET("/:user/vip", s.ListMemberVIP)
}
