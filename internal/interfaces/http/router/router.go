// Package router wires the mock API handlers into a gin engine and runs the
// HTTP server.
package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/interfaces/http/handlers"
	"github.com/turtacn/cyberrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// APIPrefix is the path every API route is mounted under.
const APIPrefix = "/api"

const shutdownTimeout = 30 * time.Second

// Router HTTP 路由器
type Router struct {
	engine          *gin.Engine
	config          config.MockAPIConfig
	logger          logger.Logger
	registry        *prometheus.Registry
	healthHandler   *handlers.HealthHandler
	authHandler     *handlers.AuthHandler
	scanHandler     *handlers.ScanHandler
	analysisHandler *handlers.AnalysisHandler
	adminHandler    *handlers.AdminHandler
	authMiddleware  gin.HandlerFunc
	server          *http.Server
}

// Option customizes a Router.
type Option func(*Router)

// WithRegistry serves and records metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(r *Router) { r.registry = reg }
}

// NewRouter 创建路由器
func NewRouter(cfg config.MockAPIConfig, log logger.Logger, backend *mockapi.Backend, tracer trace.Tracer, opts ...Option) (*Router, error) {
	// 设置 Gin 模式
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:          gin.New(),
		config:          cfg,
		logger:          log,
		healthHandler:   handlers.NewHealthHandler(backend, log),
		authHandler:     handlers.NewAuthHandler(backend, log),
		scanHandler:     handlers.NewScanHandler(backend, log),
		analysisHandler: handlers.NewAnalysisHandler(backend, log),
		adminHandler:    handlers.NewAdminHandler(backend, log),
		authMiddleware:  middleware.RequireJWT(backend, log),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}
	if tracer == nil {
		tracer = otel.Tracer("cyberrisk-mockapi")
	}

	metrics, err := middleware.NewServerMetrics(r.registry)
	if err != nil {
		return nil, err
	}
	r.setupRoutes(tracer, metrics)
	return r, nil
}

// setupRoutes 设置路由
func (r *Router) setupRoutes(tracer trace.Tracer, metrics *middleware.ServerMetrics) {
	// 全局中间件
	r.engine.Use(gin.Recovery())

	// CORS 配置
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", constants.HeaderAuthorization, constants.HeaderRequestID, "traceparent"},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}))
	r.engine.Use(middleware.RequestLogger(r.logger), middleware.ObservabilityMiddleware(tracer, metrics))

	// 健康检查路由（不需要认证）
	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	// Pprof 性能分析（仅在非生产环境）
	if r.config.PprofEnabled {
		pprof.Register(r.engine)
	}

	api := r.engine.Group(APIPrefix)
	{
		auth := api.Group("/auth")
		{
			throttle := middleware.LoginThrottle(r.config.LoginAttemptsPerMinute, r.logger)
			auth.POST("/login", throttle, r.authHandler.Login)
			auth.POST("/register", throttle, r.authHandler.Register)
			auth.GET("/health", r.authHandler.Health)
		}

		scan := api.Group("/scan", r.authMiddleware)
		{
			scan.POST("/perform", r.scanHandler.Perform)
			scan.GET("/history", r.scanHandler.History)
			scan.GET("/:id", r.scanHandler.Get)
		}

		analyze := api.Group("/analyze", r.authMiddleware)
		{
			analyze.GET("/risk-analysis", r.analysisHandler.RiskAnalysis)
			analyze.GET("/score-summary", r.analysisHandler.ScoreSummary)
		}

		report := api.Group("/report", r.authMiddleware)
		{
			report.GET("/my-reports", r.analysisHandler.MyReports)
			report.GET("/comprehensive", r.analysisHandler.Comprehensive)
			report.GET("/:user_id", r.analysisHandler.UserReports)
		}

		admin := api.Group("/admin", r.authMiddleware, middleware.RequireAdmin(r.logger))
		{
			admin.GET("/stats", r.adminHandler.Stats)
			admin.GET("/users", r.adminHandler.Users)
			admin.GET("/users/role/:role", r.adminHandler.UsersByRole)
			admin.GET("/health", r.healthHandler.SystemHealth)
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "The requested resource was not found"})
	})
}

// Start 启动 HTTP 服务器, blocking until ctx is cancelled or the listener fails.
func (r *Router) Start(ctx context.Context) error {
	r.server = &http.Server{
		Addr:              r.config.ListenAddr,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	r.logger.Info(ctx, "Starting HTTP server", logger.String("address", r.config.ListenAddr))

	errCh := make(chan error, 1)
	go func() {
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return r.gracefulShutdown()
	}
}

// gracefulShutdown 优雅关闭服务器
func (r *Router) gracefulShutdown() error {
	r.logger.Info(context.Background(), "Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.server.Shutdown(ctx); err != nil {
		r.logger.Error(ctx, "Server forced to shutdown", err)
		return err
	}

	r.logger.Info(ctx, "HTTP server stopped")
	return nil
}

// Engine exposes the handler for httptest servers.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

//Personal.AI order the ending
