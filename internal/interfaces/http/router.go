// Package http assembles the Gin engine and HTTP server of the API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aegisai/aegis/internal/config"
	"github.com/aegisai/aegis/internal/infrastructure/monitoring"
	"github.com/aegisai/aegis/internal/interfaces/http/handlers"
	"github.com/aegisai/aegis/internal/interfaces/http/middleware"
	"github.com/aegisai/aegis/pkg/logger"
)

// Router owns the Gin engine and the HTTP server lifecycle.
type Router struct {
	engine        *gin.Engine
	config        *config.Config
	logger        logger.Logger
	ingestHandler *handlers.IngestHandler
	healthHandler *handlers.HealthHandler
	tracing       *monitoring.TracingManager
	metrics       *monitoring.Metrics
	server        *http.Server
}

func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	ingestHandler *handlers.IngestHandler,
	healthHandler *handlers.HealthHandler,
	tracing *monitoring.TracingManager,
	metrics *monitoring.Metrics,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:        gin.New(),
		config:        cfg,
		logger:        log.WithComponent("http_router"),
		ingestHandler: ingestHandler,
		healthHandler: healthHandler,
		tracing:       tracing,
		metrics:       metrics,
	}
}

// SetupRoutes installs the middleware chain and the route table.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.AccessLog(r.logger))
	if r.tracing != nil {
		r.engine.Use(middleware.Observability(r.tracing, r.metrics))
	}

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID", "X-Tenant-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.engine.GET("/health/live", r.healthHandler.Liveness)
	r.engine.GET("/health/ready", r.healthHandler.Readiness)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(r.engine)

	v1 := r.engine.Group("/api/v1")
	{
		ingest := v1.Group("/ingest")
		ingest.Use(middleware.TenantAuth(r.logger))
		{
			ingest.POST("/ml", r.ingestHandler.IngestML)
			ingest.POST("/llm", r.ingestHandler.IngestLLM)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "the requested resource was not found",
		})
	})
}

// Start blocks serving HTTP until the listener fails or Stop is called.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting http server", logger.Fields{
		"address": addr,
	})
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "stopping http server")
	return r.server.Shutdown(ctx)
}

// Engine exposes the underlying Gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
