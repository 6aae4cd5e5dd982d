package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/acube-health/acube-api/internal/handler"
	authhandler "github.com/acube-health/acube-api/internal/handler/auth"
	bookinghandler "github.com/acube-health/acube-api/internal/handler/booking"
	communityhandler "github.com/acube-health/acube-api/internal/handler/community"
	intakehandler "github.com/acube-health/acube-api/internal/handler/intake"
	paymenthandler "github.com/acube-health/acube-api/internal/handler/payment"
	portalhandler "github.com/acube-health/acube-api/internal/handler/portal"
	"github.com/acube-health/acube-api/internal/middleware"
	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/pkg/logger"
)

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	communityH *communityhandler.Handler
	intakeH    *intakehandler.Handler
	bookingH   *bookinghandler.Handler
	paymentH   *paymenthandler.Handler
	authH      *authhandler.Handler
	portalH    *portalhandler.Handler
	h          *handler.Handler
	metrics    *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
	Timeout        time.Duration
	Logger         *logger.Logger
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	communityH *communityhandler.Handler,
	intakeH *intakehandler.Handler,
	bookingH *bookinghandler.Handler,
	paymentH *paymenthandler.Handler,
	authH *authhandler.Handler,
	portalH *portalhandler.Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:     engine,
		auth:       auth,
		communityH: communityH,
		intakeH:    intakeH,
		bookingH:   bookingH,
		paymentH:   paymentH,
		authH:      authH,
		portalH:    portalH,
		h:          h,
		metrics:    initRouterMetrics(config.MetricsPrefix),
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(config.Logger),
		r.metricsMiddleware(),
		middleware.Timeout(timeout),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)

	admin := api.Group("/admin")
	admin.Use(r.auth.Authenticate(), r.auth.RequireRole(model.RoleAdmin))
	r.setupAdminRoutes(admin)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler())
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.authH.RegisterRoutes(rg)
	r.intakeH.RegisterRoutes(rg)
	r.bookingH.RegisterRoutes(rg)

	// The feed and checkout are public, but likes and payments from
	// signed-in users attach to their account, so identity is resolved
	// when present.
	optional := rg.Group("")
	optional.Use(r.auth.OptionalAuthenticate())
	r.communityH.RegisterRoutes(optional)
	r.paymentH.RegisterRoutes(optional)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.authH.RegisterProtectedRoutes(rg)
	r.bookingH.RegisterProtectedRoutes(rg)
	r.paymentH.RegisterProtectedRoutes(rg)

	portal := rg.Group("")
	portal.Use(r.auth.RequireRole(model.RolePsychologist))
	r.portalH.RegisterRoutes(portal)
}

func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	r.communityH.RegisterAdminRoutes(rg)
	r.intakeH.RegisterAdminRoutes(rg)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
