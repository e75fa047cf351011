package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
)

// Handler is a resource that mounts its routes behind the auth middleware.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

// PublicHandler mounts routes that need no authentication.
type PublicHandler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// LoginHandler mounts /auth and takes the guard placed in front of login.
type LoginHandler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware, ...gin.HandlerFunc)
}

type Router struct {
	engine      *gin.Engine
	auth        *middleware.AuthMiddleware
	authH       LoginHandler
	healthH     PublicHandler
	handlers    []Handler
	loginLimit  *middleware.RateLimiter
	metrics     *routerMetrics
	validation  middleware.ValidationConfig
	timeout     middleware.TimeoutConfig
	cors        middleware.CORSConfig
	security    middleware.SecurityConfig
	bodyLimit   middleware.SizeLimitConfig
	requestLogs bool
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	Mode          string
	LoginLimit    middleware.RateLimiterConfig
	CORSConfig    middleware.CORSConfig
	Timeout       time.Duration
	MaxBodySize   int64
	MetricsPrefix string
	// Registerer receives the HTTP metrics; nil disables them.
	Registerer prometheus.Registerer
	// RequestLogs turns on the per-request access log.
	RequestLogs bool
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH LoginHandler,
	healthH PublicHandler,
	handlers []Handler,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	bodyLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodySize > 0 {
		bodyLimit.MaxBodySize = config.MaxBodySize
	}

	r := &Router{
		engine:      gin.New(),
		auth:        auth,
		authH:       authH,
		healthH:     healthH,
		handlers:    handlers,
		loginLimit:  middleware.NewRateLimiter(config.LoginLimit),
		metrics:     initRouterMetrics(config.MetricsPrefix, config.Registerer),
		validation:  middleware.DefaultValidationConfig(),
		timeout:     middleware.TimeoutConfig{Duration: config.Timeout},
		cors:        config.CORSConfig,
		security:    middleware.DefaultSecurityConfig(),
		bodyLimit:   bodyLimit,
		requestLogs: config.RequestLogs,
	}
	r.Setup()
	return r
}

func (r *Router) Setup() {
	core := []gin.HandlerFunc{
		middleware.RequestID(),
		middleware.Recovery(),
	}
	if r.requestLogs {
		core = append(core, middleware.Logger())
	}
	core = append(core,
		r.metricsMiddleware(),
		middleware.CORS(r.cors),
		middleware.SecurityHeaders(r.security),
		middleware.ErrorHandler(),
		middleware.Validation(r.validation),
		middleware.Timeout(r.timeout),
	)
	r.engine.Use(core...)
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Status: handler.StatusError, Code: http.StatusNotFound, Message: "route not found"})
	})

	api := r.engine.Group("/api/v1")

	// Health check endpoints
	r.healthH.RegisterRoutes(api)

	api.Use(middleware.NoStore(), middleware.SizeLimit(r.bodyLimit))
	r.authH.RegisterRoutes(api, r.auth, r.loginLimit.RateLimit())
	for _, h := range r.handlers {
		h.RegisterRoutes(api, r.auth)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Metrics initialization and middleware
func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	if reg == nil {
		return nil
	}
	if prefix == "" {
		prefix = "hms_http"
	}
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
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
		if r.metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case code >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case code >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
