package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/aegis-triage/internal/handler/prometheus"
	"github.com/jwalitptl/aegis-triage/internal/middleware"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PatientHandler also serves reads under /patients/:id.
type PatientHandler interface {
	Handler
	RegisterPatientRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	limiter  *middleware.RateLimiter
	health   Handler
	triage   PatientHandler
	wellness PatientHandler
	cases    Handler
	metrics  *prometheus.Handler
	config   RouterConfig
}

type RouterConfig struct {
	ServiceName    string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodySize    int64
	CORSConfig     middleware.CORSConfig
	MetricsPath    string
	Tracing        bool
}

// Handlers groups the route owners mounted under /api/v1.
type Handlers struct {
	Health   Handler
	Triage   PatientHandler
	Wellness PatientHandler
	Cases    Handler
	Metrics  *prometheus.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	m *metrics.Metrics,
	logger zerolog.Logger,
	config RouterConfig,
) (*Router, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	validation := middleware.DefaultValidationConfig()
	if err := middleware.RegisterValidators(validation); err != nil {
		return nil, err
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultSizeLimitConfig().MaxBodySize
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}

	r := &Router{
		engine:   engine,
		auth:     auth,
		health:   handlers.Health,
		triage:   handlers.Triage,
		wellness: handlers.Wellness,
		cases:    handlers.Cases,
		metrics:  handlers.Metrics,
		config:   config,
	}
	if config.RateLimit > 0 {
		r.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)
	if config.Tracing {
		engine.Use(otelgin.Middleware(config.ServiceName))
	}
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodySize}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.ErrorHandler(logger),
		middleware.Validation(validation),
	)

	r.setup()
	return r, nil
}

func (r *Router) setup() {
	if r.metrics != nil {
		r.engine.GET(r.config.MetricsPath, r.metrics.Handler())
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.health != nil {
		r.health.RegisterRoutes(api)
	}

	// Patient-facing routes
	public := api.Group("")
	if r.limiter != nil {
		public.Use(r.limiter.RateLimit())
	}
	if r.triage != nil {
		r.triage.RegisterRoutes(public)
	}
	if r.wellness != nil {
		r.wellness.RegisterRoutes(public)
	}

	// Patient record reads, for the patient's own token or staff
	if r.auth != nil && (r.triage != nil || r.wellness != nil) {
		patient := api.Group("/patients/:id")
		if r.limiter != nil {
			patient.Use(r.limiter.RateLimit())
		}
		patient.Use(r.auth.AuthenticatePatient("id"))
		if r.triage != nil {
			r.triage.RegisterPatientRoutes(patient)
		}
		if r.wellness != nil {
			r.wellness.RegisterPatientRoutes(patient)
		}
	}

	// Hospital staff routes
	if r.cases != nil && r.auth != nil {
		staff := api.Group("")
		staff.Use(r.auth.Authenticate())
		r.cases.RegisterRoutes(staff)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
