package api

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/service"
	"storefront/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries the HTTP-facing settings of the API
type Options struct {
	CookieName     string
	CookieSecure   bool
	CookieDomain   string
	SessionTTL     time.Duration
	AllowedOrigins []string
	LoginPerMinute int
	OrderPerMinute int
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	auth    *service.AuthService
	opts    Options
	checks  map[string]ReadinessCheck

	loginLimiter *RateLimiter
	orderLimiter *RateLimiter
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog *service.CatalogService, orders *service.OrderService, auth *service.AuthService, opts Options) *Handler {
	validate.Register()
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	return &Handler{
		catalog:      catalog,
		orders:       orders,
		auth:         auth,
		opts:         opts,
		checks:       make(map[string]ReadinessCheck),
		loginLimiter: NewRateLimiter(opts.LoginPerMinute),
		orderLimiter: NewRateLimiter(opts.OrderPerMinute),
	}
}

// AddReadinessCheck registers a dependency probed by /ready
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(prometheusMiddleware())
	router.Use(securityHeaders())
	if len(h.opts.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(h.opts.AllowedOrigins))
	}

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/categories", h.listCategories)
		api.GET("/announcements/active", h.activeAnnouncements)
		api.POST("/orders", h.orderLimiter.Middleware("orders"), h.createOrder)

		api.POST("/auth/login", h.loginLimiter.Middleware("login"), h.login)
		api.POST("/auth/logout", h.logout)
		api.GET("/auth/me", h.requireAuth(), h.me)
	}

	admin := router.Group("/api", h.requireAuth())
	{
		admin.POST("/products", h.createProduct)
		admin.PATCH("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.POST("/categories", h.createCategory)
		admin.PATCH("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.GET("/announcements", h.listAnnouncements)
		admin.POST("/announcements", h.createAnnouncement)
		admin.PATCH("/announcements/:id", h.updateAnnouncement)
		admin.DELETE("/announcements/:id", h.deleteAnnouncement)

		admin.GET("/admin/dashboard", h.dashboard)
		admin.GET("/admin/orders", h.listOrders)
		admin.GET("/admin/orders/:id", h.getOrder)
		admin.PATCH("/admin/orders/:id/status", h.updateOrderStatus)
		admin.DELETE("/admin/orders/:id", h.deleteOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck probes every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}
