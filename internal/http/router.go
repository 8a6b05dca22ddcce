package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"honeypot-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	apiKey string,
	limiter service.RequestRateLimiter,
	jwtSvc *service.JWTService,
	honeypotH *HoneypotHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":     "Agentic Honeypot API",
			"version":  "1.0.0",
			"endpoint": "/honeypot",
			"method":   http.MethodPost,
		})
	})

	r.POST("/honeypot", apiKeyMiddleware(apiKey), rateLimitMiddleware(limiter), honeypotH.Handle)

	admin := r.Group("/admin", jwtAuthMiddleware(jwtSvc))
	admin.GET("/sessions", adminH.ActiveSessions)
	admin.POST("/sessions/end", adminH.EndSession)

	return r
}
