package v1

import (
	"net/http"
	"time"

	"checkout-relay-backend/config"
	"checkout-relay-backend/internal/delivery/http/middleware"
	"checkout-relay-backend/internal/delivery/http/response"
	"checkout-relay-backend/internal/domain"
	"checkout-relay-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	CheckoutUC   domain.CheckoutUsecase
	SubmissionUC domain.SubmissionUsecase
	HealthUC     usecase.HealthUsecase
	Config       *config.Config
	Redis        *goredis.Client // optional rate-limit store
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	// IP metadata is the socket peer, never a client-supplied header
	_ = r.SetTrustedProxies(nil)

	// Global Middlewares
	r.Use(middleware.CORSMiddleware([]string{deps.Config.FrontendURL}, gin.Mode() == gin.ReleaseMode)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Invalid request method.", nil)
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Not found.", nil)
	})

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", gin.H{"checks": deps.HealthUC.Check(c.Request.Context())})
	})

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	checkout := v1.Group("/checkout")
	checkout.Use(middleware.RateLimitMiddleware(middleware.CheckoutRateLimitConfig(deps.Config.RateLimitCheckoutThreshold, window, deps.Redis)))
	NewCheckoutHandler(checkout, deps.CheckoutUC)

	submissions := v1.Group("/submissions")
	submissions.Use(middleware.RateLimitMiddleware(middleware.SubmissionRateLimitConfig(deps.Config.RateLimitSubmitThreshold, window, deps.Redis)))
	NewSubmissionHandler(submissions, deps.SubmissionUC)

	return r
}
