package v1

import (
	"net/http"

	"go-talentbridge-backend/config"
	"go-talentbridge-backend/internal/delivery/http/middleware"
	"go-talentbridge-backend/internal/delivery/http/response"
	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	InterviewUC    domain.InterviewUsecase
	NotificationUC domain.NotificationUsecase
	ReportUC       domain.ReportUsecase
	JWKSProvider   *auth.Provider
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig(
		deps.Config.RateLimitGlobalThreshold,
		deps.Config.RateLimitWindowSeconds,
	)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	{
		NewAuthHandler(protected, deps.AuthUC)
		NewInterviewHandler(protected, deps.InterviewUC)
		NewNotificationHandler(protected, deps.NotificationUC)
		NewAdminHandler(protected, deps.NotificationUC, deps.ReportUC)
	}

	return r
}
