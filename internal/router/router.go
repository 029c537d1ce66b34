package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipekeeper/backend/config"
	"github.com/pageza/recipekeeper/backend/internal/api"
	"github.com/pageza/recipekeeper/backend/internal/metrics"
	"github.com/pageza/recipekeeper/backend/internal/middleware"
	"github.com/pageza/recipekeeper/backend/internal/service"
)

// Dependencies are the services the routes are served by. Redis, Metrics
// and Images may be nil.
type Dependencies struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Auth    service.IAuthService
	Users   service.IUserService
	Recipes service.IRecipeService
	Images  service.IImageService
}

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/", api.Index)
	router.GET("/health", api.NewHealthHandler(deps.DB, deps.Redis, log).HealthCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	var authLimit, createLimit gin.HandlerFunc
	if deps.Redis != nil {
		authLimit = middleware.NewAuthRateLimiter(deps.Redis, cfg.AuthLimit, cfg.RateLimitWindow, log).Middleware(middleware.ByIP)
		createLimit = middleware.NewRecipeCreationRateLimiter(deps.Redis, cfg.RecipeCreateLimit, cfg.RateLimitWindow, log).Middleware(middleware.ByUser)
	}

	// API v1 routes
	v1 := router.Group(cfg.APIPrefix)
	api.NewAuthHandler(deps.Auth, log).RegisterRoutes(v1, authLimit)
	api.RegisterMetaRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth, deps.Users))
	api.NewUserHandler(deps.Users, log).RegisterRoutes(protected)
	api.NewRecipeHandler(deps.Recipes, log).RegisterRoutes(protected, createLimit)
	if deps.Images != nil {
		api.NewImageHandler(deps.Images, log).RegisterRoutes(protected)
	}

	return router
}
