package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipekeeper/backend/internal/database"
	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

// Version is reported by the banner and health endpoints.
const Version = "v1.0.0"

// Index is the service banner.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "recipekeeper",
		"version": Version,
		"links": gin.H{
			"register": "/api/v1/auth/register",
			"login":    "/api/v1/auth/login",
			"health":   "/health",
		},
	})
}

// HealthHandler reports whether the database and Redis answer.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *zap.Logger
}

// NewHealthHandler creates a health handler. redis may be nil.
func NewHealthHandler(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{db: db, redis: rdb, log: log.With(zap.String("component", "health"))}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	checks := gin.H{"database": "ok"}
	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.log.Warn("database health check failed", zap.Error(err))
		checks["database"] = err.Error()
		healthy = false
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.log.Warn("redis health check failed", zap.Error(err))
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "version": Version, "checks": checks})
}

// RegisterMetaRoutes exposes the enumerations clients build forms from.
func RegisterMetaRoutes(router *gin.RouterGroup) {
	meta := router.Group("/meta")
	{
		meta.GET("/recipe-types", RecipeTypes)
		meta.GET("/difficulties", Difficulties)
		meta.GET("/dietary-info", DietaryInfo)
	}
}

func RecipeTypes(c *gin.Context) {
	out := make([]types.RecipeTypeInfo, 0, len(model.RecipeTypes))
	for _, t := range model.RecipeTypes {
		out = append(out, types.RecipeTypeInfo{Value: string(t), Label: t.Label(), Description: t.Description()})
	}
	c.JSON(http.StatusOK, gin.H{"recipe_types": out})
}

func Difficulties(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"difficulties": model.Difficulties})
}

func DietaryInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dietary_info": model.DietaryInfo})
}
