package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipekeeper/backend/internal/testhelpers"
)

func TestMetaRoutes(t *testing.T) {
	r := gin.New()
	RegisterMetaRoutes(r.Group("/api/v1"))

	w := PerformRequest(r, http.MethodGet, "/api/v1/meta/recipe-types", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	types := decodeBody(t, w)["recipe_types"].([]interface{})
	assert.Len(t, types, 10)
	first := types[0].(map[string]interface{})
	assert.Equal(t, "appetizer", first["value"])
	assert.NotEmpty(t, first["label"])
	assert.NotEmpty(t, first["description"])

	w = PerformRequest(r, http.MethodGet, "/api/v1/meta/difficulties", nil)
	assert.Equal(t, []interface{}{"easy", "medium", "hard"}, decodeBody(t, w)["difficulties"])

	w = PerformRequest(r, http.MethodGet, "/api/v1/meta/dietary-info", nil)
	assert.Contains(t, decodeBody(t, w)["dietary_info"], "vegan")
}

func TestHealthCheck(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	mr, rdb := testhelpers.SetupRedis(t)

	r := gin.New()
	r.GET("/", Index)
	r.GET("/health", NewHealthHandler(db, rdb, nil).HealthCheck)

	w := PerformRequest(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "recipekeeper", decodeBody(t, w)["service"])

	w = PerformRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "ok", "redis": "ok"}, body["checks"])

	mr.Close()
	w = PerformRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decodeBody(t, w)["status"])
}
