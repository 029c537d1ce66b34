package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/service"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

func init() {
	// Report binding failures by their wire names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(wireName)
	}
}

func wireName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// respondError writes the JSON error for err. Unexpected errors are logged
// and answered with a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		code := "invalid_input"
		if errors.Is(verr, model.ErrInvalidEnum) {
			code = "invalid_enum"
		}
		body := gin.H{"error": verr.Error(), "code": code}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrRecipeNotFound), errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrUserInactive):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrStorageNotConfigured):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the request body into dst and runs its binding rules.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return model.TranslateValidation(verrs)
		}
		return types.DecodeError(err)
	}
	return nil
}

// bindQuery reads query parameters into dst and runs its binding rules.
func bindQuery(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return model.TranslateValidation(verrs)
		}
		return model.InvalidInput("", "malformed query: "+err.Error())
	}
	return nil
}
