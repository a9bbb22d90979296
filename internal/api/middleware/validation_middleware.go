package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	validatedModelKey = "validated_model"
	validatedQueryKey = "validated_query"
)

// ValidationMiddleware handles request validation
type ValidationMiddleware struct {
	validator *validator.Validate
	log       *logger.Logger
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware() *ValidationMiddleware {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("not_empty", validateNotEmpty)
	v.RegisterValidation("ymd", validateDate)
	v.RegisterValidation("hhmm", validateClock)

	return &ValidationMiddleware{
		validator: v,
		log:       logger.NewLogger(),
	}
}

func newModel(model interface{}) interface{} {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	return reflect.New(modelType).Interface()
}

// ValidateRequest decodes the JSON body into a fresh copy of model and
// validates it. The result is stored under "validated_model".
func (m *ValidationMiddleware) ValidateRequest(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelValue := newModel(model)

		if err := json.NewDecoder(c.Request.Body).Decode(modelValue); err != nil {
			m.log.Debug("JSON decode failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("invalid JSON body: %v", err),
			})
			return
		}

		if details, ok := m.check(modelValue); !ok {
			m.log.Debug("Validation failed", zap.Any("errors", details), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "validation failed",
				"details": details,
			})
			return
		}

		c.Set(validatedModelKey, modelValue)
		c.Next()
	}
}

// ValidateQuery validates query parameters against the provided struct
func (m *ValidationMiddleware) ValidateQuery(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelValue := newModel(model)

		if err := c.ShouldBindQuery(modelValue); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}

		if details, ok := m.check(modelValue); !ok {
			m.log.Debug("Query validation failed", zap.Any("errors", details), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "validation failed",
				"details": details,
			})
			return
		}

		c.Set(validatedQueryKey, modelValue)
		c.Next()
	}
}

func (m *ValidationMiddleware) check(model interface{}) (map[string]string, bool) {
	err := m.validator.Struct(model)
	if err == nil {
		return nil, true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}, false
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = formatValidationError(fe)
	}
	return details, false
}

// ValidatedModel returns the body stored by ValidateRequest.
func ValidatedModel[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(validatedModelKey)
	if !ok {
		return nil, false
	}
	model, ok := v.(*T)
	return model, ok
}

// ValidatedQuery returns the query stored by ValidateQuery.
func ValidatedQuery[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(validatedQueryKey)
	if !ok {
		return nil, false
	}
	model, ok := v.(*T)
	return model, ok
}

// Custom validators
func validateNotEmpty(fl validator.FieldLevel) bool {
	return len(strings.TrimSpace(fl.Field().String())) > 0
}

func validateDate(fl validator.FieldLevel) bool {
	return streaks.ValidDate(fl.Field().String())
}

func validateClock(fl validator.FieldLevel) bool {
	return streaks.ValidClock(fl.Field().String())
}

// Helper function to format validation errors
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "not_empty":
		return "this field cannot be empty"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	case "hhmm":
		return "must be a time in HH:MM format"
	default:
		return "invalid value"
	}
}
