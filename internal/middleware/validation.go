package middleware

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"esi_language": validateLanguage,
			"pain_score":   validatePainScore,
			"case_status":  validateCaseStatus,
		},
		CustomErrorMessages: map[string]string{
			"required":     "Field is required",
			"gt":           "Value must be positive",
			"esi_language": "Language must be one of: en, hi",
			"pain_score":   "Pain score must be between 0 and 10",
			"case_status":  "Unknown case status",
		},
	}
}

func validateLanguage(fl validator.FieldLevel) bool {
	return model.Language(fl.Field().String()).Valid()
}

func validatePainScore(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 0 && v <= 10
}

func validateCaseStatus(fl validator.FieldLevel) bool {
	return model.CaseStatus(fl.Field().String()).Valid()
}

// RegisterValidators installs the custom tags on gin's binding engine.
func RegisterValidators(config ValidationConfig) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	for tag, fn := range config.CustomValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

// Validation turns binding failures attached with c.Error into a 400 that
// lists each offending field.
func Validation(config ValidationConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		var validationErrors []ValidationError
		for _, ginErr := range c.Errors {
			var errs validator.ValidationErrors
			if !stderrors.As(ginErr.Err, &errs) {
				continue
			}
			for _, e := range errs {
				msg := config.CustomErrorMessages[e.Tag()]
				if msg == "" {
					msg = e.Error()
				}
				validationErrors = append(validationErrors, ValidationError{
					Field:   e.Field(),
					Message: msg,
				})
			}
		}

		if len(validationErrors) > 0 && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    http.StatusBadRequest,
					"message": "validation failed",
				},
				"errors": validationErrors,
			})
		}
	}
}
