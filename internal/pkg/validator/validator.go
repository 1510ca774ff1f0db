package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/postcode-finder/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("visafilter", func(fl validator.FieldLevel) bool {
		return domain.VisaFilter(fl.Field().String()).Valid()
	})
}

// Validate - validate struct tags
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// FieldErrors flattens validation errors into field -> failed tag for error details.
func FieldErrors(err error) map[string]interface{} {
	details := make(map[string]interface{})
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		details["error"] = err.Error()
		return details
	}
	for _, fe := range verrs {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return details
}
