package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns the shared validator used against request DTO tags.
func New() *validatorv10.Validate {
	return validatorv10.New()
}

// ErrorsToMap flattens validation failures into field -> message pairs for
// the response envelope.
func ErrorsToMap(err error) map[string]interface{} {
	out := map[string]interface{}{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Tag()
		}
	} else if err != nil {
		out["error"] = err.Error()
	}
	return out
}
