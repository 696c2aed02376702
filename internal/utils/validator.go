package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const InvalidRequestMessage = "Invalid request parameters"

// BindAndValidate binds the JSON body into obj and runs its binding tags. On
// failure it writes a 400 ErrorResponse and returns false. When a required
// field is missing and missingSummary is set, the summary becomes the error
// text; every individual problem is listed under errors.
func BindAndValidate(c *gin.Context, obj interface{}, missingSummary string) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	resp := ErrorResponse{Error: InvalidRequestMessage}

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		missing := false
		for _, e := range validationErrs {
			field := getJSONTagName(obj, e.StructField())
			switch e.Tag() {
			case "required":
				missing = true
				resp.Errors = append(resp.Errors, fmt.Sprintf("Field '%s' is required", field))
			case "oneof":
				resp.Errors = append(resp.Errors, fmt.Sprintf("Field '%s' must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", ")))
			case "min":
				resp.Errors = append(resp.Errors, fmt.Sprintf("Field '%s' must be at least %s", field, e.Param()))
			case "max":
				resp.Errors = append(resp.Errors, fmt.Sprintf("Field '%s' must be at most %s", field, e.Param()))
			default:
				resp.Errors = append(resp.Errors, fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", field, e.Tag()))
			}
		}
		if missing && missingSummary != "" {
			resp.Error = missingSummary
		}
	case errors.As(err, &typeErr):
		resp.Errors = []string{fmt.Sprintf("Field '%s' has invalid type, expected %s", typeErr.Field, typeErr.Type.String())}
	default:
		resp.Errors = []string{"Malformed JSON or invalid request body"}
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
	return false
}

func getJSONTagName(obj interface{}, fieldName string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fieldName
	}
	if f, ok := t.FieldByName(fieldName); ok {
		if tag := strings.Split(f.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
			return tag
		}
	}
	return fieldName
}
