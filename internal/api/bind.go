package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"kasir-system/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// registerTagNames makes validator report JSON field names instead of Go
// struct field names.
func registerTagNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// BindJSON binds the request body and converts binding failures into a
// validation error keyed by JSON path (e.g. items.0.obat_id).
func BindJSON(c *gin.Context, obj interface{}) error {
	registerTagNames()
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindError(err)
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	registerTagNames()
	if err := c.ShouldBindQuery(obj); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			path := fieldPath(fe.Namespace())
			fields[path] = fieldMessage(path, fe)
		}
		return apperr.Validation("The given data was invalid.", fields)
	}
	return apperr.Validation("Invalid request format", map[string]string{"body": err.Error()})
}

// fieldPath turns "SaleRequest.items[0].obat_id" into "items.0.obat_id".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s must have at least %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
