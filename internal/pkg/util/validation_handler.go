package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// 错误信息中使用 json 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidationError 首个未通过的字段
type ValidationError struct {
	errs validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	first := e.errs[0]
	return fmt.Sprintf("字段 [%s] 校验失败，规则 [%s]", first.Field(), first.Tag())
}

func (e *ValidationError) Unwrap() error {
	return e.errs
}

func ValidateDTO(dto any) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		return &ValidationError{errs: vErrs}
	}
	return err
}
