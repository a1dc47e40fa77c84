package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidationOnce sync.Once

// registerValidators 在 gin 的校验引擎上注册自定义规则。
func registerValidators() {
	registerValidationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

// bindingMessage 把绑定错误转成面向用户的一句话。
func bindingMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		switch fe.Tag() {
		case "required", "notblank":
			return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", strings.ToLower(fe.Field()), fe.Param())
		default:
			return fmt.Sprintf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag())
		}
	}
	return "invalid request body"
}
