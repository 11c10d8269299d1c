package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator 基于 validate tag 的配置校验器
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate 校验配置结构体，支持 required、min、max、gte、lte、oneof 等标准 tag
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := v.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, formatValidationErrors(err))
	}
	return nil
}

func formatValidationErrors(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("field '%s' is required", fe.Namespace()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("field '%s' must be one of [%s]", fe.Namespace(), fe.Param()))
		case "min", "gte", "gt":
			parts = append(parts, fmt.Sprintf("field '%s' must be %s %s", fe.Namespace(), fe.Tag(), fe.Param()))
		case "max", "lte", "lt":
			parts = append(parts, fmt.Sprintf("field '%s' must be %s %s", fe.Namespace(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("field '%s' failed validation '%s'", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
