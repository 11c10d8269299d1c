// Package validator 配置 gin 使用的 go-playground/validator 实例。
package validator

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MaxCharacterNameLen 与 characters.name 列宽一致
const MaxCharacterNameLen = 64

// Init 注册自定义规则，并让校验错误显示 json tag 名称而非结构体字段名
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register 向 v 注册 tag 命名规则与自定义校验
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("charname", validateCharacterName)
}

// validateCharacterName 角色名非空、首尾无空白且不超过列宽
func validateCharacterName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || strings.TrimSpace(name) != name {
		return false
	}
	return utf8.RuneCountInString(name) <= MaxCharacterNameLen
}
