package web

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/kickoff/pkg/web/errors"
)

// BindAndValidate 绑定请求参数并校验，失败时已写入响应
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			Error(c, errors.CodeInvalidParams, errs.Error(), nil)
			return false
		}
		Error(c, errors.CodeInvalidParams, "invalid request parameters: "+err.Error(), nil)
		return false
	}
	return true
}

// GetQueryInt 读取整数查询参数，缺失或非法时返回默认值
func GetQueryInt(c *gin.Context, key string, defaultValue int) int {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return n
}
