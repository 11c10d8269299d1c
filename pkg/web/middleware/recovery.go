package middleware

import (
	"net/http/httputil"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/web/errors"
)

// Recovery 捕获 panic 并返回统一的 500 响应
func Recovery(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				httpRequest, _ := httputil.DumpRequest(c.Request, false)
				l.ErrorContext(c.Request.Context(), "http recovery from panic",
					"error", r,
					"request", string(httpRequest),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(errors.CodeToStatus(errors.CodeInternalError), gin.H{
					"code":    errors.CodeInternalError,
					"message": "internal server error",
					"data":    nil,
				})
			}
		}()
		c.Next()
	}
}
