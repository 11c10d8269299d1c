package sentry

import (
	"github.com/gin-gonic/gin"
)

// GinMiddleware 上报请求处理过程中的 panic 以及通过 c.Error 记录的错误
//
// panic 上报后继续向外抛出，由外层 Recovery 中间件负责响应
func GinMiddleware(c *Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil {
			ctx.Next()
			return
		}

		defer func() {
			if r := recover(); r != nil {
				c.CapturePanic(r, requestTags(ctx))
				panic(r)
			}
		}()

		ctx.Next()

		for _, e := range ctx.Errors {
			c.CaptureException(e.Err, requestTags(ctx))
		}
	}
}

func requestTags(ctx *gin.Context) map[string]string {
	return map[string]string{
		"http.method": ctx.Request.Method,
		"http.route":  ctx.FullPath(),
	}
}
