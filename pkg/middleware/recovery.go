package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arcentra/console/pkg/envelope"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時はログに記録し、HTTP 500とエンベロープを返す。
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
					"panic":  r,
				}).Error("[PANIC]")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					envelope.Fail(envelope.CodeInternal, "内部サーバーエラーが発生しました"))
			}
		}()
		c.Next()
	}
}
