package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// MediaHeaders 媒体文件统一禁止内容嗅探
// attachmentPrefix 下的私信附件一律作为下载返回，不按扩展名渲染
func MediaHeaders(attachmentPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		if strings.HasPrefix(c.Request.URL.Path, attachmentPrefix) {
			h.Set("Content-Type", "application/octet-stream")
			h.Set("Content-Disposition", "attachment")
			h.Set("Content-Security-Policy", "sandbox")
		}
		c.Next()
	}
}
