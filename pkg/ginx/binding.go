package ginx

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// isXMLRequest 检查请求是否为 XML 格式
func isXMLRequest(ctx *gin.Context) bool {
	contentType := ctx.GetHeader("Content-Type")
	return strings.Contains(contentType, "application/xml") ||
		strings.Contains(contentType, "text/xml")
}

// bindArgs 根据 Content-Type 从 body 绑定参数
// XML 请求的响应也使用 XML，其余默认 JSON
func bindArgs(ctx *gin.Context, args any) error {
	if isXMLRequest(ctx) {
		setResponseFormat(ctx, "xml")
		return ctx.ShouldBindXML(args)
	}
	setResponseFormat(ctx, "json")
	return ctx.ShouldBindJSON(args)
}
