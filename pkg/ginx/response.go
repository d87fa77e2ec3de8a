package ginx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/poolagent/pkg/apierror"
)

// isXMLResponse 检查是否应该使用 XML 格式响应
func isXMLResponse(ctx *gin.Context) bool {
	format := getResponseFormat(ctx)
	if format == "xml" {
		return true
	}
	// 如果没有设置，检查 Accept header
	accept := ctx.GetHeader("Accept")
	return strings.Contains(accept, "application/xml") ||
		strings.Contains(accept, "text/xml")
}

// renderResponse 渲染响应
// 请求是 XML 时响应也是 XML，否则默认 JSON；string 按纯文本输出
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	if v, ok := response.(string); ok {
		ctx.String(http.StatusOK, v)
		return
	}

	if isXMLResponse(ctx) {
		ctx.XML(http.StatusOK, response)
	} else {
		ctx.JSON(http.StatusOK, response)
	}
}

// renderError 渲染错误响应
// *apierror.Error 按 Kind 选择 HTTP 状态码，其余错误使用 statusCode
func renderError(ctx *gin.Context, statusCode int, err error) {
	useXML := isXMLResponse(ctx)

	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		errorResp := apierror.NewErrorResponse(ctx.GetHeader(RequestIDHeader), apiErr)
		statusCode = statusForKind(apiErr.Kind, statusCode)
		if useXML {
			ctx.XML(statusCode, errorResp)
		} else {
			ctx.JSON(statusCode, errorResp)
		}
		return
	}

	errorMsg := gin.H{"error": err.Error()}
	if useXML {
		ctx.XML(statusCode, errorMsg)
	} else {
		ctx.JSON(statusCode, errorMsg)
	}
}

func statusForKind(kind apierror.Kind, fallback int) int {
	switch kind {
	case apierror.KindNotFound:
		return http.StatusNotFound
	case apierror.KindInvalidRequest:
		return http.StatusBadRequest
	case apierror.KindOperationFailed, apierror.KindBackendError:
		return http.StatusInternalServerError
	default:
		return fallback
	}
}
