// Package ginx 提供 gin 框架的 handler 适配器，负责参数绑定和响应渲染
//
// 请求的 Content-Type 包含 "application/xml" 或 "text/xml" 时按 XML 解析，
// 响应也使用 XML；其余请求默认 JSON。错误响应中的 *apierror.Error 按 Kind
// 映射 HTTP 状态码：
//
//	NotFound        404
//	InvalidRequest  400
//	OperationFailed 500
//	BackendError    500
//
// 支持的 handler 签名：
//
//	func(c *gin.Context) resp                        // Adapt2
//	func(c *gin.Context) (resp, error)               // Adapt3
//	func(c *gin.Context, args *Args) (resp, error)   // Adapt5
//
// 使用示例：
//
//	router.POST("/api/storage/iq", ginx.Adapt5(func(c *gin.Context, iq *stanza.IQ) (*stanza.IQ, error) {
//	    return dispatcher.HandleIQ(c.Request.Context(), iq), nil
//	}))
package ginx
