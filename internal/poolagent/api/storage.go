package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/poolagent/pkg/ginx"
	"github.com/jimyag/poolagent/pkg/stanza"
)

// IQHandler 处理一个 IQ 请求并返回响应
type IQHandler interface {
	HandleIQ(ctx context.Context, iq *stanza.IQ) *stanza.IQ
}

type StorageAPI struct {
	handler IQHandler
}

func NewStorageAPI(handler IQHandler) *StorageAPI {
	return &StorageAPI{
		handler: handler,
	}
}

func (s *StorageAPI) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/storage/iq", ginx.Adapt5(s.HandleIQ))
}

// HandleIQ 存储池请求的失败在 stanza 内以 error 类型返回，HTTP 状态码始终为 200
func (s *StorageAPI) HandleIQ(ctx *gin.Context, iq *stanza.IQ) (*stanza.IQ, error) {
	return s.handler.HandleIQ(ctx.Request.Context(), iq), nil
}
