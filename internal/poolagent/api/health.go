package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jimyag/poolagent/pkg/apierror"
	"github.com/jimyag/poolagent/pkg/ginx"
	"github.com/rs/zerolog"
)

// VersionChecker 用于探测 libvirt 连接是否可用
type VersionChecker interface {
	URI() string
	GetLibvirtVersion() (string, error)
}

// Health 健康检查结果
type Health struct {
	Status         string `json:"status"`
	LibvirtURI     string `json:"libvirtURI"`
	LibvirtVersion string `json:"libvirtVersion"`
}

type HealthAPI struct {
	checker VersionChecker
}

func NewHealthAPI(checker VersionChecker) *HealthAPI {
	return &HealthAPI{
		checker: checker,
	}
}

func (h *HealthAPI) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/healthz", ginx.Adapt3(h.Healthz))
}

func (h *HealthAPI) Healthz(ctx *gin.Context) (*Health, error) {
	version, err := h.checker.GetLibvirtVersion()
	if err != nil {
		zerolog.Ctx(ctx.Request.Context()).Error().
			Err(err).
			Str("uri", h.checker.URI()).
			Msg("Libvirt health check failed")
		return nil, apierror.WrapError(apierror.ErrBackend, "libvirt connection unavailable", err)
	}
	return &Health{
		Status:         "ok",
		LibvirtURI:     h.checker.URI(),
		LibvirtVersion: version,
	}, nil
}
