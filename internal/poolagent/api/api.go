// Package api 提供存储池 stanza 的 HTTP 通道
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	engine *gin.Engine
	server *http.Server

	storage *StorageAPI
	health  *HealthAPI
}

// New 创建 HTTP 服务，gatherer 为 nil 时不注册 /metrics
func New(addr string, handler IQHandler, checker VersionChecker, gatherer prometheus.Gatherer) *API {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	api := &API{
		engine:  engine,
		storage: NewStorageAPI(handler),
		health:  NewHealthAPI(checker),
	}
	api.storage.RegisterRoutes(engine.Group("/api"))
	api.health.RegisterRoutes(&engine.RouterGroup)
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api.server = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api
}

// Handler 返回 HTTP handler，便于测试
func (a *API) Handler() http.Handler {
	return a.engine
}

func (a *API) Run(ctx context.Context) error {
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "HTTP API"
}
