// Package poolagent 提供 poolagent 服务器的主入口和初始化逻辑
package poolagent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jimmicro/grace"
	"github.com/jimyag/poolagent/internal/poolagent/api"
	"github.com/jimyag/poolagent/internal/poolagent/config"
	"github.com/jimyag/poolagent/internal/poolagent/dispatch"
	"github.com/jimyag/poolagent/internal/poolagent/natsrpc"
	"github.com/jimyag/poolagent/internal/poolagent/service"
	"github.com/jimyag/poolagent/pkg/libvirt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg     *config.Config
	libvirt *libvirt.Client
	api     *api.API
	nats    *natsrpc.Server
	tracing *tracing
}

func New(cfg *config.Config) (*Server, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	// 1. 创建 Libvirt Client
	libvirtClient, err := libvirt.NewWithURI(cfg.LibvirtURI)
	if err != nil {
		return nil, fmt.Errorf("connect libvirt %s: %w", cfg.LibvirtURI, err)
	}
	logger.Info().Str("uri", libvirtClient.URI()).Msg("Connected to libvirt")

	// 2. 创建 tracer，未开启时使用全局 noop provider
	tr, err := newTracing(cfg.TraceStdout)
	if err != nil {
		_ = libvirtClient.Close()
		return nil, err
	}

	// 3. 创建 Storage Pool Service 和 Dispatcher
	storagePoolService := service.NewStoragePoolService(libvirtClient)

	registry := prometheus.NewRegistry()
	metrics := dispatch.NewMetrics()
	registry.MustRegister(
		metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dispatcher := dispatch.New(storagePoolService, metrics)

	// 4. 创建 HTTP 和 NATS 通道
	server := &Server{
		cfg:     cfg,
		libvirt: libvirtClient,
		api:     api.New(cfg.Address, dispatcher, libvirtClient, registry),
		tracing: tr,
	}
	if cfg.NATS.URL != "" {
		server.nats = natsrpc.NewServer(cfg.NATS.URL, cfg.NATS.Subject, dispatcher)
	}
	return server, nil
}

func (s *Server) Run(ctx context.Context) error {
	// 使用 grace.Shepherd 管理服务生命周期
	services := []grace.Grace{
		s.api,
	}
	if s.nats != nil {
		services = append(services, s.nats)
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	zerolog.DefaultContextLogger.Info().
		Str("address", s.cfg.Address).
		Bool("nats", s.nats != nil).
		Msg("poolagent started")
	shepherd.Start(ctx)

	return s.Shutdown(context.Background())
}

// Shutdown 释放 libvirt 连接和 tracer，服务本身由 grace 停止
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.libvirt.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close libvirt: %w", err))
	}
	return errors.Join(errs...)
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "poolagent"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
