// Package natsrpc 通过 NATS request/reply 传输存储池 stanza
package natsrpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubject 默认订阅的 subject
const DefaultSubject = "poolagent.storage.iq"

// queueGroup 多个 agent 订阅同一 subject 时只有一个处理请求
const queueGroup = "poolagent"

// RawHandler 处理序列化后的 IQ
type RawHandler interface {
	HandleRaw(ctx context.Context, data []byte) ([]byte, error)
}

type Server struct {
	url     string
	subject string
	handler RawHandler

	mu   sync.Mutex
	nc   *nats.Conn
	done chan struct{}
	once sync.Once
}

func NewServer(url, subject string, handler RawHandler) *Server {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Server{
		url:     url,
		subject: subject,
		handler: handler,
		done:    make(chan struct{}),
	}
}

func connectOptions(name string, logger *zerolog.Logger) []nats.Option {
	return []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
}

// Run 连接 NATS 并订阅 subject，阻塞直到 Shutdown 或 ctx 结束
func (s *Server) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("subject", s.subject).Logger()

	nc, err := nats.Connect(s.url, connectOptions("poolagent", &logger)...)
	if err != nil {
		return fmt.Errorf("connect nats %s: %w", s.url, err)
	}

	_, err = nc.QueueSubscribe(s.subject, queueGroup, func(msg *nats.Msg) {
		s.handleMsg(logger.WithContext(context.Background()), msg)
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}

	s.mu.Lock()
	s.nc = nc
	s.mu.Unlock()

	logger.Info().Str("url", s.url).Msg("NATS stanza listener started")

	select {
	case <-ctx.Done():
	case <-s.done:
	}
	return nil
}

func (s *Server) handleMsg(ctx context.Context, msg *nats.Msg) {
	logger := zerolog.Ctx(ctx)
	if msg.Reply == "" {
		logger.Warn().Msg("Dropping storage request without reply subject")
		return
	}

	reply := s.process(ctx, msg.Data)
	if reply == nil {
		return
	}
	if err := msg.Respond(reply); err != nil {
		logger.Error().Err(err).Str("reply", msg.Reply).Msg("Failed to respond to storage request")
	}
}

// process 返回 nil 表示无法构造响应
func (s *Server) process(ctx context.Context, data []byte) []byte {
	reply, err := s.handler.HandleRaw(ctx, data)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to encode storage reply")
		return nil
	}
	return reply
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() { close(s.done) })

	s.mu.Lock()
	nc := s.nc
	s.mu.Unlock()
	if nc == nil {
		return nil
	}
	if err := nc.Drain(); err != nil {
		nc.Close()
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "NATS stanza listener"
}
