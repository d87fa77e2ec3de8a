package natsrpc

import (
	"context"
	"fmt"

	"github.com/jimyag/poolagent/pkg/stanza"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Client 通过 NATS 发送存储池请求
type Client struct {
	nc      *nats.Conn
	subject string
}

func Dial(ctx context.Context, url, subject string) (*Client, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url, connectOptions("poolctl", zerolog.Ctx(ctx))...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &Client{nc: nc, subject: subject}, nil
}

// Do 发送请求并等待响应，超时由 ctx 控制
func (c *Client) Do(ctx context.Context, iq *stanza.IQ) (*stanza.IQ, error) {
	data, err := stanza.Marshal(iq)
	if err != nil {
		return nil, err
	}
	msg, err := c.nc.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", c.subject, err)
	}
	return stanza.Unmarshal(msg.Data)
}

func (c *Client) Close() error {
	return c.nc.Drain()
}
