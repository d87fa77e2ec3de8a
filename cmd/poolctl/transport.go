package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jimyag/poolagent/internal/poolagent/natsrpc"
	"github.com/jimyag/poolagent/pkg/stanza"
)

// requester 把请求 stanza 发送给 agent
type requester interface {
	Do(ctx context.Context, iq *stanza.IQ) (*stanza.IQ, error)
	Close() error
}

func newRequester(ctx context.Context) (requester, error) {
	if natsURL != "" {
		return natsrpc.Dial(ctx, natsURL, natsSubject)
	}
	return &httpRequester{
		endpoint: strings.TrimRight(httpURL, "/") + "/api/storage/iq",
		client:   &http.Client{},
	}, nil
}

type httpRequester struct {
	endpoint string
	client   *http.Client
}

func (h *httpRequester) Do(ctx context.Context, iq *stanza.IQ) (*stanza.IQ, error) {
	data, err := stanza.Marshal(iq)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", h.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post %s: %s: %s", h.endpoint, resp.Status, strings.TrimSpace(string(body)))
	}
	return stanza.Unmarshal(body)
}

func (h *httpRequester) Close() error {
	return nil
}
