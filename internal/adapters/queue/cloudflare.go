// Package queue consumes Cloudflare Queue messages over the REST pull API.
// Each message announces one raw email landed in the bucket by the inbound
// Worker, carrying its object key and an optional route tag.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
)

const defaultAPIBase = "https://api.cloudflare.com/client/v4"

// Config carries the Cloudflare Queues connection settings. BaseURL
// overrides the public API origin, for tests and proxies.
type Config struct {
	AccountID string
	QueueID   string
	APIToken  string
	BaseURL   string
}

// Consumer is a Cloudflare Queues implementation of the QueueConsumer
// interface.
type Consumer struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	logger     *zap.Logger
}

// NewConsumer creates a new Cloudflare queue consumer
func NewConsumer(cfg Config, logger *zap.Logger) *Consumer {
	base := cfg.BaseURL
	if base == "" {
		base = defaultAPIBase
	}
	return &Consumer{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL: fmt.Sprintf("%s/accounts/%s/queues/%s/messages",
			strings.TrimRight(base, "/"), cfg.AccountID, cfg.QueueID),
		apiToken: cfg.APIToken,
		logger:   logger,
	}
}

type pullRequest struct {
	BatchSize         int `json:"batch_size"`
	VisibilityTimeout int `json:"visibility_timeout"`
}

type pullResponse struct {
	Result struct {
		Messages []pullMessage `json:"messages"`
	} `json:"result"`
}

type pullMessage struct {
	ID        string          `json:"id"`
	MessageID string          `json:"message_id"`
	LeaseID   string          `json:"lease_id"`
	Body      json.RawMessage `json:"body"`
}

// messageBody is the payload the inbound Worker enqueues per email.
type messageBody struct {
	Key      string `json:"key"`
	RouteTag string `json:"route_tag"`
}

type ackEntry struct {
	ID      string `json:"id"`
	LeaseID string `json:"lease_id"`
}

type ackRequest struct {
	Acks []ackEntry `json:"acks"`
}

// Pull leases up to batchSize messages for visibilitySeconds. Messages
// without an id, lease or object key are dropped.
func (c *Consumer) Pull(ctx context.Context, batchSize, visibilitySeconds int) ([]core.QueueMessage, error) {
	var decoded pullResponse
	err := c.post(ctx, "/pull", pullRequest{
		BatchSize:         batchSize,
		VisibilityTimeout: visibilitySeconds,
	}, &decoded)
	if err != nil {
		return nil, fmt.Errorf("queue pull: %w", err)
	}

	var messages []core.QueueMessage
	for _, msg := range decoded.Result.Messages {
		id := msg.ID
		if id == "" {
			id = msg.MessageID
		}
		body := decodeBody(msg.Body)
		if id == "" || msg.LeaseID == "" || body.Key == "" {
			c.logger.Warn("Dropping malformed queue message", zap.String("id", id))
			continue
		}
		messages = append(messages, core.QueueMessage{
			ID:       id,
			LeaseID:  msg.LeaseID,
			Key:      body.Key,
			RouteTag: body.RouteTag,
		})
	}
	if len(messages) > 0 {
		c.logger.Debug("Pulled queue messages", zap.Int("count", len(messages)))
	}
	return messages, nil
}

// Ack permanently removes leased messages from the queue
func (c *Consumer) Ack(ctx context.Context, messages []core.QueueMessage) error {
	if len(messages) == 0 {
		return nil
	}
	acks := make([]ackEntry, 0, len(messages))
	for _, msg := range messages {
		acks = append(acks, ackEntry{ID: msg.ID, LeaseID: msg.LeaseID})
	}
	if err := c.post(ctx, "/ack", ackRequest{Acks: acks}, nil); err != nil {
		return fmt.Errorf("queue ack: %w", err)
	}
	return nil
}

func (c *Consumer) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeBody accepts the body either as a JSON object or as a JSON string
// wrapping one; the Worker has shipped both shapes.
func decodeBody(raw json.RawMessage) messageBody {
	if len(raw) == 0 {
		return messageBody{}
	}
	var body messageBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Key != "" {
		return body
	}
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		var inner messageBody
		if json.Unmarshal([]byte(wrapped), &inner) == nil {
			return inner
		}
	}
	return messageBody{}
}
