package store

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/pkg/logger"
)

// Client is the durable list/map store backing the queue, outbox, event log
// and settings. All mutation is push/pop at list ends or whole-value SET, so
// the only atomicity the rest of the service relies on is the single-record
// pop at the head.
type Client struct {
	client valkey.Client
}

func NewClient(cfg environments.ValkeyConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	logger.Infof("Connected to Valkey")

	return &Client{client: client}, nil
}

func (c *Client) PushTail(ctx context.Context, key, value string) error {
	err := c.client.Do(ctx, c.client.B().Rpush().Key(key).Element(value).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to push to tail of %s: %w", key, err)
	}
	return nil
}

func (c *Client) PushHead(ctx context.Context, key, value string) error {
	err := c.client.Do(ctx, c.client.B().Lpush().Key(key).Element(value).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to push to head of %s: %w", key, err)
	}
	return nil
}

// PopHead pops one record from the head of the list. An empty list is not an
// error; ok reports whether a record was returned.
func (c *Client) PopHead(ctx context.Context, key string) (string, bool, error) {
	result := c.client.Do(ctx, c.client.B().Lpop().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to pop from head of %s: %w", key, result.Error())
	}

	value, err := result.ToString()
	if err != nil {
		return "", false, fmt.Errorf("failed to read popped value from %s: %w", key, err)
	}

	return value, true, nil
}

func (c *Client) Len(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Do(ctx, c.client.B().Llen().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to get length of %s: %w", key, err)
	}
	return n, nil
}

func (c *Client) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := c.client.Do(ctx, c.client.B().Lrange().Key(key).Start(start).Stop(stop).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to range %s: %w", key, err)
	}
	return values, nil
}

func (c *Client) Trim(ctx context.Context, key string, start, stop int64) error {
	err := c.client.Do(ctx, c.client.B().Ltrim().Key(key).Start(start).Stop(stop).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to trim %s: %w", key, err)
	}
	return nil
}

// Get reads a plain value. A missing key is not an error; ok reports whether
// the key exists.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, result.Error())
	}

	value, err := result.ToString()
	if err != nil {
		return "", false, fmt.Errorf("failed to read value of %s: %w", key, err)
	}

	return value, true, nil
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	err := c.client.Do(ctx, c.client.B().Set().Key(key).Value(value).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}
