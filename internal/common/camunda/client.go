// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"candidate-evaluation-workers/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            *RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient connects to the gateway named in cfg and verifies the topology.
func NewClient(cfg config.CamundaConfig) (*Client, error) {
	return NewClientWithConfig(&ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.RequestTimeout),
		RetryConfig:            DefaultRetryConfig,
	})
}

func NewClientWithConfig(cfg *ClientConfig) (*Client, error) {
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig
	}
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: cfg}
	err = Retry(context.Background(), cfg.RetryConfig, "zeebe topology", c.HealthCheck)
	if err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.GatewayAddress, err)
	}
	return c, nil
}

func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck performs a topology request against the broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Retry runs op until it succeeds, fails with a non-transient error or runs
// out of attempts. Delays double from BaseDelay up to MaxDelay.
func Retry(ctx context.Context, cfg *RetryConfig, operationName string, op func(context.Context) error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempt+1, ctx.Err())
		}
	}
	return fmt.Errorf("operation %s failed: %w", operationName, lastErr)
}

// IsTransient reports whether err looks like a connectivity problem.
func IsTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
