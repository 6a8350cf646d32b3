package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Client is the engine's handle on its Redis instance. Records, drafts and
// the workspace index all live behind it.
type Client struct {
	*redis.Client
}

// Open dials Redis and verifies the connection with a bounded ping. Startup
// recovery reads the whole store, so an unreachable instance is reported
// here rather than on first use.
func Open(ctx context.Context, addr, password string, db int) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return &Client{Client: c}, nil
}
