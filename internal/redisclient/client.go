package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/claim_order.lua
var claimOrderScript string

//go:embed scripts/release_claim.lua
var releaseClaimScript string

type Client struct {
	rdb           *redis.Client
	claimScript   *redis.Script
	releaseScript *redis.Script
	claimTTL      time.Duration
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int, claimTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		claimScript:   redis.NewScript(claimOrderScript),
		releaseScript: redis.NewScript(releaseClaimScript),
		claimTTL:      claimTTL,
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ClaimOrder atomically claims an order for a florist using a Lua script.
// Returns true when the claim was acquired or the florist already holds it;
// false when another florist holds a live claim. Claims expire after the
// configured TTL so a crashed client never wedges an order; the database
// compare-and-swap stays authoritative either way.
func (c *Client) ClaimOrder(ctx context.Context, orderID, floristID string) (bool, error) {
	key := claimKey(orderID)

	result, err := c.claimScript.Run(ctx, c.rdb, []string{key},
		floristID, int(c.claimTTL.Seconds())).Result()
	if err != nil {
		return false, fmt.Errorf("claim order script failed: %w", err)
	}

	acquired, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	return acquired == 1, nil
}

// ReleaseClaim drops the claim on an order.
func (c *Client) ReleaseClaim(ctx context.Context, orderID string) error {
	if _, err := c.releaseScript.Run(ctx, c.rdb, []string{claimKey(orderID)}).Result(); err != nil {
		return fmt.Errorf("release claim script failed: %w", err)
	}
	return nil
}

// IncrCompletion bumps the florist's completion counter for a calendar day.
// The counters feed live dashboards; the analytics endpoint recomputes from
// the database and never reads these.
func (c *Client) IncrCompletion(ctx context.Context, floristID, date string) error {
	key := fmt.Sprintf("completions:%s", date)

	pipe := c.rdb.Pipeline()
	pipe.HIncrBy(ctx, key, floristID, 1)
	pipe.Expire(ctx, key, 48*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

// GetCompletions reads the day's completion counters keyed by florist id.
func (c *Client) GetCompletions(ctx context.Context, date string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, fmt.Sprintf("completions:%s", date)).Result()
}

func claimKey(orderID string) string {
	return fmt.Sprintf("claim:%s", orderID)
}
