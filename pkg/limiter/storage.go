package limiter

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis/v3"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 6379
)

// NewRedisStorage returns a shared counter store for the fiber limiter.
// The redis storage panics when it cannot connect, so addr is pinged first.
func NewRedisStorage(ctx context.Context, addr string, poolSize int) (fiber.Storage, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis %s unreachable: %w", addr, err)
	}

	host, port := parseRedisAddr(addr)

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		PoolSize: poolSize,
	}), nil
}

// KeyGenerator scopes limiter counters per client IP under prefix.
func KeyGenerator(prefix string) func(c *fiber.Ctx) string {
	return func(c *fiber.Ctx) string {
		return prefix + c.IP()
	}
}

func parseRedisAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}

	if host == "" {
		host = defaultHost
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultPort
	}

	return host, port
}
