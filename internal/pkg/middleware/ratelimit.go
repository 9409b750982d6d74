package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/HookFox/internal/pkg/config"
)

// limiterRedisDB keeps limiter keys apart from anything else on the instance.
const limiterRedisDB = 2

// AdminRateLimiter throttles the bearer-token routes per client IP. Counters
// live in Redis when CACHE_HOST is set so several instances share them.
func AdminRateLimiter(cfg *config.Config) fiber.Handler {
	if cfg.AdminRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	lc := limiter.Config{
		Max:        cfg.AdminRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "admin:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Warnf("[RateLimit] admin limit reached ip=%s path=%s", c.IP(), c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"ok": false, "error": "too_many_requests"})
		},
	}

	if cfg.CacheHost != "" {
		lc.Storage = redis.New(redis.Config{
			Host:     cfg.CacheHost,
			Port:     cfg.CachePort,
			Password: cfg.CachePassword,
			Database: limiterRedisDB,
			Reset:    false,
		})
		log.Infof("[RateLimit] Using Redis at %s:%d for admin limiter", cfg.CacheHost, cfg.CachePort)
	}

	return limiter.New(lc)
}
