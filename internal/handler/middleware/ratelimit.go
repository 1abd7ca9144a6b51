package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit bounds request frequency per client IP and operation class
// using a fixed window counter in Redis. Layered in front of the core
// handlers; the core itself knows nothing about throttling.
func RateLimit(redisClient *redis.Client, class string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", class, c.IP())

		count, err := redisClient.Incr(c.Context(), key).Result()
		if err != nil {
			// Redis being down must not take the API with it
			log.Printf("[RATELIMIT] Failed to increment counter: %v", err)
			return c.Next()
		}

		if count == 1 {
			if err := redisClient.Expire(c.Context(), key, window).Err(); err != nil {
				log.Printf("[RATELIMIT] Failed to set window expiry: %v", err)
			}
		}

		if count > int64(limit) {
			ttl, _ := redisClient.TTL(c.Context(), key).Result()
			retryAfter := int(ttl.Seconds())
			if retryAfter < 1 {
				retryAfter = int(window.Seconds())
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "too many requests",
				"retry_after": retryAfter,
			})
		}

		return c.Next()
	}
}
