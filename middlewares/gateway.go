package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strconv"

	"marketpay/helpers"
	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

func failureLimit() int64 {
	if v := os.Getenv("GATEWAY_FAILURE_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return 10
}

// GatewayAuth verifies that the request came through the upstream
// authentication gateway: the signature is HMAC-SHA256 of
// actorId+actorRole under the shared gateway secret. Repeated
// signature failures from one source are counted in the guard store
// and cut off until the sweep window passes.
func GatewayAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID := c.Get("X-Actor-Id")
		actorRole := c.Get("X-Actor-Role")
		signature := c.Get("X-Gateway-Signature")

		if actorID == "" || actorRole == "" || signature == "" {
			return helpers.JSONError(c, fiber.StatusUnauthorized, "ACTOR_HEADERS_REQUIRED")
		}

		guardKey := "gateway:" + c.IP()

		secret := os.Getenv("GATEWAY_SECRET")
		h := hmac.New(sha256.New, []byte(secret))
		h.Write([]byte(actorID + actorRole))
		expected := hex.EncodeToString(h.Sum(nil))

		if !hmac.Equal([]byte(signature), []byte(expected)) {
			if services.Guard.Hit(guardKey) > failureLimit() {
				return helpers.JSONError(c, fiber.StatusTooManyRequests, "TOO_MANY_FAILED_ATTEMPTS")
			}
			return helpers.JSONError(c, fiber.StatusUnauthorized, "INVALID_GATEWAY_SIGNATURE")
		}

		services.Guard.Reset(guardKey)

		c.Locals("actorId", actorID)
		c.Locals("actorRole", actorRole)
		return c.Next()
	}
}
