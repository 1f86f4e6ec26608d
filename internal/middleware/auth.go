package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/auth"
	"github.com/opechapo/kara-backend/internal/config"
	"github.com/opechapo/kara-backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	CtxUserID        = "user_id"
	CtxWalletAddress = "wallet_address"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxWalletAddress, claims.WalletAddress)

		return c.Next()
	}
}

// OptionalAuthMiddleware populates the user locals when a valid token
// is present but never rejects the request.
func OptionalAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr != "" && tokenStr != authHeader {
			if claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr); err == nil {
				c.Locals(CtxUserID, claims.UserID)
				c.Locals(CtxWalletAddress, claims.WalletAddress)
			}
		}
		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func GetWalletAddress(c *fiber.Ctx) string {
	addr, _ := c.Locals(CtxWalletAddress).(string)
	return addr
}

// AdminMiddleware requires users.is_admin on the authenticated user.
func AdminMiddleware(userRepo *repositories.UserRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := userRepo.GetByID(c.Context(), GetUserID(c))
		if err != nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
		}
		return c.Next()
	}
}
