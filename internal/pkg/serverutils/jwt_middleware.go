package serverutils

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const LocalUserID = "user_id"

var ErrInvalidToken = errors.New("invalid token")

// ParseIdentity validates a bearer token and returns its user id claim,
// preferring "user_id" over "sub".
func ParseIdentity(tokenStr, secret string) (string, error) {
	if tokenStr == "" || secret == "" {
		return "", ErrInvalidToken
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if id, _ := claims["user_id"].(string); id != "" {
		return id, nil
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	return "", ErrInvalidToken
}

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// JwtMiddleware rejects requests without a valid bearer token.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := bearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		userID, err := ParseIdentity(tokenStr, secret)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
		ctx.Locals(LocalUserID, userID)
		return ctx.Next()
	}
}

// OptionalIdentity records the caller's user id when a valid bearer token is
// present and lets anonymous requests through untouched.
func OptionalIdentity(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if tokenStr := bearerToken(ctx); tokenStr != "" {
			if userID, err := ParseIdentity(tokenStr, secret); err == nil {
				ctx.Locals(LocalUserID, userID)
			}
		}
		return ctx.Next()
	}
}

// UserIDFromCtx returns the authenticated user id, or "" for anonymous callers.
func UserIDFromCtx(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(LocalUserID).(string)
	return id
}
