package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const localsUserID = "user_id"

var (
	errMissingBearer = errors.New("missing bearer token")
	errTokenInvalid  = errors.New("token invalid")
)

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

func JWTMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		claims, err := requestClaims(c, key)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals(localsUserID, claims.UserID)
		return c.Next()
	}
}

// OptionalJWT identifies the caller when it can and otherwise lets the
// request through anonymously.
func OptionalJWT(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		if claims, err := requestClaims(c, key); err == nil {
			c.Locals(localsUserID, claims.UserID)
		}
		return c.Next()
	}
}

// UserID is the caller set by either middleware, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}

func requestClaims(c *fiber.Ctx, key []byte) (*Claims, error) {
	token := parseBearer(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return nil, errMissingBearer
	}
	parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, errTokenInvalid
	}
	return claims, nil
}

func parseBearer(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
