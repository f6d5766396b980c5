package middleware

import (
	"coursehub/config"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Locals keys set by JWTMiddleware.
const (
	LocalUserID = "userId"
	LocalRole   = "role"
)

const defaultTokenTTL = 7 * 24 * time.Hour

func jwtSecret() []byte {
	if config.AppConfig == nil {
		return []byte("defaultSecret")
	}
	return []byte(config.AppConfig.JWTKey)
}

// GenerateJWT issues a signed token carrying the account id and role.
func GenerateJWT(id, role string) (string, error) {
	ttl := defaultTokenTTL
	if config.AppConfig != nil && config.AppConfig.JWTExpiry > 0 {
		ttl = config.AppConfig.JWTExpiry
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   id,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// JWTMiddleware verifies the bearer token and stores the caller's id and
// role in the request context.
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "No authorization token provided", nil)
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
	}
	id, _ := claims["id"].(string)
	role, _ := claims["role"].(string)
	if id == "" || role == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
	}

	c.Locals(LocalUserID, id)
	c.Locals(LocalRole, role)
	return c.Next()
}

// UserID returns the authenticated caller's id.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}

// JsonResponse writes the standard envelope. Data is omitted when nil.
func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	body := fiber.Map{
		"success":    success,
		"statusCode": statusCode,
		"message":    message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(statusCode).JSON(body)
}

// ErrorResponse writes a failure envelope with optional details.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, errors interface{}) error {
	body := fiber.Map{
		"success":    false,
		"statusCode": statusCode,
		"message":    message,
	}
	if errors != nil {
		body["errors"] = errors
	}
	return c.Status(statusCode).JSON(body)
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed!", errors)
}
