package devserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// generateJWT mints a bearer token for the user
func (s *Server) generateJWT(u *User) (string, error) {
	claims := jwt.MapClaims{
		"userId": u.ID,
		"name":   u.Name,
		"role":   u.Role,
		"email":  u.Email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(24 * time.Hour).Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTKey))
}

// requireAuth checks for a valid bearer token and loads the account into
// c.Locals("user").
func (s *Server) requireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return jsonError(c, fiber.StatusUnauthorized, "Missing or invalid Authorization header")
	}

	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid token payload")
	}

	userID, _ := claims["userId"].(string)
	var user User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "Account no longer exists")
	}

	c.Locals("user", &user)
	return c.Next()
}

// requireRole allows only the listed roles past. Runs after requireAuth.
func (s *Server) requireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return jsonError(c, fiber.StatusForbidden, "You do not have permission to access this resource!")
	}
}

func currentUser(c *fiber.Ctx) *User {
	user, _ := c.Locals("user").(*User)
	return user
}

// jsonError writes the store's error body shape: {"message": ...}
func jsonError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{"message": message})
}

// validationError writes a 422 with field-level messages
func validationError(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Validation failed!",
		"errors":  errs,
	})
}

// fieldErrors flattens go-playground/validator errors into field → message.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				out[field] = "This field is required!"
			case "email":
				out[field] = "Email is not valid!"
			case "min":
				out[field] = "Value is too short or too small!"
			case "max":
				out[field] = "Value is too long or too large!"
			default:
				out[field] = "Invalid value!"
			}
		}
		return out
	}
	out["body"] = "Invalid request body!"
	return out
}
