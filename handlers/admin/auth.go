package admin

import (
	"log"
	"os"
	"time"

	"lifetrack/database"
	"lifetrack/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 24 * time.Hour

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login issues an admin JWT after checking the credentials against the
// is_admin users. Failures report the same generic 401 whether the account
// is missing, not an admin, or the password is wrong.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username and password are required"})
	}

	admin, ok := authenticateAdmin(req.Username, req.Password)
	if !ok {
		log.Printf("🔐 Failed admin login attempt for %q", req.Username)
		return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	admin.LastLogin = time.Now()
	database.GetDB().Save(admin)

	token, expiresAt, err := generateAdminToken(admin.ID, admin.Username)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(LoginResponse{
		Token:     token,
		Username:  admin.Username,
		ExpiresAt: expiresAt,
	})
}

func authenticateAdmin(username, password string) (*models.User, bool) {
	var user models.User
	err := database.GetDB().
		Where("username = ? AND is_admin = ?", username, true).
		First(&user).Error
	if err != nil || user.Password == "" {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, false
	}
	return &user, true
}

// VerifyToken confirms a token already validated by the admin middleware.
func VerifyToken(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"valid":    true,
		"user_id":  c.Locals("userId"),
		"username": c.Locals("username"),
		"is_admin": c.Locals("isAdmin"),
	})
}

// Logout is a no-op server side; the client discards its token.
func Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func generateAdminToken(userID uint, username string) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(adminTokenTTL).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"is_admin": true,
		"iat":      now.Unix(),
		"exp":      expiresAt,
	})
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt, nil
}
