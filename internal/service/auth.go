package service

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/repository"
)

// ContextUserID is the gin context key the API middleware sets.
const ContextUserID = "user_id"

const adminSessionTTL = 12 * time.Hour

// AuthService authenticates the two surfaces: bearer API keys for the
// /api routes and a TOTP-protected session for /admin.
type AuthService struct {
	logger     *zap.Logger
	users      *repository.UserRepository
	totpSecret string

	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewAuthService(logger *zap.Logger, users *repository.UserRepository, totpSecret string) *AuthService {
	return &AuthService{
		logger:     logger,
		users:      users,
		totpSecret: totpSecret,
		sessions:   make(map[string]time.Time),
	}
}

// APIKeyMiddleware resolves the Authorization bearer token to a user and
// stores the user id in the request context. Unknown keys get 401.
func (a *AuthService) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		key, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		user, err := a.users.GetByAPIKey(key)
		if err != nil {
			a.logger.Error("API key lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}

// UserID returns the authenticated user id from the request context.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func (a *AuthService) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "BrandBeam Dashboard",
		AccountName: "admin",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return key.Secret(), nil
}

// ValidateTOTP checks an admin one-time code against the configured secret.
func (a *AuthService) ValidateTOTP(code string) bool {
	valid := totp.Validate(code, a.totpSecret)
	if valid {
		a.logger.Info("TOTP validation successful")
	} else {
		a.logger.Warn("TOTP validation failed")
	}
	return valid
}

// CreateSession mints an admin session token after a successful TOTP login.
func (a *AuthService) CreateSession() string {
	token := uuid.NewString()
	a.mu.Lock()
	a.sessions[token] = time.Now().Add(adminSessionTTL)
	a.mu.Unlock()
	return token
}

func (a *AuthService) validSession(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	expires, ok := a.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expires) {
		delete(a.sessions, token)
		return false
	}
	return true
}

// AdminMiddleware guards /admin routes with the session cookie set by the
// TOTP login endpoint.
func (a *AuthService) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("admin_session")
		if err != nil || !a.validSession(token) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
