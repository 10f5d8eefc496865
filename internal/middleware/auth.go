package middleware

import (
	"crypto/subtle"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"agencydesk/internal/models"
)

// AuthMiddleware gates requests behind a static API key.
type AuthMiddleware struct {
	key    []byte
	public []string
	logger *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware instance. An empty key disables the check.
// Paths listed in public are always let through.
func NewAuthMiddleware(key string, logger *zap.Logger, public ...string) *AuthMiddleware {
	return &AuthMiddleware{key: []byte(key), public: public, logger: logger}
}

// Enabled reports whether an API key is configured.
func (m *AuthMiddleware) Enabled() bool {
	return len(m.key) > 0
}

// RequireAPIKey rejects requests without a matching bearer token or X-API-Key header.
func (m *AuthMiddleware) RequireAPIKey(c fiber.Ctx) error {
	if !m.Enabled() || slices.Contains(m.public, c.Path()) {
		return c.Next()
	}

	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		token = strings.TrimSpace(c.Get("X-API-Key"))
	}

	if token == "" || subtle.ConstantTimeCompare([]byte(token), m.key) != 1 {
		m.logger.Debug("rejected request without a valid API key",
			zap.String("path", c.Path()),
			zap.Bool("token_present", token != ""),
		)
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "Unauthorized"})
	}

	return c.Next()
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is case-insensitive; anything other than Bearer yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
