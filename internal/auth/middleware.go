package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pass-service/internal/domain"
	"github.com/spec-kit/pass-service/internal/repository"
	apperrors "github.com/spec-kit/pass-service/pkg/util"
)

const principalKey = "auth_principal"

// SessionCookieName is the cookie checked when no Authorization header is set.
const SessionCookieName = "token"

// Principal represents the authenticated caller.
type Principal struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	RawClaims *Claims
}

// AuthMiddleware validates bearer tokens and resolves caller identity.
type AuthMiddleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	denylist *TokenDenylist
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, denylist *TokenDenylist) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, denylist: denylist}
}

// Handle enforces authentication for protected routes. The bearer header
// takes precedence over the session cookie.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := extractToken(c)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("not authorized to access this route")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("not authorized to access this route")
	}

	if m.denylist.IsRevoked(c.Context(), claims.ID) {
		return apperrors.NewUnauthorized("session has been revoked")
	}

	role := claims.Role
	if role == "" {
		// Tokens minted before the role claim existed: fall back to the
		// user's current role in the store.
		user, err := m.users.GetByID(c.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("user not found")
			}
			return apperrors.MapError(err)
		}
		role = user.Role
	}

	c.Locals(principalKey, &Principal{
		UserID:    claims.Subject,
		Role:      role,
		TokenID:   claims.ID,
		RawClaims: claims,
	})
	return c.Next()
}

func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(SessionCookieName)
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
