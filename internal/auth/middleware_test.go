package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pass-service/internal/domain"
	"github.com/spec-kit/pass-service/internal/repository"
	apperrors "github.com/spec-kit/pass-service/pkg/util"
)

type stubUserRepo struct {
	byID map[string]*domain.User
}

func (r *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *stubUserRepo) Update(context.Context, *domain.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByInvitationToken(context.Context, string, time.Time) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) UpdateStatus(context.Context, string, domain.UserStatus) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) UpdateStatusByEmail(context.Context, string, domain.UserStatus) error {
	return nil
}

func (r *stubUserRepo) List(context.Context, repository.ListFilter) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) Count(context.Context, repository.ListFilter) (int64, error) { return 0, nil }
func (r *stubUserRepo) Delete(context.Context, string) error                        { return nil }

func newTestApp(middleware *AuthMiddleware, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})

	handlers := append([]fiber.Handler{middleware.Handle}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewInternalError(nil)
		}
		return c.JSON(fiber.Map{"userId": principal.UserID, "role": string(principal.Role)})
	})
	app.Get("/protected", handlers...)
	return app
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	middleware := NewAuthMiddleware(tm, &stubUserRepo{}, NewTokenDenylist(nil, zap.NewNop()))
	app := newTestApp(middleware)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	middleware := NewAuthMiddleware(tm, &stubUserRepo{}, NewTokenDenylist(nil, zap.NewNop()))
	app := newTestApp(middleware)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	middleware := NewAuthMiddleware(tm, &stubUserRepo{}, NewTokenDenylist(nil, zap.NewNop()))
	app := newTestApp(middleware)

	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsSessionCookie(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	middleware := NewAuthMiddleware(tm, &stubUserRepo{}, NewTokenDenylist(nil, zap.NewNop()))
	app := newTestApp(middleware)

	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Cookie", SessionCookieName+"="+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

// The bearer header wins over the cookie when both are present.
func TestAuthMiddlewareHeaderPrecedence(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	middleware := NewAuthMiddleware(tm, &stubUserRepo{}, NewTokenDenylist(nil, zap.NewNop()))
	app := newTestApp(middleware)

	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	req.Header.Set("Cookie", SessionCookieName+"="+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRoleFallback(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	repo := &stubUserRepo{byID: map[string]*domain.User{
		"user-1": {ID: "user-1", Role: domain.RoleAdmin},
	}}
	middleware := NewAuthMiddleware(tm, repo, NewTokenDenylist(nil, zap.NewNop()))
	app := newTestApp(middleware, RequireRole(domain.RoleAdmin))

	// Token minted without an embedded role; the middleware resolves it from
	// the store.
	token, _, err := tm.GenerateToken("user-1", "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	middleware := NewAuthMiddleware(tm, &stubUserRepo{}, NewTokenDenylist(nil, zap.NewNop()))
	app := newTestApp(middleware, RequireRole(domain.RoleAdmin))

	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
