package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "aurum-backend/internal/application/auth"
	"aurum-backend/internal/domain"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	mr := miniredis.RunT(t)
	cfg := middleware.SessionConfig{Secret: "test-secret", RedisURL: "redis://" + mr.Addr()}
	sessionMw, rdb, err := middleware.Session(cfg)
	require.NoError(t, err)

	h := &Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Rdb:        rdb,
		Config:     cfg,
	}

	app := fiber.New()
	app.Use(sessionMw)
	app.Post("/auth/login", h.Login)
	app.Get("/auth/me", h.Me)
	app.Delete("/auth/logout", h.Logout)
	return app, db
}

func seedAuthUser(t *testing.T, db *gorm.DB, email, password, status string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		Fullname:     "Test User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         constants.Customer,
		Status:       status,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	app, db := newAuthApp(t)
	seedAuthUser(t, db, "jane@example.com", "correct-horse-1!", domain.UserStatusActive)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"correct-horse-1!"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	assert.True(t, strings.HasPrefix(cookie.Value, "s:"), "connect-redis style cookie value")
	assert.True(t, cookie.HttpOnly)

	var body struct {
		Data struct {
			User struct {
				Email  string `json:"email"`
				Role   string `json:"role"`
				Status string `json:"status"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "jane@example.com", body.Data.User.Email)
	assert.Equal(t, constants.Customer, body.Data.User.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	app, db := newAuthApp(t)
	seedAuthUser(t, db, "jane@example.com", "correct-horse-1!", domain.UserStatusActive)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogin_UnknownEmail(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"nobody@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogin_SuspendedAccount(t *testing.T) {
	app, db := newAuthApp(t)
	seedAuthUser(t, db, "jane@example.com", "correct-horse-1!", domain.UserStatusSuspended)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"correct-horse-1!"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestLogin_MissingFields(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"jane@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestMe_WithSession(t *testing.T) {
	app, db := newAuthApp(t)
	seedAuthUser(t, db, "jane@example.com", "correct-horse-1!", domain.UserStatusActive)

	loginReq := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"correct-horse-1!"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginResp, err := app.Test(loginReq)
	require.NoError(t, err)
	cookie := sessionCookie(t, loginResp)

	meReq := httptest.NewRequest("GET", "/auth/me", nil)
	meReq.AddCookie(cookie)
	meResp, err := app.Test(meReq)
	require.NoError(t, err)
	assert.Equal(t, 200, meResp.StatusCode)

	var body struct {
		Data struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&body))
	assert.Equal(t, "jane@example.com", body.Data.User.Email)
}

func TestMe_WithoutSession(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	app, db := newAuthApp(t)
	seedAuthUser(t, db, "jane@example.com", "correct-horse-1!", domain.UserStatusActive)

	loginReq := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"correct-horse-1!"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginResp, err := app.Test(loginReq)
	require.NoError(t, err)
	cookie := sessionCookie(t, loginResp)

	logoutReq := httptest.NewRequest("DELETE", "/auth/logout", nil)
	logoutReq.AddCookie(cookie)
	logoutResp, err := app.Test(logoutReq)
	require.NoError(t, err)
	assert.Equal(t, 200, logoutResp.StatusCode)

	meReq := httptest.NewRequest("GET", "/auth/me", nil)
	meReq.AddCookie(cookie)
	meResp, err := app.Test(meReq)
	require.NoError(t, err)
	assert.Equal(t, 401, meResp.StatusCode)
}
