package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"kvadrat-backend/internal/auth"
	"kvadrat-backend/internal/cleanup"
	"kvadrat-backend/internal/config"
	"kvadrat-backend/internal/database"
	"kvadrat-backend/internal/tokencache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mailerStub records the last reset mail instead of delivering it.
type mailerStub struct {
	to       string
	resetURL string
}

func (m *mailerStub) SendPasswordReset(to, resetURL string) error {
	m.to = to
	m.resetURL = resetURL
	return nil
}

type testEnv struct {
	router *gin.Engine
	db     *database.GormDB
	cache  *tokencache.MemoryStore
	tokens *auth.TokenManager
	mail   *mailerStub
	cfg    config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	gdb := database.NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())
	t.Cleanup(func() { gdb.Close() })

	cfg := config.DefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Media.Root = t.TempDir()
	// No SMTP in tests, so recovery flows read the token from the response
	cfg.Mail.DevExposeToken = true

	cache := tokencache.NewMemoryStore()
	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	mail := &mailerStub{}

	propertyHandler := NewPropertyHandler(gdb, cfg.Media.Root)
	catalogHandler := NewCatalogHandler(gdb)
	authHandler := NewAuthHandler(gdb, tokens, cache, mail, *cfg)
	userHandler := NewUserHandler(gdb)
	adminHandler := NewAdminHandler(gdb, cleanup.NewService(gdb.DB()))

	authRequired := auth.RequireAuth(tokens, gdb)
	staffRequired := auth.RequireStaff()

	r := gin.New()
	api := r.Group("/api")
	{
		api.GET("/properties", propertyHandler.List)
		api.GET("/properties/featured", propertyHandler.Featured)
		api.GET("/properties/search", propertyHandler.Search)
		api.POST("/properties/filter", propertyHandler.Filter)
		api.GET("/properties/:id", propertyHandler.Retrieve)
		api.GET("/banners", catalogHandler.ListBanners)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/token/refresh", authHandler.Refresh)
		api.POST("/auth/forgot-password", authHandler.ForgotPassword)
		api.POST("/auth/reset-password", authHandler.ResetPassword)
		api.POST("/auth/change-password", authRequired, authHandler.ChangePassword)

		user := api.Group("/user", authRequired)
		{
			user.GET("/me", userHandler.Me)
			user.GET("/profile", userHandler.MyProfile)
			user.PATCH("/profile", userHandler.UpdateMyProfile)
		}

		staff := api.Group("", authRequired, staffRequired)
		{
			staff.POST("/properties", propertyHandler.Create)
			staff.DELETE("/properties/:id", propertyHandler.Delete)
			staff.POST("/properties/:id/upload_images", propertyHandler.UploadImages)
			staff.GET("/admin/stats", adminHandler.Stats)
			staff.POST("/admin/cleanup/run", adminHandler.RunCleanup)
		}
	}

	return &testEnv{router: r, db: gdb, cache: cache, tokens: tokens, mail: mail, cfg: *cfg}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// registerUser creates an account via the API and returns the token pair.
func (e *testEnv) registerUser(t *testing.T, username, email, password string) (access, refresh string) {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/auth/register", gin.H{
		"username":         username,
		"email":            email,
		"password":         password,
		"confirm_password": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decodeJSON(t, w, &resp)
	return resp.Access, resp.Refresh
}

// promoteToStaff flips the staff flag directly in storage.
func (e *testEnv) promoteToStaff(t *testing.T, username string) {
	t.Helper()
	user, err := e.db.GetUserByUsername(username)
	require.NoError(t, err)
	user.IsStaff = true
	require.NoError(t, e.db.SaveUser(user))
}
