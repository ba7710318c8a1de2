package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kvadrat-backend/internal/auth"
	"kvadrat-backend/internal/config"
	"kvadrat-backend/internal/database"
	"kvadrat-backend/internal/mailer"
	"kvadrat-backend/internal/models"
	"kvadrat-backend/internal/tokencache"

	"github.com/gin-gonic/gin"
)

const (
	resetTokenKeyPrefix   = "password_reset_"
	revokedTokenKeyPrefix = "refresh_revoked_"
)

// AuthHandler serves registration, login, token lifecycle and password
// recovery.
type AuthHandler struct {
	db     *database.GormDB
	tokens *auth.TokenManager
	cache  tokencache.Store
	mail   mailer.Mailer
	cfg    config.Config
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(db *database.GormDB, tokens *auth.TokenManager, cache tokencache.Store, mail mailer.Mailer, cfg config.Config) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, cache: cache, mail: mail, cfg: cfg}
}

type registerForm struct {
	Username        string `json:"username" binding:"required,min=4,max=150"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// Register handles POST /api/auth/register. On success the user is created
// with an empty profile and logged in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
	}
	if err := h.db.CreateUser(&user); err != nil {
		switch {
		case errors.Is(err, database.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"username": "A user with that username already exists."})
		case errors.Is(err, database.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"email": "A user with that email already exists."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	pair, err := h.tokens.IssuePair(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
		"refresh": pair.Refresh,
		"access":  pair.Access,
	})
}

type loginForm struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login. The login field is treated as an
// email when it contains "@", otherwise as a username. Failures are always
// the same generic 400.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	var user *models.User
	var err error
	if strings.Contains(form.Login, "@") {
		user, err = h.db.GetUserByEmail(form.Login)
	} else {
		user, err = h.db.GetUserByUsername(form.Login)
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, form.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid credentials."})
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"refresh": pair.Refresh,
		"access":  pair.Access,
	})
}

type refreshForm struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Logout handles POST /api/auth/logout. The refresh token's jti is marked
// revoked until the token would have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	var form refreshForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	claims, err := h.tokens.ParseRefresh(form.Refresh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Token is invalid or expired."})
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Token is invalid or expired."})
		return
	}
	if err := h.cache.Set(c.Request.Context(), revokedTokenKeyPrefix+claims.ID, "1", ttl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusResetContent)
}

// Refresh handles POST /api/auth/token/refresh. A revoked or expired
// refresh token is rejected; otherwise a fresh pair is issued.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var form refreshForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	claims, err := h.tokens.ParseRefresh(form.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired."})
		return
	}
	revoked, err := h.cache.Exists(c.Request.Context(), revokedTokenKeyPrefix+claims.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired."})
		return
	}

	id, err := auth.UserID(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired."})
		return
	}
	user, err := h.db.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "User not found."})
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pair)
}

type forgotPasswordForm struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword handles POST /api/auth/forgot-password. A single-use
// reset token with a one hour lifetime is cached and mailed. Mail delivery
// is best effort.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var form forgotPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.db.GetUserByEmail(form.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"email": "User with this email does not exist."})
		return
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.cache.Set(c.Request.Context(), resetTokenKeyPrefix+token,
		strconv.FormatUint(uint64(user.ID), 10), h.cfg.Auth.ResetTokenTTL()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resetURL := strings.TrimRight(h.cfg.Mail.ResetURL, "/") + "/" + token
	if err := h.mail.SendPasswordReset(user.Email, resetURL); err != nil {
		log.Printf("[auth] reset mail to %s not sent: %v", user.Email, err)
	}

	body := gin.H{"message": "Password reset link has been sent to your email"}
	if h.cfg.Mail.DevExposeToken {
		body["token"] = token
	}
	c.JSON(http.StatusOK, body)
}

type resetPasswordForm struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// ResetPassword handles POST /api/auth/reset-password. The token is
// consumed on first use even when the subsequent update fails.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var form resetPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	value, err := h.cache.GetDel(c.Request.Context(), resetTokenKeyPrefix+form.Token)
	if err != nil {
		if errors.Is(err, tokencache.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"token": "Invalid or expired token."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.UserID(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"token": "Invalid or expired token."})
		return
	}

	hash, err := auth.HashPassword(form.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.UpdatePasswordHash(userID, hash); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"token": "Invalid or expired token."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}

type changePasswordForm struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// ChangePassword handles POST /api/auth/change-password for the
// authenticated caller.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	var form changePasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, form.OldPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"old_password": "Wrong password."})
		return
	}

	hash, err := auth.HashPassword(form.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.UpdatePasswordHash(user.ID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
