package handlers

import (
	"errors"
	"net/http"

	"kvadrat-backend/internal/auth"
	"kvadrat-backend/internal/database"
	"kvadrat-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves the current-user endpoints and the user/profile
// admin lists.
type UserHandler struct {
	db *database.GormDB
}

// NewUserHandler creates a user handler.
func NewUserHandler(db *database.GormDB) *UserHandler {
	return &UserHandler{db: db}
}

// Me handles GET /api/user/me.
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, auth.CurrentUser(c))
}

// MyProfile handles GET /api/user/profile. The profile is created on
// first access when missing.
func (h *UserHandler) MyProfile(c *gin.Context) {
	user := auth.CurrentUser(c)
	profile, err := h.db.EnsureProfile(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type profilePatch struct {
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Avatar    *string `json:"avatar"`
	Position  *string `json:"position" binding:"omitempty,max=100"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// UpdateMyProfile handles PATCH /api/user/profile. Name fields update the
// user record, the rest the profile.
func (h *UserHandler) UpdateMyProfile(c *gin.Context) {
	user := auth.CurrentUser(c)
	profile, err := h.db.EnsureProfile(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var patch profilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	if patch.Phone != nil {
		profile.Phone = *patch.Phone
	}
	if patch.Avatar != nil {
		profile.Avatar = patch.Avatar
	}
	if patch.Position != nil {
		profile.Position = *patch.Position
	}
	if err := h.db.SaveProfile(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if patch.FirstName != nil || patch.LastName != nil {
		if patch.FirstName != nil {
			user.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			user.LastName = *patch.LastName
		}
		if err := h.db.SaveUser(user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	updated, err := h.db.GetProfileByID(profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListUsers handles GET /api/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.db.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	user, err := h.db.GetUserByID(id)
	if err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

type userPatch struct {
	FirstName   *string `json:"first_name" binding:"omitempty,max=150"`
	LastName    *string `json:"last_name" binding:"omitempty,max=150"`
	Email       *string `json:"email" binding:"omitempty,email"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UpdateUser handles PATCH /api/users/:id.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	user, err := h.db.GetUserByID(id)
	if err != nil {
		notFound(c)
		return
	}

	var patch userPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.IsStaff != nil {
		user.IsStaff = *patch.IsStaff
	}
	if patch.IsSuperuser != nil {
		user.IsSuperuser = *patch.IsSuperuser
	}

	if err := h.db.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id. The profile goes with the
// user.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.db.DeleteUser(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProfiles handles GET /api/profiles.
func (h *UserHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.db.ListProfiles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	c.JSON(http.StatusOK, profiles)
}

// GetProfile handles GET /api/profiles/:id.
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	profile, err := h.db.GetProfileByID(id)
	if err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/profiles/:id.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	profile, err := h.db.GetProfileByID(id)
	if err != nil {
		notFound(c)
		return
	}

	var patch profilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	if patch.Phone != nil {
		profile.Phone = *patch.Phone
	}
	if patch.Avatar != nil {
		profile.Avatar = patch.Avatar
	}
	if patch.Position != nil {
		profile.Position = *patch.Position
	}
	if err := h.db.SaveProfile(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.db.GetProfileByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}
