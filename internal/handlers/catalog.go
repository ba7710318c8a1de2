package handlers

import (
	"errors"
	"net/http"

	"kvadrat-backend/internal/database"
	"kvadrat-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogHandler serves categories, amenities, activities and banners.
type CatalogHandler struct {
	db *database.GormDB
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(db *database.GormDB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

type categoryForm struct {
	Name     string `json:"name" binding:"required,max=100"`
	ParentID *uint  `json:"parent"`
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.db.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /api/categories/:id.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	category, err := h.db.GetCategoryByID(id)
	if err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /api/categories.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var form categoryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	category := models.Category{Name: form.Name, ParentID: form.ParentID}
	if err := h.db.SaveCategory(&category); err != nil {
		h.categoryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/categories/:id. Reparenting is rejected
// when it would form a cycle.
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	category, err := h.db.GetCategoryByID(id)
	if err != nil {
		notFound(c)
		return
	}
	var form categoryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	category.Name = form.Name
	category.ParentID = form.ParentID
	if err := h.db.SaveCategory(category); err != nil {
		h.categoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) categoryError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrCategoryCycle) {
		c.JSON(http.StatusBadRequest, gin.H{"parent": "Category cannot be its own ancestor."})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// DeleteCategory handles DELETE /api/categories/:id. The whole subtree is
// removed and referencing properties keep no category.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.db.DeleteCategory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type amenityForm struct {
	Name string `json:"name" binding:"required,max=100"`
	Icon string `json:"icon" binding:"max=50"`
}

// ListAmenities handles GET /api/amenities.
func (h *CatalogHandler) ListAmenities(c *gin.Context) {
	amenities, err := h.db.ListAmenities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if amenities == nil {
		amenities = []models.Amenity{}
	}
	c.JSON(http.StatusOK, amenities)
}

// GetAmenity handles GET /api/amenities/:id.
func (h *CatalogHandler) GetAmenity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	amenity, err := h.db.GetAmenityByID(id)
	if err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, amenity)
}

// CreateAmenity handles POST /api/amenities.
func (h *CatalogHandler) CreateAmenity(c *gin.Context) {
	var form amenityForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	amenity := models.Amenity{Name: form.Name, Icon: form.Icon}
	if err := h.db.SaveAmenity(&amenity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, amenity)
}

// UpdateAmenity handles PUT /api/amenities/:id.
func (h *CatalogHandler) UpdateAmenity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	amenity, err := h.db.GetAmenityByID(id)
	if err != nil {
		notFound(c)
		return
	}
	var form amenityForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	amenity.Name = form.Name
	amenity.Icon = form.Icon
	if err := h.db.SaveAmenity(amenity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, amenity)
}

// DeleteAmenity handles DELETE /api/amenities/:id. Property links are
// removed, properties themselves survive.
func (h *CatalogHandler) DeleteAmenity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.db.DeleteAmenity(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type activityForm struct {
	Title   string  `json:"title" binding:"required,max=255"`
	Content string  `json:"content" binding:"required"`
	Image   *string `json:"image"`
}

// ListActivities handles GET /api/activities.
func (h *CatalogHandler) ListActivities(c *gin.Context) {
	activities, err := h.db.ListActivities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, activities)
}

// GetActivity handles GET /api/activities/:id.
func (h *CatalogHandler) GetActivity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	activity, err := h.db.GetActivityByID(id)
	if err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, activity)
}

// CreateActivity handles POST /api/activities.
func (h *CatalogHandler) CreateActivity(c *gin.Context) {
	var form activityForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	activity := models.Activity{Title: form.Title, Content: form.Content, Image: form.Image}
	if err := h.db.SaveActivity(&activity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// UpdateActivity handles PUT /api/activities/:id.
func (h *CatalogHandler) UpdateActivity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	activity, err := h.db.GetActivityByID(id)
	if err != nil {
		notFound(c)
		return
	}
	var form activityForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	activity.Title = form.Title
	activity.Content = form.Content
	activity.Image = form.Image
	if err := h.db.SaveActivity(activity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, activity)
}

// DeleteActivity handles DELETE /api/activities/:id.
func (h *CatalogHandler) DeleteActivity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.db.DeleteActivity(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type bannerForm struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"required,max=500"`
	Link        string `json:"link" binding:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// ListBanners handles GET /api/banners. Only active banners are returned.
func (h *CatalogHandler) ListBanners(c *gin.Context) {
	banners, err := h.db.ListBanners()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if banners == nil {
		banners = []models.Banner{}
	}
	c.JSON(http.StatusOK, banners)
}

// GetBanner handles GET /api/banners/:id.
func (h *CatalogHandler) GetBanner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	banner, err := h.db.GetBannerByID(id)
	if err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, banner)
}

// CreateBanner handles POST /api/banners.
func (h *CatalogHandler) CreateBanner(c *gin.Context) {
	var form bannerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	banner := models.Banner{
		Title:       form.Title,
		Description: form.Description,
		Image:       form.Image,
		Link:        form.Link,
		IsActive:    true,
	}
	if form.IsActive != nil {
		banner.IsActive = *form.IsActive
	}
	if err := h.db.SaveBanner(&banner); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, banner)
}

// UpdateBanner handles PUT /api/banners/:id.
func (h *CatalogHandler) UpdateBanner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	banner, err := h.db.GetBannerByID(id)
	if err != nil {
		notFound(c)
		return
	}
	var form bannerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	banner.Title = form.Title
	banner.Description = form.Description
	banner.Image = form.Image
	banner.Link = form.Link
	if form.IsActive != nil {
		banner.IsActive = *form.IsActive
	}
	if err := h.db.SaveBanner(banner); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, banner)
}

// DeleteBanner handles DELETE /api/banners/:id.
func (h *CatalogHandler) DeleteBanner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.db.DeleteBanner(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
