package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kvadrat-backend/internal/database"
	"kvadrat-backend/internal/models"
	"kvadrat-backend/internal/query"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PropertyHandler exposes property CRUD, image upload and the
// filter/search endpoints.
type PropertyHandler struct {
	db        *database.GormDB
	mediaRoot string
}

// NewPropertyHandler creates a property handler storing uploads under
// mediaRoot.
func NewPropertyHandler(db *database.GormDB, mediaRoot string) *PropertyHandler {
	return &PropertyHandler{db: db, mediaRoot: mediaRoot}
}

// propertyForm is the create/full-update payload. It binds from JSON or
// multipart form fields.
type propertyForm struct {
	Title            string   `json:"title" form:"title" binding:"required,max=255"`
	Description      string   `json:"description" form:"description"`
	Price            *float64 `json:"price" form:"price" binding:"required,gte=0"`
	Area             *float64 `json:"area" form:"area" binding:"required,gte=0"`
	Address          string   `json:"address" form:"address" binding:"required,max=500"`
	PropertyType     string   `json:"property_type" form:"property_type" binding:"required,oneof=apartment house villa commercial land office"`
	Rooms            *int     `json:"rooms" form:"rooms" binding:"omitempty,gte=0"`
	Bathrooms        *int     `json:"bathrooms" form:"bathrooms" binding:"omitempty,gte=0"`
	Bedrooms         *int     `json:"bedrooms" form:"bedrooms" binding:"omitempty,gte=0"`
	KitchenArea      *float64 `json:"kitchen_area" form:"kitchen_area" binding:"omitempty,gte=0"`
	ConstructionYear *int     `json:"construction_year" form:"construction_year"`
	Garage           *bool    `json:"garage" form:"garage"`
	GarageSpaces     *int     `json:"garage_spaces" form:"garage_spaces" binding:"omitempty,gte=0"`
	CategoryID       *uint    `json:"category_id" form:"category_id"`
	Amenities        []uint   `json:"amenities" form:"amenities"`
	IsActive         *bool    `json:"is_active" form:"is_active"`
	IsFeatured       *bool    `json:"is_featured" form:"is_featured"`
}

func (f *propertyForm) apply(p *models.Property) {
	p.Title = f.Title
	p.Description = f.Description
	p.Price = *f.Price
	p.Area = *f.Area
	p.Address = f.Address
	p.PropertyType = models.PropertyType(f.PropertyType)
	p.Rooms = 1
	if f.Rooms != nil {
		p.Rooms = *f.Rooms
	}
	p.Bathrooms = 1
	if f.Bathrooms != nil {
		p.Bathrooms = *f.Bathrooms
	}
	p.Bedrooms = 1
	if f.Bedrooms != nil {
		p.Bedrooms = *f.Bedrooms
	}
	p.KitchenArea = f.KitchenArea
	p.ConstructionYear = f.ConstructionYear
	if f.Garage != nil {
		p.Garage = *f.Garage
	}
	if f.GarageSpaces != nil {
		p.GarageSpaces = *f.GarageSpaces
	}
	p.CategoryID = f.CategoryID
	p.IsActive = true
	if f.IsActive != nil {
		p.IsActive = *f.IsActive
	}
	if f.IsFeatured != nil {
		p.IsFeatured = *f.IsFeatured
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindPropertyForm binds JSON or multipart and returns any uploaded image
// files in submission order.
func (h *PropertyHandler) bindPropertyForm(c *gin.Context, form *propertyForm) ([]*multipart.FileHeader, error) {
	if !isMultipart(c) {
		return nil, c.ShouldBindJSON(form)
	}
	if err := c.ShouldBind(form); err != nil {
		return nil, err
	}
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return mf.File["images"], nil
}

// saveImages writes uploaded files under mediaRoot/properties/YYYY/MM/DD
// and returns the stored relative paths in order.
func (h *PropertyHandler) saveImages(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	datePath := time.Now().Format("2006/01/02")
	var paths []string
	for _, file := range files {
		rel := filepath.ToSlash(filepath.Join("properties", datePath,
			fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename))))
		dst := filepath.Join(h.mediaRoot, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, err
		}
		if err := c.SaveUploadedFile(file, dst); err != nil {
			return nil, err
		}
		paths = append(paths, rel)
	}
	return paths, nil
}

// List handles GET /api/properties with the optional filter fields,
// free-text search and ordering of the public list endpoint.
func (h *PropertyHandler) List(c *gin.Context) {
	params := database.PropertyListParams{
		PropertyType: c.Query("property_type"),
		Search:       c.Query("search"),
		OrderBy:      c.Query("ordering"),
	}
	if v := c.Query("rooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Rooms = n
		}
	}
	if v := c.Query("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Bedrooms = n
		}
	}
	if v := c.Query("garage"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			params.Garage = &b
		}
	}
	if v := c.Query("category"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			params.CategoryID = uint(n)
		}
	}
	if v := c.Query("is_featured"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			params.IsFeatured = &b
		}
	}

	properties, err := h.db.ListProperties(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if properties == nil {
		properties = []models.Property{}
	}
	c.JSON(http.StatusOK, properties)
}

// Retrieve handles GET /api/properties/:id.
func (h *PropertyHandler) Retrieve(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	property, err := h.db.GetPropertyByID(id)
	if err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, property)
}

// Create handles POST /api/properties. A multipart request may carry an
// ordered images[] list; the first image becomes the main one. The
// property and all initial images persist atomically.
func (h *PropertyHandler) Create(c *gin.Context) {
	var form propertyForm
	files, err := h.bindPropertyForm(c, &form)
	if err != nil {
		badRequest(c, err)
		return
	}

	paths, err := h.saveImages(c, files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var property models.Property
	form.apply(&property)

	if err := h.db.CreatePropertyWithImages(&property, form.Amenities, paths); err != nil {
		if errors.Is(err, database.ErrUnknownAmenity) {
			c.JSON(http.StatusBadRequest, gin.H{"amenities": "Unknown amenity id."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.db.GetPropertyByID(property.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/properties/:id (full update).
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	property, err := h.db.GetPropertyByID(id)
	if err != nil {
		notFound(c)
		return
	}

	var form propertyForm
	if _, err := h.bindPropertyForm(c, &form); err != nil {
		badRequest(c, err)
		return
	}

	form.apply(property)
	amenities := form.Amenities
	if amenities == nil {
		amenities = []uint{}
	}
	if err := h.db.UpdateProperty(property, amenities); err != nil {
		if errors.Is(err, database.ErrUnknownAmenity) {
			c.JSON(http.StatusBadRequest, gin.H{"amenities": "Unknown amenity id."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.db.GetPropertyByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// propertyPatch is the partial-update payload: only present fields change.
type propertyPatch struct {
	Title            *string  `json:"title" binding:"omitempty,max=255"`
	Description      *string  `json:"description"`
	Price            *float64 `json:"price" binding:"omitempty,gte=0"`
	Area             *float64 `json:"area" binding:"omitempty,gte=0"`
	Address          *string  `json:"address" binding:"omitempty,max=500"`
	PropertyType     *string  `json:"property_type" binding:"omitempty,oneof=apartment house villa commercial land office"`
	Rooms            *int     `json:"rooms" binding:"omitempty,gte=0"`
	Bathrooms        *int     `json:"bathrooms" binding:"omitempty,gte=0"`
	Bedrooms         *int     `json:"bedrooms" binding:"omitempty,gte=0"`
	KitchenArea      *float64 `json:"kitchen_area" binding:"omitempty,gte=0"`
	ConstructionYear *int     `json:"construction_year"`
	Garage           *bool    `json:"garage"`
	GarageSpaces     *int     `json:"garage_spaces" binding:"omitempty,gte=0"`
	CategoryID       *uint    `json:"category_id"`
	Amenities        []uint   `json:"amenities"`
	IsActive         *bool    `json:"is_active"`
	IsFeatured       *bool    `json:"is_featured"`
}

// PartialUpdate handles PATCH /api/properties/:id.
func (h *PropertyHandler) PartialUpdate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	property, err := h.db.GetPropertyByID(id)
	if err != nil {
		notFound(c)
		return
	}

	var patch propertyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	if patch.Title != nil {
		property.Title = *patch.Title
	}
	if patch.Description != nil {
		property.Description = *patch.Description
	}
	if patch.Price != nil {
		property.Price = *patch.Price
	}
	if patch.Area != nil {
		property.Area = *patch.Area
	}
	if patch.Address != nil {
		property.Address = *patch.Address
	}
	if patch.PropertyType != nil {
		property.PropertyType = models.PropertyType(*patch.PropertyType)
	}
	if patch.Rooms != nil {
		property.Rooms = *patch.Rooms
	}
	if patch.Bathrooms != nil {
		property.Bathrooms = *patch.Bathrooms
	}
	if patch.Bedrooms != nil {
		property.Bedrooms = *patch.Bedrooms
	}
	if patch.KitchenArea != nil {
		property.KitchenArea = patch.KitchenArea
	}
	if patch.ConstructionYear != nil {
		property.ConstructionYear = patch.ConstructionYear
	}
	if patch.Garage != nil {
		property.Garage = *patch.Garage
	}
	if patch.GarageSpaces != nil {
		property.GarageSpaces = *patch.GarageSpaces
	}
	if patch.CategoryID != nil {
		property.CategoryID = patch.CategoryID
	}
	if patch.IsActive != nil {
		property.IsActive = *patch.IsActive
	}
	if patch.IsFeatured != nil {
		property.IsFeatured = *patch.IsFeatured
	}

	if err := h.db.UpdateProperty(property, patch.Amenities); err != nil {
		if errors.Is(err, database.ErrUnknownAmenity) {
			c.JSON(http.StatusBadRequest, gin.H{"amenities": "Unknown amenity id."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.db.GetPropertyByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/properties/:id. Images cascade.
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.db.DeleteProperty(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImages handles POST /api/properties/:id/upload_images. Appended
// images never affect the existing main-image flag.
func (h *PropertyHandler) UploadImages(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, err := h.db.GetPropertyByID(id); err != nil {
		notFound(c)
		return
	}

	mf, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"images": "Multipart form required."})
		return
	}
	// An empty images list is not an error: nothing is appended and the
	// existing main image stays untouched.
	files := mf.File["images"]

	paths, err := h.saveImages(c, files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.db.AppendImages(id, paths); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[images] property_id=%d images_len=%d saved", id, len(paths))

	c.JSON(http.StatusCreated, gin.H{"status": "Images uploaded"})
}

// Featured handles GET /api/properties/featured.
func (h *PropertyHandler) Featured(c *gin.Context) {
	properties, err := h.db.FeaturedProperties()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if properties == nil {
		properties = []models.Property{}
	}
	c.JSON(http.StatusOK, properties)
}

// Filter handles POST /api/properties/filter: the structured criteria
// body from §4.2. Malformed numeric input is a field-keyed 400, never a
// silent skip.
func (h *PropertyHandler) Filter(c *gin.Context) {
	var criteria struct {
		PropertyType string  `json:"property_type" binding:"omitempty,oneof=apartment house villa commercial land office"`
		MinPrice     float64 `json:"min_price" binding:"omitempty,gte=0"`
		MaxPrice     float64 `json:"max_price" binding:"omitempty,gte=0"`
		MinArea      float64 `json:"min_area" binding:"omitempty,gte=0"`
		MaxArea      float64 `json:"max_area" binding:"omitempty,gte=0"`
		Rooms        int     `json:"rooms" binding:"omitempty,gte=0"`
		Bathrooms    int     `json:"bathrooms" binding:"omitempty,gte=0"`
		Bedrooms     int     `json:"bedrooms" binding:"omitempty,gte=0"`
		Amenities    []uint  `json:"amenities"`
	}
	if err := c.ShouldBindJSON(&criteria); err != nil {
		badRequest(c, err)
		return
	}

	properties, err := query.Find(h.db.DB(), query.Criteria{
		PropertyType: criteria.PropertyType,
		MinPrice:     criteria.MinPrice,
		MaxPrice:     criteria.MaxPrice,
		MinArea:      criteria.MinArea,
		MaxArea:      criteria.MaxArea,
		Rooms:        criteria.Rooms,
		Bathrooms:    criteria.Bathrooms,
		Bedrooms:     criteria.Bedrooms,
		AmenityIDs:   criteria.Amenities,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if properties == nil {
		properties = []models.Property{}
	}
	c.JSON(http.StatusOK, properties)
}

// Search handles GET /api/properties/search with q, property_type and
// price bounds.
func (h *PropertyHandler) Search(c *gin.Context) {
	criteria := query.Criteria{
		Query: c.Query("q"),
	}

	if v := c.Query("property_type"); v != "" {
		if !models.PropertyType(v).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"property_type": "Select a valid choice."})
			return
		}
		criteria.PropertyType = v
	}
	if v := c.Query("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"min_price": "A valid number is required."})
			return
		}
		criteria.MinPrice = price
	}
	if v := c.Query("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"max_price": "A valid number is required."})
			return
		}
		criteria.MaxPrice = price
	}

	properties, err := query.Find(h.db.DB(), criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if properties == nil {
		properties = []models.Property{}
	}
	c.JSON(http.StatusOK, properties)
}
