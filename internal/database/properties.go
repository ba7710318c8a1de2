package database

import (
	"errors"
	"fmt"

	"kvadrat-backend/internal/models"

	"gorm.io/gorm"
)

// ErrUnknownAmenity is returned when a referenced amenity id does not exist.
var ErrUnknownAmenity = errors.New("unknown amenity id")

// PropertyListParams are the optional list-endpoint filters for properties.
// Zero values are skipped.
type PropertyListParams struct {
	PropertyType string
	Rooms        int
	Bedrooms     int
	Garage       *bool
	CategoryID   uint
	IsFeatured   *bool
	Search       string
	OrderBy      string // price, -price, area, -area, created_at, -created_at
}

func propertyPreloads(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Category").
		Preload("Amenities").
		Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("is_main DESC, uploaded_at ASC")
		})
}

func resolveMainImages(properties []models.Property) {
	for i := range properties {
		properties[i].ResolveMainImage()
	}
}

// ListProperties returns active properties, optionally narrowed and ordered.
func (gdb *GormDB) ListProperties(params PropertyListParams) ([]models.Property, error) {
	tx := gdb.db.Model(&models.Property{}).Where("is_active = ?", true)

	if params.PropertyType != "" {
		tx = tx.Where("property_type = ?", params.PropertyType)
	}
	if params.Rooms > 0 {
		tx = tx.Where("rooms = ?", params.Rooms)
	}
	if params.Bedrooms > 0 {
		tx = tx.Where("bedrooms = ?", params.Bedrooms)
	}
	if params.Garage != nil {
		tx = tx.Where("garage = ?", *params.Garage)
	}
	if params.CategoryID > 0 {
		tx = tx.Where("category_id = ?", params.CategoryID)
	}
	if params.IsFeatured != nil {
		tx = tx.Where("is_featured = ?", *params.IsFeatured)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		tx = tx.Where("LOWER(title) LIKE LOWER(?) OR LOWER(address) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)",
			pattern, pattern, pattern)
	}

	// Whitelisted ordering, newest first by default
	var orderClause string
	switch params.OrderBy {
	case "price":
		orderClause = "price ASC"
	case "-price":
		orderClause = "price DESC"
	case "area":
		orderClause = "area ASC"
	case "-area":
		orderClause = "area DESC"
	case "created_at":
		orderClause = "created_at ASC"
	default:
		orderClause = "created_at DESC"
	}

	var properties []models.Property
	err := propertyPreloads(tx).Order(orderClause).Find(&properties).Error
	if err != nil {
		return nil, err
	}
	resolveMainImages(properties)
	return properties, nil
}

// FeaturedProperties returns active listings flagged as featured.
func (gdb *GormDB) FeaturedProperties() ([]models.Property, error) {
	var properties []models.Property
	err := propertyPreloads(
		gdb.db.Model(&models.Property{}).
			Where("is_active = ? AND is_featured = ?", true, true),
	).Order("created_at DESC").Find(&properties).Error
	if err != nil {
		return nil, err
	}
	resolveMainImages(properties)
	return properties, nil
}

// GetPropertyByID retrieves a property with its relations embedded.
func (gdb *GormDB) GetPropertyByID(id uint) (*models.Property, error) {
	var property models.Property
	err := propertyPreloads(gdb.db).First(&property, id).Error
	if err != nil {
		return nil, err
	}
	property.ResolveMainImage()
	return &property, nil
}

// CreatePropertyWithImages persists a property, its amenity memberships and
// its initial images in one transaction. The first image becomes main.
func (gdb *GormDB) CreatePropertyWithImages(p *models.Property, amenityIDs []uint, imagePaths []string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		if len(amenityIDs) > 0 {
			var amenities []models.Amenity
			if err := tx.Where("id IN ?", amenityIDs).Find(&amenities).Error; err != nil {
				return err
			}
			if len(amenities) != len(amenityIDs) {
				return fmt.Errorf("%w in %v", ErrUnknownAmenity, amenityIDs)
			}
			if err := tx.Model(p).Association("Amenities").Replace(amenities); err != nil {
				return err
			}
		}

		for i, path := range imagePaths {
			image := models.PropertyImage{
				PropertyID: p.ID,
				Image:      path,
				IsMain:     i == 0,
			}
			if err := tx.Create(&image).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateProperty saves changed fields and replaces amenity memberships when
// amenityIDs is non-nil.
func (gdb *GormDB) UpdateProperty(p *models.Property, amenityIDs []uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		// Relations are managed explicitly below, never via Save
		if err := tx.Omit("Category", "Amenities", "Images").Save(p).Error; err != nil {
			return err
		}
		if amenityIDs != nil {
			var amenities []models.Amenity
			if len(amenityIDs) > 0 {
				if err := tx.Where("id IN ?", amenityIDs).Find(&amenities).Error; err != nil {
					return err
				}
				if len(amenities) != len(amenityIDs) {
					return fmt.Errorf("%w in %v", ErrUnknownAmenity, amenityIDs)
				}
			}
			if err := tx.Model(p).Association("Amenities").Replace(amenities); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendImages adds images to an existing property without touching the
// main-image flag of earlier uploads.
func (gdb *GormDB) AppendImages(propertyID uint, imagePaths []string) ([]models.PropertyImage, error) {
	var created []models.PropertyImage
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, propertyID).Error; err != nil {
			return err
		}
		for _, path := range imagePaths {
			image := models.PropertyImage{
				PropertyID: propertyID,
				Image:      path,
				IsMain:     false,
			}
			if err := tx.Create(&image).Error; err != nil {
				return err
			}
			created = append(created, image)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteProperty removes a property, its images and its amenity links.
func (gdb *GormDB) DeleteProperty(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, id).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&property).Association("Amenities").Clear(); err != nil {
			return err
		}
		return tx.Delete(&property).Error
	})
}
