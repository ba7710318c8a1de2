package database

import (
	"errors"

	"kvadrat-backend/internal/models"

	"gorm.io/gorm"
)

// ErrCategoryCycle is returned when saving a category whose parent chain
// would reach the category itself.
var ErrCategoryCycle = errors.New("category parent chain forms a cycle")

// SaveCategory creates or updates a category after checking the parent
// chain stays acyclic.
func (gdb *GormDB) SaveCategory(c *models.Category) error {
	if c.ParentID != nil {
		if c.ID != 0 && *c.ParentID == c.ID {
			return ErrCategoryCycle
		}
		seen := map[uint]bool{}
		if c.ID != 0 {
			seen[c.ID] = true
		}
		cursor := *c.ParentID
		for {
			if seen[cursor] {
				return ErrCategoryCycle
			}
			seen[cursor] = true
			var parent models.Category
			if err := gdb.db.First(&parent, cursor).Error; err != nil {
				return err
			}
			if parent.ParentID == nil {
				break
			}
			cursor = *parent.ParentID
		}
	}
	return gdb.db.Save(c).Error
}

// ListCategories returns all categories.
func (gdb *GormDB) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := gdb.db.Order("id ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryByID retrieves a category.
func (gdb *GormDB) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := gdb.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category and every descendant category.
// Properties referencing any deleted category keep their rows with a
// nulled category reference.
func (gdb *GormDB) DeleteCategory(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var root models.Category
		if err := tx.First(&root, id).Error; err != nil {
			return err
		}

		// Collect the subtree breadth-first
		doomed := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var children []models.Category
			if err := tx.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
				return err
			}
			frontier = frontier[:0]
			for _, child := range children {
				doomed = append(doomed, child.ID)
				frontier = append(frontier, child.ID)
			}
		}

		if err := tx.Model(&models.Property{}).
			Where("category_id IN ?", doomed).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", doomed).Delete(&models.Category{}).Error
	})
}

// SaveAmenity creates or updates an amenity.
func (gdb *GormDB) SaveAmenity(a *models.Amenity) error {
	return gdb.db.Save(a).Error
}

// ListAmenities returns all amenities.
func (gdb *GormDB) ListAmenities() ([]models.Amenity, error) {
	var amenities []models.Amenity
	err := gdb.db.Order("id ASC").Find(&amenities).Error
	return amenities, err
}

// GetAmenityByID retrieves an amenity.
func (gdb *GormDB) GetAmenityByID(id uint) (*models.Amenity, error) {
	var amenity models.Amenity
	if err := gdb.db.First(&amenity, id).Error; err != nil {
		return nil, err
	}
	return &amenity, nil
}

// DeleteAmenity removes an amenity and its property memberships. Properties
// themselves are untouched.
func (gdb *GormDB) DeleteAmenity(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var amenity models.Amenity
		if err := tx.First(&amenity, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM property_amenities WHERE amenity_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&amenity).Error
	})
}

// SaveActivity creates or updates an activity.
func (gdb *GormDB) SaveActivity(a *models.Activity) error {
	return gdb.db.Save(a).Error
}

// ListActivities returns activities newest first.
func (gdb *GormDB) ListActivities() ([]models.Activity, error) {
	var activities []models.Activity
	err := gdb.db.Order("created_at DESC").Find(&activities).Error
	return activities, err
}

// GetActivityByID retrieves an activity.
func (gdb *GormDB) GetActivityByID(id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := gdb.db.First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// DeleteActivity removes an activity.
func (gdb *GormDB) DeleteActivity(id uint) error {
	res := gdb.db.Delete(&models.Activity{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveBanner creates or updates a banner.
func (gdb *GormDB) SaveBanner(b *models.Banner) error {
	return gdb.db.Save(b).Error
}

// ListBanners returns active banners newest first.
func (gdb *GormDB) ListBanners() ([]models.Banner, error) {
	var banners []models.Banner
	err := gdb.db.Where("is_active = ?", true).Order("created_at DESC").Find(&banners).Error
	return banners, err
}

// GetBannerByID retrieves a banner.
func (gdb *GormDB) GetBannerByID(id uint) (*models.Banner, error) {
	var banner models.Banner
	if err := gdb.db.First(&banner, id).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

// DeleteBanner removes a banner.
func (gdb *GormDB) DeleteBanner(id uint) error {
	res := gdb.db.Delete(&models.Banner{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
