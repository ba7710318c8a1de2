package database

import (
	"kvadrat-backend/internal/models"
)

// TypeCount is one per-type property tally.
type TypeCount struct {
	PropertyType string `json:"property_type"`
	Count        int64  `json:"count"`
}

// AdminStats aggregates platform-wide counters for the admin dashboard.
type AdminStats struct {
	TotalProperties    int64       `json:"total_properties"`
	ActiveProperties   int64       `json:"active_properties"`
	FeaturedProperties int64       `json:"featured_properties"`
	TotalActivities    int64       `json:"total_activities"`
	TotalBanners       int64       `json:"total_banners"`
	TotalUsers         int64       `json:"total_users"`
	PropertiesByType   []TypeCount `json:"properties_by_type"`
	TotalValue         float64     `json:"total_value"`
}

// GetAdminStats computes the admin dashboard aggregation.
func (gdb *GormDB) GetAdminStats() (*AdminStats, error) {
	stats := &AdminStats{}

	if err := gdb.db.Model(&models.Property{}).Count(&stats.TotalProperties).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Model(&models.Property{}).Where("is_active = ?", true).Count(&stats.ActiveProperties).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Model(&models.Property{}).Where("is_featured = ?", true).Count(&stats.FeaturedProperties).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Model(&models.Activity{}).Count(&stats.TotalActivities).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Model(&models.Banner{}).Count(&stats.TotalBanners).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.Property{}).
		Select("property_type, count(*) as count").
		Group("property_type").
		Order("property_type ASC").
		Scan(&stats.PropertiesByType).Error; err != nil {
		return nil, err
	}

	var total *float64
	if err := gdb.db.Model(&models.Property{}).
		Select("SUM(price)").
		Scan(&total).Error; err != nil {
		return nil, err
	}
	if total != nil {
		stats.TotalValue = *total
	}

	return stats, nil
}
