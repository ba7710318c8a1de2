package cleanup

import (
	"fmt"
	"log"
	"time"

	"kvadrat-backend/internal/models"

	"gorm.io/gorm"
)

// Service handles physical deletion of long-deactivated properties.
// Public listings already hide inactive rows; this reclaims storage after
// a retention window.
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Config holds configuration for cleanup operations
type Config struct {
	RetentionDays    int  // Days an inactive property is kept before deletion
	MaxDeletionCount int  // Maximum number of properties to delete in one run
	DryRun           bool // If true, only report what would be deleted
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	TargetCount       int       `json:"target_count"`
	DeletedCount      int       `json:"deleted_count"`
	ErrorCount        int       `json:"error_count"`
	DryRun            bool      `json:"dry_run"`
	ExecutedAt        time.Time `json:"executed_at"`
	DeletedProperties []uint    `json:"deleted_properties"`
	Errors            []string  `json:"errors,omitempty"`
}

// FindExpiredProperties finds inactive properties whose last update is
// older than retentionDays.
func (s *Service) FindExpiredProperties(retentionDays int) ([]models.Property, error) {
	var properties []models.Property

	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	err := s.db.Where("is_active = ? AND updated_at < ?", false, cutoffDate).
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired properties: %w", err)
	}

	return properties, nil
}

// Run physically deletes expired properties with their images and amenity
// links, writing a delete log entry per property.
func (s *Service) Run(config Config) (*Result, error) {
	result := &Result{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	expired, err := s.FindExpiredProperties(config.RetentionDays)
	if err != nil {
		return nil, err
	}
	if len(expired) > config.MaxDeletionCount {
		expired = expired[:config.MaxDeletionCount]
	}
	result.TargetCount = len(expired)

	if config.DryRun {
		for _, p := range expired {
			result.DeletedProperties = append(result.DeletedProperties, p.ID)
		}
		log.Printf("[cleanup] dry-run: %d properties eligible for deletion", result.TargetCount)
		return result, nil
	}

	for _, p := range expired {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("property_id = ?", p.ID).Delete(&models.PropertyImage{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM property_amenities WHERE property_id = ?", p.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Property{}, p.ID).Error; err != nil {
				return err
			}
			entry := models.DeleteLog{
				PropertyID: p.ID,
				Title:      p.Title,
				Reason:     models.DeleteReasonExpired,
			}
			return tx.Create(&entry).Error
		})
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("property %d: %v", p.ID, err))
			continue
		}
		result.DeletedCount++
		result.DeletedProperties = append(result.DeletedProperties, p.ID)
	}

	log.Printf("[cleanup] deleted %d/%d properties (errors: %d)",
		result.DeletedCount, result.TargetCount, result.ErrorCount)
	return result, nil
}

// GetRecentDeleteLogs returns the latest delete log entries.
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
