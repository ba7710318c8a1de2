package models

import "time"

// PropertyImage represents an image associated with a property
type PropertyImage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	Image      string    `gorm:"type:varchar(500);not null" json:"image"`
	IsMain     bool      `gorm:"not null;default:false" json:"is_main"`
	UploadedAt time.Time `gorm:"not null;autoCreateTime" json:"uploaded_at"`
}

// TableName specifies the table name for PropertyImage
func (PropertyImage) TableName() string {
	return "property_images"
}
