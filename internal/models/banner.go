package models

import "time"

// Banner is a promotional banner shown on the public site.
type Banner struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:varchar(500);not null" json:"image"`
	Link        string    `gorm:"type:varchar(500)" json:"link"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (Banner) TableName() string {
	return "banners"
}
