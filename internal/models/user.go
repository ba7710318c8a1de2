package models

import "time"

// User is an account that can authenticate against the API.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150)" json:"last_name"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	DateJoined   time.Time `gorm:"not null;autoCreateTime" json:"date_joined"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
