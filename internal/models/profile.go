package models

// Profile holds contact details for a user. It is created lazily on
// first access if missing.
type Profile struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint    `gorm:"uniqueIndex;not null" json:"-"`
	User     *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone    string  `gorm:"type:varchar(20)" json:"phone"`
	Avatar   *string `gorm:"type:varchar(500)" json:"avatar,omitempty"`
	Position string  `gorm:"type:varchar(100);not null;default:'Admin'" json:"position"`
}

// TableName specifies the table name
func (Profile) TableName() string {
	return "profiles"
}
