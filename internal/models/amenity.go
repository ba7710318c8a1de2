package models

// Amenity is a property feature such as "parking" or "balcony".
// Names are not required to be unique.
type Amenity struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
	Icon string `gorm:"type:varchar(50)" json:"icon"`
}

// TableName specifies the table name
func (Amenity) TableName() string {
	return "amenities"
}
