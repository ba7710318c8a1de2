package models

// Category is a node in the listing category tree.
type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"type:varchar(100);not null" json:"name"`
	ParentID *uint     `gorm:"index" json:"parent,omitempty"`
	Parent   *Category `gorm:"foreignKey:ParentID" json:"-"`
}

// TableName specifies the table name
func (Category) TableName() string {
	return "categories"
}
