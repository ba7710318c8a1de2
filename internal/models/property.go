package models

import "time"

// PropertyType is the listing type enum.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeOffice     PropertyType = "office"
)

// PropertyTypes lists every valid property type.
var PropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeHouse,
	PropertyTypeVilla,
	PropertyTypeCommercial,
	PropertyTypeLand,
	PropertyTypeOffice,
}

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Property struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Address     string `gorm:"type:varchar(500);not null" json:"address"`

	// Filter attributes
	Price        float64      `gorm:"type:decimal(15,2);not null;index" json:"price"`
	Area         float64      `gorm:"type:decimal(10,2);not null;index" json:"area"`
	PropertyType PropertyType `gorm:"type:varchar(20);not null;index" json:"property_type"`
	Rooms        int          `gorm:"not null;default:1" json:"rooms"`
	Bathrooms    int          `gorm:"not null;default:1" json:"bathrooms"`
	Bedrooms     int          `gorm:"not null;default:1" json:"bedrooms"`

	KitchenArea      *float64 `gorm:"type:decimal(6,2)" json:"kitchen_area,omitempty"`
	ConstructionYear *int     `json:"construction_year,omitempty"`
	Garage           bool     `gorm:"not null;default:false" json:"garage"`
	GarageSpaces     int      `gorm:"not null;default:0" json:"garage_spaces"`

	// Relations
	CategoryID *uint           `gorm:"index" json:"category_id,omitempty"`
	Category   *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Amenities  []Amenity       `gorm:"many2many:property_amenities" json:"amenities"`
	Images     []PropertyImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`

	// Visibility (soft deactivation: inactive listings stay in storage)
	IsActive   bool `gorm:"not null;default:true;index" json:"is_active"`
	IsFeatured bool `gorm:"not null;default:false;index" json:"is_featured"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// MainImage is computed from Images on read, never stored.
	MainImage *string `gorm:"-" json:"main_image,omitempty"`
}

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// ResolveMainImage fills MainImage from the first image flagged as main.
func (p *Property) ResolveMainImage() {
	p.MainImage = nil
	for i := range p.Images {
		if p.Images[i].IsMain {
			p.MainImage = &p.Images[i].Image
			return
		}
	}
}
