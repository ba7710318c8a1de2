// Package query builds the property filter predicate. Every optional
// criterion becomes one clause; present clauses are folded into a single
// AND conjunction anchored on is_active = true.
package query

import (
	"kvadrat-backend/internal/models"

	"gorm.io/gorm"
)

// Criteria holds the optional filter/search inputs. Zero values mean
// "not provided": an empty string or a 0 bound never contributes a clause.
type Criteria struct {
	PropertyType string  `json:"property_type"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	MinArea      float64 `json:"min_area"`
	MaxArea      float64 `json:"max_area"`
	Rooms        int     `json:"rooms"`
	Bathrooms    int     `json:"bathrooms"`
	Bedrooms     int     `json:"bedrooms"`
	AmenityIDs   []uint  `json:"amenities"`
	Query        string  `json:"q"`
}

// clause is one predicate fragment applied to a query chain.
type clause interface {
	apply(tx *gorm.DB) *gorm.DB
}

// equality matches a column exactly.
type equality struct {
	column string
	value  interface{}
}

func (c equality) apply(tx *gorm.DB) *gorm.DB {
	return tx.Where(c.column+" = ?", c.value)
}

// bound is an inclusive range endpoint.
type bound struct {
	column string
	op     string // ">=" or "<="
	value  float64
}

func (c bound) apply(tx *gorm.DB) *gorm.DB {
	return tx.Where(c.column+" "+c.op+" ?", c.value)
}

// substring is a case-insensitive OR match across several text columns.
type substring struct {
	columns []string
	term    string
}

func (c substring) apply(tx *gorm.DB) *gorm.DB {
	pattern := "%" + c.term + "%"
	cond := ""
	args := make([]interface{}, 0, len(c.columns))
	for i, col := range c.columns {
		if i > 0 {
			cond += " OR "
		}
		cond += "LOWER(" + col + ") LIKE LOWER(?)"
		args = append(args, pattern)
	}
	return tx.Where(cond, args...)
}

// membership requires at least one matching amenity link. The join can
// duplicate rows, so the caller must deduplicate by property identity.
type membership struct {
	amenityIDs []uint
}

func (c membership) apply(tx *gorm.DB) *gorm.DB {
	return tx.
		Joins("JOIN property_amenities ON property_amenities.property_id = properties.id").
		Where("property_amenities.amenity_id IN ?", c.amenityIDs)
}

// clauses assembles the present criteria in a fixed order.
func (c Criteria) clauses() []clause {
	var out []clause
	if c.PropertyType != "" {
		out = append(out, equality{"properties.property_type", c.PropertyType})
	}
	if c.MinPrice != 0 {
		out = append(out, bound{"properties.price", ">=", c.MinPrice})
	}
	if c.MaxPrice != 0 {
		out = append(out, bound{"properties.price", "<=", c.MaxPrice})
	}
	if c.MinArea != 0 {
		out = append(out, bound{"properties.area", ">=", c.MinArea})
	}
	if c.MaxArea != 0 {
		out = append(out, bound{"properties.area", "<=", c.MaxArea})
	}
	if c.Rooms != 0 {
		out = append(out, equality{"properties.rooms", c.Rooms})
	}
	if c.Bathrooms != 0 {
		out = append(out, equality{"properties.bathrooms", c.Bathrooms})
	}
	if c.Bedrooms != 0 {
		out = append(out, equality{"properties.bedrooms", c.Bedrooms})
	}
	if len(c.AmenityIDs) > 0 {
		out = append(out, membership{c.AmenityIDs})
	}
	if c.Query != "" {
		out = append(out, substring{
			columns: []string{"properties.title", "properties.description", "properties.address"},
			term:    c.Query,
		})
	}
	return out
}

// Apply folds the present clauses onto tx. Public queries always require
// an active listing.
func (c Criteria) Apply(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(&models.Property{}).Where("properties.is_active = ?", true)
	for _, cl := range c.clauses() {
		tx = cl.apply(tx)
	}
	if len(c.AmenityIDs) > 0 {
		tx = tx.Distinct("properties.*")
	}
	return tx
}

// Find runs the composed predicate and returns the full matching set,
// newest first, with category, amenities and images embedded.
func Find(db *gorm.DB, c Criteria) ([]models.Property, error) {
	var properties []models.Property
	tx := c.Apply(db).
		Preload("Category").
		Preload("Amenities").
		Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("is_main DESC, uploaded_at ASC")
		}).
		Order("properties.created_at DESC")

	if err := tx.Find(&properties).Error; err != nil {
		return nil, err
	}
	for i := range properties {
		properties[i].ResolveMainImage()
	}
	return properties, nil
}
