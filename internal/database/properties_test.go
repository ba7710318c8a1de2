package database

import (
	"testing"

	"kvadrat-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAmenities(t *testing.T, gdb *GormDB, names ...string) []models.Amenity {
	t.Helper()
	amenities := make([]models.Amenity, 0, len(names))
	for _, name := range names {
		a := models.Amenity{Name: name}
		require.NoError(t, gdb.SaveAmenity(&a))
		amenities = append(amenities, a)
	}
	return amenities
}

func TestCreatePropertyWithImagesFirstIsMain(t *testing.T) {
	gdb := openTestDB(t)

	property := models.Property{
		Title:        "Two-room flat in the center",
		Address:      "Chuy Avenue 120",
		Price:        85000,
		Area:         58,
		PropertyType: models.PropertyTypeApartment,
		IsActive:     true,
	}
	paths := []string{"properties/a.jpg", "properties/b.jpg", "properties/c.jpg"}
	require.NoError(t, gdb.CreatePropertyWithImages(&property, nil, paths))

	got, err := gdb.GetPropertyByID(property.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)

	mainCount := 0
	for _, img := range got.Images {
		if img.IsMain {
			mainCount++
			assert.Equal(t, "properties/a.jpg", img.Image)
		}
	}
	assert.Equal(t, 1, mainCount)
	require.NotNil(t, got.MainImage)
	assert.Equal(t, "properties/a.jpg", *got.MainImage)
}

func TestCreatePropertyRejectsUnknownAmenity(t *testing.T) {
	gdb := openTestDB(t)
	amenities := seedAmenities(t, gdb, "parking")

	property := models.Property{
		Title:        "House with garden",
		Address:      "Osh street 5",
		Price:        120000,
		Area:         140,
		PropertyType: models.PropertyTypeHouse,
		IsActive:     true,
	}
	err := gdb.CreatePropertyWithImages(&property, []uint{amenities[0].ID, 9999}, nil)
	require.Error(t, err)

	// Nothing persisted on failure
	var count int64
	require.NoError(t, gdb.DB().Model(&models.Property{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAppendImagesKeepsMainFlag(t *testing.T) {
	gdb := openTestDB(t)

	property := models.Property{
		Title:        "Studio",
		Address:      "Manas 10",
		Price:        40000,
		Area:         30,
		PropertyType: models.PropertyTypeApartment,
		IsActive:     true,
	}
	require.NoError(t, gdb.CreatePropertyWithImages(&property, nil, []string{"properties/main.jpg"}))

	created, err := gdb.AppendImages(property.ID, []string{"properties/extra1.jpg", "properties/extra2.jpg"})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, img := range created {
		assert.False(t, img.IsMain)
	}

	got, err := gdb.GetPropertyByID(property.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MainImage)
	assert.Equal(t, "properties/main.jpg", *got.MainImage)
	assert.Len(t, got.Images, 3)
}

func TestListPropertiesFiltersAndOrdering(t *testing.T) {
	gdb := openTestDB(t)

	seed := []models.Property{
		{Title: "Cheap flat", Address: "A", Price: 30000, Area: 40, PropertyType: models.PropertyTypeApartment, IsActive: true},
		{Title: "Pricey villa", Address: "B", Price: 500000, Area: 300, PropertyType: models.PropertyTypeVilla, IsActive: true, Garage: true},
		{Title: "Hidden office", Address: "C", Price: 90000, Area: 80, PropertyType: models.PropertyTypeOffice, IsActive: false},
	}
	for i := range seed {
		require.NoError(t, gdb.CreatePropertyWithImages(&seed[i], nil, nil))
	}

	// Inactive rows never show up
	all, err := gdb.ListProperties(PropertyListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Type filter
	villas, err := gdb.ListProperties(PropertyListParams{PropertyType: "villa"})
	require.NoError(t, err)
	require.Len(t, villas, 1)
	assert.Equal(t, "Pricey villa", villas[0].Title)

	// Garage filter
	garage := true
	withGarage, err := gdb.ListProperties(PropertyListParams{Garage: &garage})
	require.NoError(t, err)
	require.Len(t, withGarage, 1)
	assert.Equal(t, "Pricey villa", withGarage[0].Title)

	// Price ascending
	byPrice, err := gdb.ListProperties(PropertyListParams{OrderBy: "price"})
	require.NoError(t, err)
	require.Len(t, byPrice, 2)
	assert.Equal(t, "Cheap flat", byPrice[0].Title)

	// Unknown ordering falls back to newest first, not an error
	_, err = gdb.ListProperties(PropertyListParams{OrderBy: "password; DROP TABLE properties"})
	require.NoError(t, err)
}

func TestFeaturedProperties(t *testing.T) {
	gdb := openTestDB(t)

	seed := []models.Property{
		{Title: "Plain", Address: "A", Price: 1000, Area: 10, PropertyType: models.PropertyTypeLand, IsActive: true},
		{Title: "Featured", Address: "B", Price: 2000, Area: 20, PropertyType: models.PropertyTypeLand, IsActive: true, IsFeatured: true},
		{Title: "Featured but inactive", Address: "C", Price: 3000, Area: 30, PropertyType: models.PropertyTypeLand, IsActive: false, IsFeatured: true},
	}
	for i := range seed {
		require.NoError(t, gdb.CreatePropertyWithImages(&seed[i], nil, nil))
	}

	featured, err := gdb.FeaturedProperties()
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Featured", featured[0].Title)
}

func TestUpdatePropertyReplacesAmenities(t *testing.T) {
	gdb := openTestDB(t)
	amenities := seedAmenities(t, gdb, "parking", "balcony", "elevator")

	property := models.Property{
		Title:        "Flat",
		Address:      "D",
		Price:        50000,
		Area:         45,
		PropertyType: models.PropertyTypeApartment,
		IsActive:     true,
	}
	require.NoError(t, gdb.CreatePropertyWithImages(&property, []uint{amenities[0].ID, amenities[1].ID}, nil))

	// nil leaves memberships alone
	property.Price = 52000
	require.NoError(t, gdb.UpdateProperty(&property, nil))
	got, err := gdb.GetPropertyByID(property.ID)
	require.NoError(t, err)
	assert.Len(t, got.Amenities, 2)

	// non-nil replaces the whole set
	require.NoError(t, gdb.UpdateProperty(&property, []uint{amenities[2].ID}))
	got, err = gdb.GetPropertyByID(property.ID)
	require.NoError(t, err)
	require.Len(t, got.Amenities, 1)
	assert.Equal(t, "elevator", got.Amenities[0].Name)

	// empty set clears
	require.NoError(t, gdb.UpdateProperty(&property, []uint{}))
	got, err = gdb.GetPropertyByID(property.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Amenities)
}

func TestDeletePropertyRemovesImagesAndLinks(t *testing.T) {
	gdb := openTestDB(t)
	amenities := seedAmenities(t, gdb, "parking")

	property := models.Property{
		Title:        "Doomed",
		Address:      "E",
		Price:        10000,
		Area:         25,
		PropertyType: models.PropertyTypeApartment,
		IsActive:     true,
	}
	require.NoError(t, gdb.CreatePropertyWithImages(&property, []uint{amenities[0].ID}, []string{"properties/x.jpg"}))

	require.NoError(t, gdb.DeleteProperty(property.ID))

	var imageCount, linkCount int64
	require.NoError(t, gdb.DB().Model(&models.PropertyImage{}).Count(&imageCount).Error)
	require.NoError(t, gdb.DB().Table("property_amenities").Count(&linkCount).Error)
	assert.EqualValues(t, 0, imageCount)
	assert.EqualValues(t, 0, linkCount)

	// Amenity itself survives
	_, err := gdb.GetAmenityByID(amenities[0].ID)
	assert.NoError(t, err)
}
