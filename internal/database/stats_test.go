package database

import (
	"testing"

	"kvadrat-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAdminStats(t *testing.T) {
	gdb := openTestDB(t)

	seed := []models.Property{
		{Title: "A", Address: "A", Price: 100, Area: 10, PropertyType: models.PropertyTypeApartment, IsActive: true},
		{Title: "B", Address: "B", Price: 200, Area: 20, PropertyType: models.PropertyTypeApartment, IsActive: true, IsFeatured: true},
		{Title: "C", Address: "C", Price: 300, Area: 30, PropertyType: models.PropertyTypeHouse, IsActive: false},
	}
	for i := range seed {
		require.NoError(t, gdb.CreatePropertyWithImages(&seed[i], nil, nil))
	}
	require.NoError(t, gdb.SaveActivity(&models.Activity{Title: "News", Content: "Body"}))
	require.NoError(t, gdb.SaveBanner(&models.Banner{Title: "Promo", Image: "banners/p.jpg", IsActive: true}))
	require.NoError(t, gdb.CreateUser(&models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x"}))

	stats, err := gdb.GetAdminStats()
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalProperties)
	assert.EqualValues(t, 2, stats.ActiveProperties)
	assert.EqualValues(t, 1, stats.FeaturedProperties)
	assert.EqualValues(t, 1, stats.TotalActivities)
	assert.EqualValues(t, 1, stats.TotalBanners)
	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.InDelta(t, 600, stats.TotalValue, 0.001)

	require.Len(t, stats.PropertiesByType, 2)
	assert.Equal(t, "apartment", stats.PropertiesByType[0].PropertyType)
	assert.EqualValues(t, 2, stats.PropertiesByType[0].Count)
	assert.Equal(t, "house", stats.PropertiesByType[1].PropertyType)
	assert.EqualValues(t, 1, stats.PropertiesByType[1].Count)
}

func TestGetAdminStatsEmptyDatabase(t *testing.T) {
	gdb := openTestDB(t)

	stats, err := gdb.GetAdminStats()
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalProperties)
	assert.Zero(t, stats.TotalValue)
	assert.Empty(t, stats.PropertiesByType)
}
