package query

import (
	"path/filepath"
	"testing"
	"time"

	"kvadrat-backend/internal/database"
	"kvadrat-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *database.GormDB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gdb := database.NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())
	t.Cleanup(func() { gdb.Close() })
	return gdb
}

func seed(t *testing.T, gdb *database.GormDB) (parking, balcony models.Amenity) {
	t.Helper()

	parking = models.Amenity{Name: "parking"}
	balcony = models.Amenity{Name: "balcony"}
	require.NoError(t, gdb.SaveAmenity(&parking))
	require.NoError(t, gdb.SaveAmenity(&balcony))

	properties := []struct {
		p         models.Property
		amenities []uint
	}{
		{models.Property{Title: "Downtown loft", Description: "Bright loft near the square", Address: "Chuy 1",
			Price: 95000, Area: 70, PropertyType: models.PropertyTypeApartment, Rooms: 2, IsActive: true},
			[]uint{parking.ID, balcony.ID}},
		{models.Property{Title: "Country house", Description: "Quiet place", Address: "Issyk-Kul road 7",
			Price: 150000, Area: 160, PropertyType: models.PropertyTypeHouse, Rooms: 4, IsActive: true},
			[]uint{parking.ID}},
		{models.Property{Title: "Inactive loft", Description: "Also a loft", Address: "Chuy 2",
			Price: 90000, Area: 65, PropertyType: models.PropertyTypeApartment, Rooms: 2, IsActive: false},
			nil},
	}
	for i := range properties {
		require.NoError(t, gdb.CreatePropertyWithImages(&properties[i].p, properties[i].amenities, nil))
	}
	return parking, balcony
}

func TestFindConjunctionOfPresentClauses(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)

	got, err := Find(gdb.DB(), Criteria{
		PropertyType: "apartment",
		MinPrice:     90000,
		MaxPrice:     100000,
		Rooms:        2,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Downtown loft", got[0].Title)

	// Tightening one bound empties the result
	got, err = Find(gdb.DB(), Criteria{PropertyType: "apartment", MinPrice: 96000})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindZeroValuesMeanAbsent(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)

	// Empty criteria match every active listing
	got, err := Find(gdb.DB(), Criteria{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindAmenityMembershipDeduplicates(t *testing.T) {
	gdb := openTestDB(t)
	parking, balcony := seed(t, gdb)

	// Matching two amenities of the same property must not duplicate it
	got, err := Find(gdb.DB(), Criteria{AmenityIDs: []uint{parking.ID, balcony.ID}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := map[uint]int{}
	for _, p := range got {
		ids[p.ID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "property %d returned more than once", id)
	}

	got, err = Find(gdb.DB(), Criteria{AmenityIDs: []uint{balcony.ID}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Downtown loft", got[0].Title)
}

func TestFindSearchExcludesInactive(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)

	got, err := Find(gdb.DB(), Criteria{Query: "loft"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Downtown loft", got[0].Title)

	// Case-insensitive and matched across description and address too
	got, err = Find(gdb.DB(), Criteria{Query: "ISSYK"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Country house", got[0].Title)
}

func TestFindOrderedNewestFirst(t *testing.T) {
	gdb := openTestDB(t)

	older := models.Property{Title: "Older", Address: "A", Price: 1, Area: 1,
		PropertyType: models.PropertyTypeLand, IsActive: true}
	require.NoError(t, gdb.CreatePropertyWithImages(&older, nil, nil))
	require.NoError(t, gdb.DB().Model(&older).
		UpdateColumn("created_at", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).Error)

	newer := models.Property{Title: "Newer", Address: "B", Price: 1, Area: 1,
		PropertyType: models.PropertyTypeLand, IsActive: true}
	require.NoError(t, gdb.CreatePropertyWithImages(&newer, nil, nil))

	got, err := Find(gdb.DB(), Criteria{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Newer", got[0].Title)
	assert.Equal(t, "Older", got[1].Title)
}
