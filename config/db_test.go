package config

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-frontdesk/models"
)

func TestMigrateAndSeed(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, SeedDatabase(db))
	require.NoError(t, SeedDatabase(db))

	var hotels []models.HotelInfo
	require.NoError(t, db.Find(&hotels).Error)
	require.Len(t, hotels, 1)

	var rooms []models.Room
	require.NoError(t, db.Where("hotel_id = ?", hotels[0].ID).Find(&rooms).Error)
	assert.Len(t, rooms, 4)
	for _, r := range rooms {
		assert.Equal(t, models.RoomAvailable, r.Status)
		assert.Positive(t, r.HourlyRate)
	}
}
