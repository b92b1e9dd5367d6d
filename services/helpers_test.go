package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-frontdesk/config"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	db     *gorm.DB
	hotel  models.HotelInfo
	rooms  []models.Room
	local  *LocalBackend
	byName map[string]uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	hotel := models.HotelInfo{Name: "Sea View", Address: "1 Beach Rd", Phone: "028"}
	require.NoError(t, db.Create(&hotel).Error)

	rooms := []models.Room{
		{HotelID: hotel.ID, RoomNumber: "101", RoomType: "Standard", Status: models.RoomAvailable,
			RateTable: models.RateTable{HourlyRate: 50000, DailyRate: 300000, NightlyRate: 250000}},
		{HotelID: hotel.ID, RoomNumber: "102", RoomType: "Standard", Status: models.RoomAvailable,
			RateTable: models.RateTable{HourlyRate: 50000, DailyRate: 300000, NightlyRate: 250000}},
		{HotelID: hotel.ID, RoomNumber: "201", RoomType: "Deluxe", Status: models.RoomAvailable,
			RateTable: models.RateTable{HourlyRate: 90000, DailyRate: 600000, NightlyRate: 480000}},
	}
	require.NoError(t, db.Create(&rooms).Error)

	byName := make(map[string]uint, len(rooms))
	for _, r := range rooms {
		byName[r.RoomNumber] = r.ID
	}

	return &fixture{
		db:     db,
		hotel:  hotel,
		rooms:  rooms,
		local:  NewLocalBackend(db, utils.SMTPConfig{}),
		byName: byName,
	}
}

// clock is a settable time source for tests.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Set(t time.Time)         { c.t = t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, time.UTC)
}
