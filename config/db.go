package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"hotel-frontdesk/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SeedDatabase creates a demo hotel with a handful of rooms on an empty
// database.
func SeedDatabase(db *gorm.DB) error {
	var hotelCount int64
	if err := db.Model(&models.HotelInfo{}).Count(&hotelCount).Error; err != nil {
		return err
	}
	if hotelCount > 0 {
		log.Println("Hotels already seeded")
		return nil
	}

	hotel := models.HotelInfo{
		Name:    "Front Desk Demo Hotel",
		Address: "1 Riverside Road",
		Phone:   "+84 28 0000 0000",
		Email:   "frontdesk@hotel.local",
	}
	if err := db.Create(&hotel).Error; err != nil {
		return fmt.Errorf("seed hotel: %w", err)
	}

	firstHour := 60000.0
	rooms := []models.Room{
		{RoomNumber: "101", RoomType: "Standard", RateTable: models.RateTable{HourlyRate: 50000, DailyRate: 300000, NightlyRate: 250000}},
		{RoomNumber: "102", RoomType: "Standard", RateTable: models.RateTable{HourlyRate: 50000, DailyRate: 300000, NightlyRate: 250000}},
		{RoomNumber: "201", RoomType: "Superior", RateTable: models.RateTable{HourlyRate: 70000, DailyRate: 450000, NightlyRate: 350000, FirstHourRate: &firstHour}},
		{RoomNumber: "301", RoomType: "Deluxe", RateTable: models.RateTable{HourlyRate: 90000, DailyRate: 600000, NightlyRate: 480000}},
	}
	for i := range rooms {
		rooms[i].HotelID = hotel.ID
		rooms[i].Status = models.RoomAvailable
	}
	if err := db.Create(&rooms).Error; err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}

	log.Println("Hotel and rooms seeded")
	return nil
}

// Migrate creates or updates the local-mode tables in parent->child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.HotelInfo{},
		&models.Room{},
		&models.Event{},
		&models.RoomStatusLog{},
		&models.InvoiceData{},
	)
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode())
	return dsn, dbName, nil
}

// resolveMySQLDSN prefers MYSQL_URL, then DATABASE_URL, then the DB_* parts.
func resolveMySQLDSN() (string, string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, strings.TrimSpace(os.Getenv("DB_NAME")), nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_frontdesk")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	)
	return dsn, dbName, nil
}

func ConnectDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	dsn, dbName, err := resolveMySQLDSN()
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}
	log.Printf("connected to mysql database %q", dbName)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.Seed {
		if err := SeedDatabase(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}
