package services

import (
	"fmt"
	"testing"
	"time"

	"parkwithease/database"
	"parkwithease/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 以記憶體 sqlite 取代 MySQL，每個測試各自一份資料庫
// 限制單一連線，讓共享快取的記憶體資料庫行為可預期
func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("AES_KEY", "0123456789abcdef0123456789abcdef")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ParkingLot{},
		&models.ParkingSpot{},
		&models.Reservation{},
	))

	database.DB = db
	t.Cleanup(func() {
		sqlDB.Close()
	})
}

func newTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:      username,
		Password:      "passw0rd123",
		DOB:           time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC),
		VehicleNumber: "ABC-1234",
		Role:          "user",
	}
	require.NoError(t, RegisterUser(user))
	return user
}

func newTestLot(t *testing.T, name string, price float64, maxSpots int) *models.ParkingLot {
	t.Helper()
	lot := &models.ParkingLot{
		PrimeLocationName: name,
		Price:             price,
		Address:           "100 Harbor Road",
		PinCode:           "110001",
		MaxSpots:          maxSpots,
	}
	require.NoError(t, CreateLot(lot))
	return lot
}

func countReservations(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, database.DB.Model(&models.Reservation{}).Count(&n).Error)
	return n
}

func spotStatus(t *testing.T, spotID int) string {
	t.Helper()
	var spot models.ParkingSpot
	require.NoError(t, database.DB.First(&spot, spotID).Error)
	return spot.Status
}
