package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"parkwithease/database"
	"parkwithease/models"
	"time"

	"gorm.io/gorm"
)

// ReleaseResult 離場結算結果
type ReleaseResult struct {
	ReservationID   int     `json:"reservation_id"`
	SpotID          int     `json:"spot_id"`
	DurationMinutes float64 `json:"duration_minutes"`
	Cost            float64 `json:"cost"`
}

// CalculateCost 根據進場和離場時間計算停車費用
// 停留時間以分鐘計（含小數），費用 = 分鐘數 * 下訂時快照的每分鐘價格，
// 四捨五入（0.5 進位）到小數點後兩位
func CalculateCost(arrival, leaving time.Time, rate float64) (float64, float64, error) {
	if leaving.Before(arrival) {
		log.Printf("leaving_timestamp %v is before parking_timestamp %v", leaving, arrival)
		return 0, 0, fmt.Errorf("leaving_timestamp %v cannot be earlier than parking_timestamp %v", leaving, arrival)
	}
	if rate < 0 {
		return 0, 0, fmt.Errorf("invalid price_per_unit: %.2f", rate)
	}

	durationMinutes := leaving.Sub(arrival).Minutes()
	cost := math.Round(durationMinutes*rate*100) / 100
	return durationMinutes, cost, nil
}

// FindAvailableSpot 掃描停車場中第一個可用車位（spot_id 升冪），無可用時回傳 nil
// 純查詢，不改變任何狀態
func FindAvailableSpot(lotID int) (*models.ParkingSpot, error) {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to find parking lot %d: %w", lotID, err)
	}

	var spot models.ParkingSpot
	if err := database.DB.
		Where("lot_id = ? AND status = ?", lotID, models.SpotAvailable).
		Order("spot_id ASC").
		First(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan available spots for lot %d: %w", lotID, err)
	}

	return &spot, nil
}

// BookSpot 在指定停車場訂下第一個可用車位並開啟預約
// 「找到可用車位並標記佔用」必須是不可分割的一步：
// 以 status 條件式 UPDATE 做 compare-and-swap，整段包在同一個事務中，
// 搶輸的請求改試下一個車位，掃不到即回傳 ErrNoAvailableSpot
func BookSpot(lotID, userID int) (*models.Reservation, error) {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to find parking lot %d: %w", lotID, err)
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d not found", userID)
		}
		return nil, fmt.Errorf("failed to verify user %d: %w", userID, err)
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Panic occurred during booking: %v", r)
		}
	}()

	var tried []int
	for {
		query := tx.Where("lot_id = ? AND status = ?", lotID, models.SpotAvailable)
		if len(tried) > 0 {
			query = query.Where("spot_id NOT IN ?", tried)
		}

		var spot models.ParkingSpot
		if err := query.Order("spot_id ASC").First(&spot).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("No available spots in lot %d for user %d", lotID, userID)
				return nil, ErrNoAvailableSpot
			}
			return nil, fmt.Errorf("failed to scan available spots for lot %d: %w", lotID, err)
		}

		// compare-and-swap：只有 status 仍為 available 時翻轉才算數
		result := tx.Model(&models.ParkingSpot{}).
			Where("spot_id = ? AND status = ?", spot.SpotID, models.SpotAvailable).
			Update("status", models.SpotOccupied)
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to occupy spot %d: %w", spot.SpotID, result.Error)
		}
		if result.RowsAffected == 0 {
			// 被其他請求搶走了，換下一個車位
			tried = append(tried, spot.SpotID)
			continue
		}

		reservation := &models.Reservation{
			SpotID:           spot.SpotID,
			UserID:           userID,
			ParkingTimestamp: time.Now().UTC(),
			PricePerUnit:     lot.Price,
		}
		if err := tx.Create(reservation).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create reservation for spot %d: %w", spot.SpotID, err)
		}

		if err := tx.Commit().Error; err != nil {
			return nil, fmt.Errorf("failed to commit booking transaction: %w", err)
		}

		log.Printf("Successfully booked spot %d in lot %d for user %d (reservation %d, rate %.2f/min)",
			spot.SpotID, lotID, userID, reservation.ReservationID, reservation.PricePerUnit)
		return reservation, nil
	}
}

// ReleaseSpot 結束指定車位上該使用者的進行中預約並結算費用
// 關閉預約與釋放車位在同一個事務中完成
func ReleaseSpot(spotID, userID int) (*ReleaseResult, error) {
	var spot models.ParkingSpot
	if err := database.DB.First(&spot, spotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpotNotFound
		}
		return nil, fmt.Errorf("failed to find parking spot %d: %w", spotID, err)
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Panic occurred during release: %v", r)
		}
	}()

	var reservation models.Reservation
	if err := tx.
		Where("spot_id = ? AND user_id = ? AND leaving_timestamp IS NULL", spotID, userID).
		First(&reservation).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("No active reservation for spot %d and user %d", spotID, userID)
			return nil, ErrNoActiveReservation
		}
		return nil, fmt.Errorf("failed to find active reservation for spot %d: %w", spotID, err)
	}

	leaving := time.Now().UTC()
	durationMinutes, cost, err := CalculateCost(reservation.ParkingTimestamp, leaving, reservation.PricePerUnit)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to calculate cost for reservation %d: %w", reservation.ReservationID, err)
	}

	// 同樣以條件式 UPDATE 保證預約只會被關閉一次
	result := tx.Model(&models.Reservation{}).
		Where("reservation_id = ? AND leaving_timestamp IS NULL", reservation.ReservationID).
		Update("leaving_timestamp", leaving)
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to close reservation %d: %w", reservation.ReservationID, result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrNoActiveReservation
	}

	if err := tx.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", spotID).
		Update("status", models.SpotAvailable).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to free spot %d: %w", spotID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit release transaction: %w", err)
	}

	log.Printf("Successfully released spot %d for user %d: %.2f minutes, cost %.2f",
		spotID, userID, durationMinutes, cost)
	return &ReleaseResult{
		ReservationID:   reservation.ReservationID,
		SpotID:          spotID,
		DurationMinutes: durationMinutes,
		Cost:            cost,
	}, nil
}

// GetUserReservations 查詢使用者的預約紀錄，新到舊排序
func GetUserReservations(userID int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("parking_timestamp DESC").
		Find(&reservations).Error; err != nil {
		log.Printf("Failed to get reservations for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to get reservations for user %d: %w", userID, err)
	}

	log.Printf("Successfully retrieved %d reservations for user %d", len(reservations), userID)
	return reservations, nil
}

// SyncSpotStatus 校正車位狀態與進行中預約的對應關係
// 不變量：status 為 occupied 若且唯若存在恰好一筆未結束的預約
// 由排程每五分鐘執行一次，只修復漂移，不會開啟或結束任何預約
func SyncSpotStatus() error {
	var spots []models.ParkingSpot
	if err := database.DB.Find(&spots).Error; err != nil {
		return fmt.Errorf("failed to fetch parking spots: %w", err)
	}

	for _, spot := range spots {
		var openCount int64
		if err := database.DB.Model(&models.Reservation{}).
			Where("spot_id = ? AND leaving_timestamp IS NULL", spot.SpotID).
			Count(&openCount).Error; err != nil {
			log.Printf("Failed to count open reservations for spot %d: %v", spot.SpotID, err)
			continue
		}

		expected := models.SpotAvailable
		if openCount > 0 {
			expected = models.SpotOccupied
		}
		if openCount > 1 {
			log.Printf("Spot %d has %d open reservations, expected at most one", spot.SpotID, openCount)
		}

		if spot.Status != expected {
			if err := database.DB.Model(&models.ParkingSpot{}).
				Where("spot_id = ?", spot.SpotID).
				Update("status", expected).Error; err != nil {
				log.Printf("Failed to update status for spot %d: %v", spot.SpotID, err)
				continue
			}
			log.Printf("Corrected status for spot %d to %s", spot.SpotID, expected)
		}
	}

	return nil
}
