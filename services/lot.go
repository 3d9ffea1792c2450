package services

import (
	"errors"
	"fmt"
	"log"
	"parkwithease/database"
	"parkwithease/models"

	"gorm.io/gorm"
)

// CreateLot 創建停車場，並依照 max_spots 一次建立相同數量的可用車位
func CreateLot(lot *models.ParkingLot) error {
	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Panic occurred during lot creation: %v", r)
		}
	}()

	if err := tx.Create(lot).Error; err != nil {
		tx.Rollback()
		log.Printf("Failed to create parking lot: %v", err)
		return fmt.Errorf("failed to create parking lot: %w", err)
	}

	// 車位數量必須恰好等於宣告的容量
	for i := 0; i < lot.MaxSpots; i++ {
		spot := models.ParkingSpot{LotID: lot.LotID, Status: models.SpotAvailable}
		if err := tx.Create(&spot).Error; err != nil {
			tx.Rollback()
			log.Printf("Failed to create spot %d/%d for lot %d: %v", i+1, lot.MaxSpots, lot.LotID, err)
			return fmt.Errorf("failed to create spots for lot %d: %w", lot.LotID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit lot creation: %w", err)
	}

	log.Printf("Successfully created parking lot %d with %d spots", lot.LotID, lot.MaxSpots)
	return nil
}

// GetLotByID 查詢特定停車場
func GetLotByID(id int) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		log.Printf("Failed to get parking lot by ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to get parking lot by ID %d: %w", id, err)
	}
	return &lot, nil
}

// GetAllLots 查詢所有停車場
func GetAllLots() ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	if err := database.DB.Find(&lots).Error; err != nil {
		log.Printf("Failed to query all parking lots: %v", err)
		return nil, fmt.Errorf("failed to query all parking lots: %w", err)
	}
	return lots, nil
}

// CountLotSpots 統計停車場的車位總數與佔用數
func CountLotSpots(lotID int) (total int64, occupied int64, err error) {
	if err = database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lotID).
		Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count spots for lot %d: %w", lotID, err)
	}
	if err = database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, models.SpotOccupied).
		Count(&occupied).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count occupied spots for lot %d: %w", lotID, err)
	}
	return total, occupied, nil
}

// UpdateLot 更新停車場資訊
// max_spots 調大時補建差額的可用車位；調小只改宣告值，既有車位不會被移除
func UpdateLot(id int, req models.UpdateParkingLotRequest) error {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLotNotFound
		}
		return fmt.Errorf("failed to find parking lot %d: %w", id, err)
	}

	mappedFields := make(map[string]interface{})
	if req.PrimeLocationName != nil {
		mappedFields["prime_location_name"] = *req.PrimeLocationName
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return fmt.Errorf("price must be positive")
		}
		mappedFields["price"] = *req.Price
	}
	if req.Address != nil {
		mappedFields["address"] = *req.Address
	}
	if req.PinCode != nil {
		mappedFields["pin_code"] = *req.PinCode
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Panic occurred during lot update: %v", r)
		}
	}()

	if req.MaxSpots != nil {
		if *req.MaxSpots <= 0 {
			tx.Rollback()
			return fmt.Errorf("max_spots must be positive")
		}

		var currentSpots int64
		if err := tx.Model(&models.ParkingSpot{}).
			Where("lot_id = ?", id).
			Count(&currentSpots).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to count spots for lot %d: %w", id, err)
		}

		if int64(*req.MaxSpots) > currentSpots {
			for i := currentSpots; i < int64(*req.MaxSpots); i++ {
				spot := models.ParkingSpot{LotID: id, Status: models.SpotAvailable}
				if err := tx.Create(&spot).Error; err != nil {
					tx.Rollback()
					log.Printf("Failed to create additional spot for lot %d: %v", id, err)
					return fmt.Errorf("failed to create additional spots for lot %d: %w", id, err)
				}
			}
			log.Printf("Added %d spots to lot %d", int64(*req.MaxSpots)-currentSpots, id)
		}
		mappedFields["max_spots"] = *req.MaxSpots
	}

	if len(mappedFields) == 0 {
		tx.Rollback()
		return fmt.Errorf("no valid fields to update")
	}

	if err := tx.Model(&lot).Updates(mappedFields).Error; err != nil {
		tx.Rollback()
		log.Printf("Failed to update parking lot %d: %v", id, err)
		return fmt.Errorf("failed to update parking lot %d: %w", id, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit lot update: %w", err)
	}

	log.Printf("Successfully updated parking lot %d", id)
	return nil
}

// DeleteLot 刪除停車場
// 只要有任何車位佔用中即拒絕；否則連同車位與歷史預約一併刪除
func DeleteLot(id int) error {
	var lot models.ParkingLot
	if err := database.DB.First(&lot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLotNotFound
		}
		return fmt.Errorf("failed to find parking lot %d: %w", id, err)
	}

	var occupied int64
	if err := database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", id, models.SpotOccupied).
		Count(&occupied).Error; err != nil {
		return fmt.Errorf("failed to count occupied spots for lot %d: %w", id, err)
	}
	if occupied > 0 {
		log.Printf("Refusing to delete lot %d: %d spots still occupied", id, occupied)
		return ErrLotHasActiveReservations
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Panic occurred during lot deletion: %v", r)
		}
	}()

	if err := tx.Where("spot_id IN (?)",
		tx.Model(&models.ParkingSpot{}).Select("spot_id").Where("lot_id = ?", id),
	).Delete(&models.Reservation{}).Error; err != nil {
		tx.Rollback()
		log.Printf("Failed to delete reservations for lot %d: %v", id, err)
		return fmt.Errorf("failed to delete reservations for lot %d: %w", id, err)
	}

	if err := tx.Where("lot_id = ?", id).Delete(&models.ParkingSpot{}).Error; err != nil {
		tx.Rollback()
		log.Printf("Failed to delete spots for lot %d: %v", id, err)
		return fmt.Errorf("failed to delete spots for lot %d: %w", id, err)
	}

	if err := tx.Delete(&lot).Error; err != nil {
		tx.Rollback()
		log.Printf("Failed to delete parking lot %d: %v", id, err)
		return fmt.Errorf("failed to delete parking lot %d: %w", id, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit lot deletion: %w", err)
	}

	log.Printf("Successfully deleted parking lot %d", id)
	return nil
}

// GetLotStatus 查詢停車場每個車位的狀態，佔用中的附上當前預約與使用者
func GetLotStatus(lotID int) ([]models.SpotStatusResponse, error) {
	if _, err := GetLotByID(lotID); err != nil {
		return nil, err
	}

	var spots []models.ParkingSpot
	if err := database.DB.
		Where("lot_id = ?", lotID).
		Order("spot_id ASC").
		Find(&spots).Error; err != nil {
		log.Printf("Failed to fetch spots for lot %d: %v", lotID, err)
		return nil, fmt.Errorf("failed to fetch spots for lot %d: %w", lotID, err)
	}

	details := make([]models.SpotStatusResponse, 0, len(spots))
	for _, spot := range spots {
		detail := models.SpotStatusResponse{SpotID: spot.SpotID, Status: spot.Status}

		if spot.Status == models.SpotOccupied {
			var reservation models.Reservation
			if err := database.DB.
				Where("spot_id = ? AND leaving_timestamp IS NULL", spot.SpotID).
				Order("parking_timestamp DESC").
				First(&reservation).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("failed to fetch reservation for spot %d: %w", spot.SpotID, err)
				}
			} else {
				simple := reservation.ToSimpleResponse()
				detail.Reservation = &simple

				user, err := GetUserByID(reservation.UserID)
				if err != nil {
					return nil, err
				}
				if user != nil {
					response := user.ToResponse()
					detail.User = &response
				}
			}
		}

		details = append(details, detail)
	}

	return details, nil
}
