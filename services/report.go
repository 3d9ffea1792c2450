package services

import (
	"fmt"
	"log"
	"parkwithease/database"
	"parkwithease/models"

	"gorm.io/gorm"
)

// AdminSummary 管理員儀表板彙總，純查詢，不持有狀態
type AdminSummary struct {
	TotalLots      int64                       `json:"total_lots"`
	TotalSpots     int64                       `json:"total_spots"`
	TotalOccupied  int64                       `json:"total_occupied"`
	TotalAvailable int64                       `json:"total_available"`
	Lots           []models.ParkingLotResponse `json:"lots"`
	Users          []models.UserResponse       `json:"users"`
	ChartLabels    []string                    `json:"chart_labels"`
	ChartData      []float64                   `json:"chart_data"`
}

// UserSummary 使用者儀表板彙總
type UserSummary struct {
	Lots         []models.ParkingLotResponse  `json:"lots"`
	Reservations []models.ReservationResponse `json:"reservations"`
	Completed    int                          `json:"completed"`
	Ongoing      int                          `json:"ongoing"`
	ChartLabels  []string                     `json:"chart_labels"`
	ChartData    []float64                    `json:"chart_data"`
}

// GetAdminSummary 彙總全站停車場佔用情況與每位使用者最近一次結帳金額
func GetAdminSummary() (*AdminSummary, error) {
	summary := &AdminSummary{
		Lots:        []models.ParkingLotResponse{},
		Users:       []models.UserResponse{},
		ChartLabels: []string{},
		ChartData:   []float64{},
	}

	lots, err := GetAllLots()
	if err != nil {
		return nil, err
	}
	summary.TotalLots = int64(len(lots))

	if err := database.DB.Model(&models.ParkingSpot{}).Count(&summary.TotalSpots).Error; err != nil {
		return nil, fmt.Errorf("failed to count spots: %w", err)
	}
	if err := database.DB.Model(&models.ParkingSpot{}).
		Where("status = ?", models.SpotOccupied).
		Count(&summary.TotalOccupied).Error; err != nil {
		return nil, fmt.Errorf("failed to count occupied spots: %w", err)
	}
	summary.TotalAvailable = summary.TotalSpots - summary.TotalOccupied

	// 每個停車場的佔用統計
	for i := range lots {
		total, occupied, err := CountLotSpots(lots[i].LotID)
		if err != nil {
			return nil, err
		}
		summary.Lots = append(summary.Lots, lots[i].ToResponse(int(total), int(occupied)))
	}

	users, err := GetAllUsers()
	if err != nil {
		return nil, err
	}

	// 圖表資料：每位使用者最近一次已結束預約的費用
	for i := range users {
		summary.Users = append(summary.Users, users[i].ToResponse())

		var latest models.Reservation
		if err := database.DB.
			Where("user_id = ?", users[i].UserID).
			Order("parking_timestamp DESC").
			First(&latest).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, fmt.Errorf("failed to fetch latest reservation for user %d: %w", users[i].UserID, err)
		}
		if latest.LeavingTimestamp == nil {
			continue
		}

		_, cost, err := CalculateCost(latest.ParkingTimestamp, *latest.LeavingTimestamp, latest.PricePerUnit)
		if err != nil {
			log.Printf("Skipping chart entry for user %d: %v", users[i].UserID, err)
			continue
		}
		summary.ChartLabels = append(summary.ChartLabels, users[i].Username)
		summary.ChartData = append(summary.ChartData, cost)
	}

	return summary, nil
}

// GetUserSummary 彙總使用者可見的停車場剩餘車位與自己的預約歷史
func GetUserSummary(userID int) (*UserSummary, error) {
	summary := &UserSummary{
		Lots:         []models.ParkingLotResponse{},
		Reservations: []models.ReservationResponse{},
		ChartLabels:  []string{},
		ChartData:    []float64{},
	}

	lots, err := GetAllLots()
	if err != nil {
		return nil, err
	}
	for i := range lots {
		total, occupied, err := CountLotSpots(lots[i].LotID)
		if err != nil {
			return nil, err
		}
		summary.Lots = append(summary.Lots, lots[i].ToResponse(int(total), int(occupied)))
	}

	reservations, err := GetUserReservations(userID)
	if err != nil {
		return nil, err
	}

	for i := range reservations {
		r := &reservations[i]
		if r.LeavingTimestamp == nil {
			summary.Ongoing++
			summary.Reservations = append(summary.Reservations, r.ToResponse(nil, nil))
			continue
		}

		summary.Completed++
		durationMinutes, cost, err := CalculateCost(r.ParkingTimestamp, *r.LeavingTimestamp, r.PricePerUnit)
		if err != nil {
			log.Printf("Skipping settled reservation %d in summary: %v", r.ReservationID, err)
			continue
		}
		summary.Reservations = append(summary.Reservations, r.ToResponse(&durationMinutes, &cost))
		summary.ChartLabels = append(summary.ChartLabels, fmt.Sprintf("Booking #%d", r.ReservationID))
		summary.ChartData = append(summary.ChartData, cost)
	}

	return summary, nil
}
