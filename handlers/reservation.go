package handlers

import (
	"errors"
	"log"
	"net/http"

	"parkwithease/models"
	"parkwithease/services"

	"github.com/gin-gonic/gin"
)

// BookInput 定義訂位請求的輸入結構體
type BookInput struct {
	LotID int `json:"lot_id" binding:"required,gt=0"`
}

// ReleaseInput 定義離場請求的輸入結構體
type ReleaseInput struct {
	SpotID int `json:"spot_id" binding:"required,gt=0"`
}

// BookSpot 訂下停車場中第一個可用車位
func BookSpot(c *gin.Context) {
	var input BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供停車場 ID", "ERR_INVALID_INPUT")
		return
	}

	currentUserID, exists := c.Get("user_id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "user_id not found in token", "ERR_NO_USER_ID")
		return
	}

	currentUserIDInt, ok := currentUserID.(int)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "invalid user_id type", "ERR_INVALID_USER_ID")
		return
	}

	reservation, err := services.BookSpot(input.LotID, currentUserIDInt)
	if err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_NOT_FOUND")
			return
		}
		if errors.Is(err, services.ErrNoAvailableSpot) {
			ErrorResponse(c, http.StatusUnprocessableEntity, "沒有可用車位", err.Error(), "ERR_NO_AVAILABLE_SPOT")
			return
		}
		log.Printf("Failed to book spot in lot %d for user %d: %v", input.LotID, currentUserIDInt, err)
		ErrorResponse(c, http.StatusInternalServerError, "訂位失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "訂位成功", reservation.ToSimpleResponse())
}

// ReleaseSpot 離場結算
func ReleaseSpot(c *gin.Context) {
	var input ReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供車位 ID", "ERR_INVALID_INPUT")
		return
	}

	currentUserID, exists := c.Get("user_id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "user_id not found in token", "ERR_NO_USER_ID")
		return
	}

	currentUserIDInt, ok := currentUserID.(int)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "invalid user_id type", "ERR_INVALID_USER_ID")
		return
	}

	result, err := services.ReleaseSpot(input.SpotID, currentUserIDInt)
	if err != nil {
		if errors.Is(err, services.ErrSpotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "車位不存在", err.Error(), "ERR_NOT_FOUND")
			return
		}
		if errors.Is(err, services.ErrNoActiveReservation) {
			ErrorResponse(c, http.StatusUnprocessableEntity, "沒有進行中的預約", err.Error(), "ERR_NO_ACTIVE_RESERVATION")
			return
		}
		log.Printf("Failed to release spot %d for user %d: %v", input.SpotID, currentUserIDInt, err)
		ErrorResponse(c, http.StatusInternalServerError, "離場結算失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "離場結算成功", result)
}

// GetMyReservations 查詢自己的預約紀錄
func GetMyReservations(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "user_id not found in token", "ERR_NO_USER_ID")
		return
	}

	currentUserIDInt, ok := currentUserID.(int)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "未授權", "invalid user_id type", "ERR_INVALID_USER_ID")
		return
	}

	reservations, err := services.GetUserReservations(currentUserIDInt)
	if err != nil {
		log.Printf("Failed to get reservations for user %d: %v", currentUserIDInt, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢預約紀錄失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", toReservationResponses(reservations))
}

// toReservationResponses 轉換為回應格式，已結束的預約附上停留時間與費用
func toReservationResponses(reservations []models.Reservation) []models.ReservationResponse {
	responses := make([]models.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		r := &reservations[i]
		if r.LeavingTimestamp == nil {
			responses = append(responses, r.ToResponse(nil, nil))
			continue
		}

		durationMinutes, cost, err := services.CalculateCost(r.ParkingTimestamp, *r.LeavingTimestamp, r.PricePerUnit)
		if err != nil {
			log.Printf("Failed to compute cost for reservation %d: %v", r.ReservationID, err)
			responses = append(responses, r.ToResponse(nil, nil))
			continue
		}
		responses = append(responses, r.ToResponse(&durationMinutes, &cost))
	}
	return responses
}
