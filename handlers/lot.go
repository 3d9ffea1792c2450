package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"parkwithease/models"
	"parkwithease/services"

	"github.com/gin-gonic/gin"
)

// CreateLot 創建停車場資料檢查
func CreateLot(c *gin.Context) {
	var lot models.ParkingLot
	if err := c.ShouldBindJSON(&lot); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	if err := services.CreateLot(&lot); err != nil {
		log.Printf("Failed to create parking lot: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "創建停車場失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "停車場創建成功", lot.ToResponse(lot.MaxSpots, 0))
}

// UpdateLot 更新停車場資料檢查
func UpdateLot(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid lot ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	var req models.UpdateParkingLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	if err := services.UpdateLot(id, req); err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_NOT_FOUND")
			return
		}
		log.Printf("Failed to update parking lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "更新停車場失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	lot, err := services.GetLotByID(id)
	if err != nil {
		log.Printf("Failed to fetch updated lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "獲取更新後的停車場失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	total, occupied, err := services.CountLotSpots(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "獲取車位統計失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "更新成功", lot.ToResponse(int(total), int(occupied)))
}

// DeleteLot 刪除停車場資料檢查
func DeleteLot(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid lot ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	if err := services.DeleteLot(id); err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_NOT_FOUND")
			return
		}
		if errors.Is(err, services.ErrLotHasActiveReservations) {
			ErrorResponse(c, http.StatusConflict, "無法刪除仍有車輛停放的停車場", err.Error(), "ERR_LOT_OCCUPIED")
			return
		}
		log.Printf("Failed to delete parking lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "刪除停車場失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "刪除成功", nil)
}

// GetAllLots 查詢所有停車場資料檢查
func GetAllLots(c *gin.Context) {
	lots, err := services.GetAllLots()
	if err != nil {
		log.Printf("Failed to get all parking lots: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢停車場失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	lotResponses := make([]models.ParkingLotResponse, 0, len(lots))
	for i := range lots {
		total, occupied, err := services.CountLotSpots(lots[i].LotID)
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "獲取車位統計失敗", err.Error(), "ERR_INTERNAL")
			return
		}
		lotResponses = append(lotResponses, lots[i].ToResponse(int(total), int(occupied)))
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", lotResponses)
}

// GetLot 查詢特定停車場資料檢查
func GetLot(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid lot ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	lot, err := services.GetLotByID(id)
	if err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_NOT_FOUND")
			return
		}
		log.Printf("Failed to get parking lot %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢停車場失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	total, occupied, err := services.CountLotSpots(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "獲取車位統計失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", lot.ToResponse(int(total), int(occupied)))
}

// GetLotStatus 查詢停車場車位看板
func GetLotStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid lot ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的停車場ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	details, err := services.GetLotStatus(id)
	if err != nil {
		if errors.Is(err, services.ErrLotNotFound) {
			ErrorResponse(c, http.StatusNotFound, "停車場不存在", err.Error(), "ERR_NOT_FOUND")
			return
		}
		log.Printf("Failed to get lot status %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢車位狀態失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", details)
}
