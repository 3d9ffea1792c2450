package handlers

import (
	"log"
	"net/http"

	"parkwithease/services"

	"github.com/gin-gonic/gin"
)

// AdminDashboard 管理員儀表板
func AdminDashboard(c *gin.Context) {
	summary, err := services.GetAdminSummary()
	if err != nil {
		log.Printf("Failed to build admin summary: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢儀表板失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", summary)
}

// UserDashboard 使用者儀表板
func UserDashboard(c *gin.Context) {
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

	summary, err := services.GetUserSummary(currentUserIDInt)
	if err != nil {
		log.Printf("Failed to build user summary for user %d: %v", currentUserIDInt, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢儀表板失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", summary)
}
