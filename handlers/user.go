package handlers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"parkwithease/models"
	"parkwithease/services"
	"parkwithease/utils"

	"github.com/gin-gonic/gin"
)

// 密碼驗證：最少 8 個字元，至少一個字母和一個數字
var passwordLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
var passwordDigitRegex = regexp.MustCompile(`[0-9]`)

// RegisterInput 定義註冊請求的輸入結構體
type RegisterInput struct {
	Username      string `json:"username" binding:"required,max=80"`
	Password      string `json:"password" binding:"required"`
	DOB           string `json:"dob" binding:"required"`
	VehicleNumber string `json:"vehicle_number" binding:"required,max=20"`
}

// RegisterUser 註冊使用者資料檢查
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	// 驗證密碼
	if len(input.Password) < 8 || !passwordLetterRegex.MatchString(input.Password) || !passwordDigitRegex.MatchString(input.Password) {
		ErrorResponse(c, http.StatusBadRequest, "密碼必須至少8個字符，包含字母和數字", "password must be at least 8 characters with letters and digits", "ERR_WEAK_PASSWORD")
		return
	}

	// 驗證出生日期
	dob, err := time.Parse("2006-01-02", input.DOB)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的出生日期格式", "dob must be in 'YYYY-MM-DD' format", "ERR_INVALID_DOB")
		return
	}

	user := models.User{
		Username:      input.Username,
		Password:      input.Password,
		DOB:           dob,
		VehicleNumber: input.VehicleNumber,
		Role:          "user", // 註冊一律為一般使用者，管理員由啟動時種子建立
	}

	if err := services.RegisterUser(&user); err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			ErrorResponse(c, http.StatusConflict, "該使用者名稱已被註冊", err.Error(), "ERR_DUPLICATE_USERNAME")
			return
		}
		log.Printf("Failed to register user %s: %v", input.Username, err)
		ErrorResponse(c, http.StatusInternalServerError, "註冊失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	registered, err := services.GetUserByID(user.UserID)
	if err != nil || registered == nil {
		log.Printf("Failed to fetch registered user %d: %v", user.UserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "註冊失敗", "failed to load registered user", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "使用者註冊成功", registered.ToResponse())
}

// LoginInput 定義登入請求的輸入結構體
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginUser 登入使用者並簽發 token
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error(), "ERR_INVALID_INPUT")
		return
	}

	user, err := services.LoginUser(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ErrorResponse(c, http.StatusUnauthorized, "登入失敗，檢查使用者名稱或密碼", err.Error(), "ERR_INVALID_CREDENTIALS")
			return
		}
		log.Printf("Login failed for username %s: %v", input.Username, err)
		ErrorResponse(c, http.StatusInternalServerError, "登入失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	token, err := utils.GenerateToken(user.UserID, user.Role)
	if err != nil {
		log.Printf("Failed to generate token for user %d: %v", user.UserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "登入失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	profile, err := services.GetUserByID(user.UserID)
	if err != nil || profile == nil {
		log.Printf("Failed to load profile for user %d: %v", user.UserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "登入失敗", "failed to load user profile", "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token": token,
		"user":  profile.ToResponse(),
	})
}

// GetProfile 查看個人資料
func GetProfile(c *gin.Context) {
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

	user, err := services.GetUserByID(currentUserIDInt)
	if err != nil {
		log.Printf("Failed to get user %d: %v", currentUserIDInt, err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_INTERNAL")
		return
	}
	if user == nil {
		ErrorResponse(c, http.StatusNotFound, "使用者不存在", "user not found", "ERR_NOT_FOUND")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", user.ToResponse())
}

// GetUser 根據ID查詢使用者資料檢查
func GetUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid user ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的使用者ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	user, err := services.GetUserByID(id)
	if err != nil {
		log.Printf("Database error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_INTERNAL")
		return
	}
	if user == nil {
		ErrorResponse(c, http.StatusNotFound, "使用者不存在", "user not found", "ERR_NOT_FOUND")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", user.ToResponse())
}

// GetAllUsers 查詢所有使用者資料檢查
func GetAllUsers(c *gin.Context) {
	users, err := services.GetAllUsers()
	if err != nil {
		log.Printf("Failed to get all users: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢所有使用者失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	userResponses := make([]models.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = user.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", userResponses)
}

// GetUserHistory 查詢特定使用者的預約歷史記錄
func GetUserHistory(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid user ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的使用者ID", err.Error(), "ERR_INVALID_ID")
		return
	}

	user, err := services.GetUserByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "伺服器錯誤", err.Error(), "ERR_INTERNAL")
		return
	}
	if user == nil {
		ErrorResponse(c, http.StatusNotFound, "使用者不存在", "user not found", "ERR_NOT_FOUND")
		return
	}

	reservations, err := services.GetUserReservations(id)
	if err != nil {
		log.Printf("Failed to get reservation history: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢預約歷史失敗", err.Error(), "ERR_INTERNAL")
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", toReservationResponses(reservations))
}
