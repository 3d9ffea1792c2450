package services

import (
	"errors"
	"fmt"
	"log"
	"parkwithease/database"
	"parkwithease/models"
	"parkwithease/utils"

	"gorm.io/gorm"
)

// RegisterUser 註冊使用者
func RegisterUser(user *models.User) error {
	// 檢查是否有重複的 username
	var existingUser models.User
	if err := database.DB.Where("username = ?", user.Username).First(&existingUser).Error; err == nil {
		return ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for duplicate username: %v", err)
		return fmt.Errorf("failed to check for duplicate username: %w", err)
	}

	if user.Role == "" {
		user.Role = "user"
	}
	if user.Role != "admin" && user.Role != "user" {
		return fmt.Errorf("invalid role: must be 'admin' or 'user'")
	}

	// 哈希密碼
	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashedPassword

	// 加密 vehicle_number
	if user.VehicleNumber != "" {
		encryptedVehicleNumber, err := utils.EncryptVehicleNumber(user.VehicleNumber)
		if err != nil {
			log.Printf("Failed to encrypt vehicle_number: %v", err)
			return fmt.Errorf("failed to encrypt vehicle_number: %w", err)
		}
		user.VehicleNumber = encryptedVehicleNumber
	}

	if err := database.DB.Create(user).Error; err != nil {
		log.Printf("Failed to register user: %v", err)
		return fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("Successfully registered user with ID %d", user.UserID)
	return nil
}

// LoginUser 登入使用者，回傳身份與角色
func LoginUser(username, password string) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User with username %s not found", username)
			return nil, ErrInvalidCredentials
		}
		log.Printf("Failed to login user: %v", err)
		return nil, fmt.Errorf("failed to login user: %w", err)
	}

	// 驗證密碼
	if !utils.CheckPasswordHash(password, user.Password) {
		log.Printf("Invalid password for username %s", username)
		return nil, ErrInvalidCredentials
	}

	log.Printf("User with ID %d logged in successfully", user.UserID)
	return &user, nil
}

// GetUserByID 根據ID查詢使用者，查無時回傳 nil
func GetUserByID(id int) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User with ID %d not found", id)
			return nil, nil
		}
		log.Printf("Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}

	// 解密 vehicle_number
	if user.VehicleNumber != "" {
		decryptedVehicleNumber, err := utils.DecryptVehicleNumber(user.VehicleNumber)
		if err != nil {
			log.Printf("Failed to decrypt vehicle_number for user %d: %v", id, err)
			user.VehicleNumber = ""
		} else {
			user.VehicleNumber = decryptedVehicleNumber
		}
	}

	return &user, nil
}

// GetAllUsers 查詢所有使用者
func GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := database.DB.Find(&users).Error; err != nil {
		log.Printf("Failed to query all users: %v", err)
		return nil, fmt.Errorf("failed to query all users: %w", err)
	}

	for i := range users {
		if users[i].VehicleNumber != "" {
			decryptedVehicleNumber, err := utils.DecryptVehicleNumber(users[i].VehicleNumber)
			if err != nil {
				log.Printf("Failed to decrypt vehicle_number for user %d: %v", users[i].UserID, err)
				users[i].VehicleNumber = ""
			} else {
				users[i].VehicleNumber = decryptedVehicleNumber
			}
		}
	}

	log.Printf("Successfully retrieved %d users", len(users))
	return users, nil
}
