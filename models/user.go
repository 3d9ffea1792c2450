package models

import "time"

// User 定義使用者模型
type User struct {
	UserID        int           `json:"user_id" gorm:"primaryKey;autoIncrement;type:INT"`
	Username      string        `json:"username" gorm:"type:varchar(80);uniqueIndex;not null" binding:"required,max=80"`
	Password      string        `json:"password" gorm:"type:varchar(100);not null"`
	DOB           time.Time     `json:"dob" gorm:"type:date;not null"`
	VehicleNumber string        `json:"vehicle_number" gorm:"type:varchar(120);not null"` // AES 加密後存放
	Role          string        `json:"role" gorm:"type:varchar(10);not null;default:'user'"`
	Reservations  []Reservation `json:"-" gorm:"foreignKey:UserID;references:UserID"`
}

func (User) TableName() string {
	return "user"
}

// UserResponse 定義使用者回應結構，不包含密碼哈希
type UserResponse struct {
	UserID        int    `json:"user_id"`
	Username      string `json:"username"`
	DOB           string `json:"dob"`
	VehicleNumber string `json:"vehicle_number"`
	Role          string `json:"role"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:        u.UserID,
		Username:      u.Username,
		DOB:           u.DOB.Format("2006-01-02"),
		VehicleNumber: u.VehicleNumber,
		Role:          u.Role,
	}
}
