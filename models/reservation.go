package models

import "time"

// Reservation 定義預約模型
// LeavingTimestamp 為 null 表示預約進行中；結束後不可再變動
type Reservation struct {
	ReservationID    int         `json:"reservation_id" gorm:"primaryKey;autoIncrement;type:INT"`
	SpotID           int         `json:"spot_id" gorm:"index;not null;type:INT"`
	UserID           int         `json:"user_id" gorm:"index;not null;type:INT"`
	ParkingTimestamp time.Time   `json:"parking_timestamp" gorm:"type:datetime;not null"`
	LeavingTimestamp *time.Time  `json:"leaving_timestamp" gorm:"type:datetime;default:null"`
	PricePerUnit     float64     `json:"price_per_unit" gorm:"type:decimal(10,2);not null"` // 下訂時快照的每分鐘價格
	Spot             ParkingSpot `json:"-" gorm:"foreignKey:SpotID;references:SpotID"`
	User             User        `json:"-" gorm:"foreignKey:UserID;references:UserID"`
}

func (Reservation) TableName() string {
	return "reservation"
}

type SimpleReservationResponse struct {
	ReservationID    int        `json:"reservation_id"`
	SpotID           int        `json:"spot_id"`
	UserID           int        `json:"user_id"`
	ParkingTimestamp time.Time  `json:"parking_timestamp"`
	LeavingTimestamp *time.Time `json:"leaving_timestamp"`
	PricePerUnit     float64    `json:"price_per_unit"`
}

// ReservationResponse 已結束的預約附帶停留時間與費用
type ReservationResponse struct {
	ReservationID    int        `json:"reservation_id"`
	SpotID           int        `json:"spot_id"`
	UserID           int        `json:"user_id"`
	ParkingTimestamp time.Time  `json:"parking_timestamp"`
	LeavingTimestamp *time.Time `json:"leaving_timestamp"`
	PricePerUnit     float64    `json:"price_per_unit"`
	DurationMinutes  *float64   `json:"duration_minutes,omitempty"`
	Cost             *float64   `json:"cost,omitempty"`
}

func (r *Reservation) ToSimpleResponse() SimpleReservationResponse {
	return SimpleReservationResponse{
		ReservationID:    r.ReservationID,
		SpotID:           r.SpotID,
		UserID:           r.UserID,
		ParkingTimestamp: r.ParkingTimestamp,
		LeavingTimestamp: r.LeavingTimestamp,
		PricePerUnit:     r.PricePerUnit,
	}
}

func (r *Reservation) ToResponse(durationMinutes, cost *float64) ReservationResponse {
	return ReservationResponse{
		ReservationID:    r.ReservationID,
		SpotID:           r.SpotID,
		UserID:           r.UserID,
		ParkingTimestamp: r.ParkingTimestamp,
		LeavingTimestamp: r.LeavingTimestamp,
		PricePerUnit:     r.PricePerUnit,
		DurationMinutes:  durationMinutes,
		Cost:             cost,
	}
}
