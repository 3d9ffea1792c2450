package models

// 車位狀態：佔用若且唯若存在一筆未結束的 Reservation
const (
	SpotAvailable = "available"
	SpotOccupied  = "occupied"
)

// ParkingSpot 定義車位模型
type ParkingSpot struct {
	SpotID       int           `json:"spot_id" gorm:"primaryKey;autoIncrement;type:INT"`
	LotID        int           `json:"lot_id" gorm:"index;not null;type:INT"`
	Status       string        `json:"status" gorm:"type:varchar(10);not null;default:'available'"`
	Lot          ParkingLot    `json:"-" gorm:"foreignKey:LotID;references:LotID"`
	Reservations []Reservation `json:"-" gorm:"foreignKey:SpotID;references:SpotID"`
}

func (ParkingSpot) TableName() string {
	return "parking_spot"
}

// SpotStatusResponse 定義車位看板回應結構，佔用中的車位附上當前預約
type SpotStatusResponse struct {
	SpotID      int                        `json:"spot_id"`
	Status      string                     `json:"status"`
	Reservation *SimpleReservationResponse `json:"current_reservation,omitempty"`
	User        *UserResponse              `json:"user,omitempty"`
}
