package models

// ParkingLot 定義停車場模型
type ParkingLot struct {
	LotID             int           `json:"lot_id" gorm:"primaryKey;autoIncrement;type:INT"`
	PrimeLocationName string        `json:"prime_location_name" gorm:"type:varchar(100);not null" binding:"required,max=100"`
	Price             float64       `json:"price" gorm:"type:decimal(10,2);not null" binding:"required,gt=0"` // 每分鐘價格
	Address           string        `json:"address" gorm:"type:varchar(200);not null" binding:"required,max=200"`
	PinCode           string        `json:"pin_code" gorm:"type:varchar(10);not null" binding:"required,max=10"`
	MaxSpots          int           `json:"max_spots" gorm:"type:INT;not null" binding:"required,gt=0"`
	Spots             []ParkingSpot `json:"-" gorm:"foreignKey:LotID;references:LotID"`
}

func (ParkingLot) TableName() string {
	return "parking_lot"
}

// ParkingLotResponse 定義停車場回應結構，附帶車位統計
type ParkingLotResponse struct {
	LotID             int     `json:"lot_id"`
	PrimeLocationName string  `json:"prime_location_name"`
	Price             float64 `json:"price"`
	Address           string  `json:"address"`
	PinCode           string  `json:"pin_code"`
	MaxSpots          int     `json:"max_spots"`
	TotalSpots        int     `json:"total_spots"`
	Occupied          int     `json:"occupied"`
	Available         int     `json:"available"`
}

func (p *ParkingLot) ToResponse(totalSpots, occupied int) ParkingLotResponse {
	return ParkingLotResponse{
		LotID:             p.LotID,
		PrimeLocationName: p.PrimeLocationName,
		Price:             p.Price,
		Address:           p.Address,
		PinCode:           p.PinCode,
		MaxSpots:          p.MaxSpots,
		TotalSpots:        totalSpots,
		Occupied:          occupied,
		Available:         totalSpots - occupied,
	}
}

// UpdateParkingLotRequest 用於 PUT 更新
type UpdateParkingLotRequest struct {
	PrimeLocationName *string  `json:"prime_location_name" binding:"omitempty,max=100"`
	Price             *float64 `json:"price" binding:"omitempty,gt=0"`
	Address           *string  `json:"address" binding:"omitempty,max=200"`
	PinCode           *string  `json:"pin_code" binding:"omitempty,max=10"`
	MaxSpots          *int     `json:"max_spots" binding:"omitempty,gt=0"`
}
