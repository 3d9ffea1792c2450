package services

import "errors"

// 使用者可見的錯誤類別，處理器層用 errors.Is 轉換為對應的 HTTP 狀態碼
var (
	ErrDuplicateUsername        = errors.New("username is already taken")
	ErrInvalidCredentials       = errors.New("invalid username or password")
	ErrNoAvailableSpot          = errors.New("no available spot in this lot")
	ErrNoActiveReservation      = errors.New("no active reservation found for this spot and user")
	ErrLotHasActiveReservations = errors.New("cannot delete lot with active reservations")
	ErrLotNotFound              = errors.New("parking lot not found")
	ErrSpotNotFound             = errors.New("parking spot not found")
)
