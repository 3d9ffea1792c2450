package services

import (
	"sync"
	"testing"
	"time"

	"parkwithease/database"
	"parkwithease/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCost(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// 90 秒、每分鐘 2.0 → 1.5 分鐘、費用 3.00
	duration, cost, err := CalculateCost(base, base.Add(90*time.Second), 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, duration, 1e-9)
	assert.InDelta(t, 3.00, cost, 1e-9)

	// 75 秒、每分鐘 0.1 → 0.125 → 進位到 0.13
	duration, cost, err = CalculateCost(base, base.Add(75*time.Second), 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, duration, 1e-9)
	assert.InDelta(t, 0.13, cost, 1e-9)

	// 停留 0 秒費用為 0
	duration, cost, err = CalculateCost(base, base, 5.0)
	require.NoError(t, err)
	assert.Zero(t, duration)
	assert.Zero(t, cost)

	// 離場早於進場必須報錯
	_, _, err = CalculateCost(base, base.Add(-time.Minute), 2.0)
	assert.Error(t, err)
}

func TestFindAvailableSpotPicksLowestID(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 3)

	var spots []models.ParkingSpot
	require.NoError(t, database.DB.Where("lot_id = ?", lot.LotID).Order("spot_id ASC").Find(&spots).Error)
	require.Len(t, spots, 3)

	// 第一個車位被佔用後，應回傳第二個
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", spots[0].SpotID).
		Update("status", models.SpotOccupied).Error)

	spot, err := FindAvailableSpot(lot.LotID)
	require.NoError(t, err)
	require.NotNil(t, spot)
	assert.Equal(t, spots[1].SpotID, spot.SpotID)
}

func TestFindAvailableSpotNoneLeft(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 1)

	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.LotID).
		Update("status", models.SpotOccupied).Error)

	spot, err := FindAvailableSpot(lot.LotID)
	require.NoError(t, err)
	assert.Nil(t, spot)
}

func TestFindAvailableSpotLotMissing(t *testing.T) {
	setupTestDB(t)

	_, err := FindAvailableSpot(404)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestBookSpot(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.5, 2)
	user := newTestUser(t, "alice")

	reservation, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)
	require.NotNil(t, reservation)

	// 快照當下的每分鐘價格，且車位翻為 occupied
	assert.Equal(t, user.UserID, reservation.UserID)
	assert.InDelta(t, 2.5, reservation.PricePerUnit, 1e-9)
	assert.Nil(t, reservation.LeavingTimestamp)
	assert.Equal(t, models.SpotOccupied, spotStatus(t, reservation.SpotID))

	// 佔用 ⇔ 恰好一筆進行中預約
	var open int64
	require.NoError(t, database.DB.Model(&models.Reservation{}).
		Where("spot_id = ? AND leaving_timestamp IS NULL", reservation.SpotID).
		Count(&open).Error)
	assert.EqualValues(t, 1, open)
}

func TestBookSpotLotMissing(t *testing.T) {
	setupTestDB(t)
	user := newTestUser(t, "alice")

	_, err := BookSpot(404, user.UserID)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestBookSpotFullLot(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Tiny", 1.0, 1)
	alice := newTestUser(t, "alice")
	bob := newTestUser(t, "bob")

	_, err := BookSpot(lot.LotID, alice.UserID)
	require.NoError(t, err)
	before := countReservations(t)

	// 客滿時不得留下任何新的預約紀錄
	_, err = BookSpot(lot.LotID, bob.UserID)
	assert.ErrorIs(t, err, ErrNoAvailableSpot)
	assert.Equal(t, before, countReservations(t))
}

func TestBookSpotConcurrent(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Tiny", 1.0, 1)
	alice := newTestUser(t, "alice")
	bob := newTestUser(t, "bob")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = BookSpot(lot.LotID, alice.UserID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = BookSpot(lot.LotID, bob.UserID)
	}()
	wg.Wait()

	// 一個車位兩個請求，恰好一個成功
	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrNoAvailableSpot)
		}
	}
	assert.Equal(t, 1, wins)
	assert.EqualValues(t, 1, countReservations(t))
}

func TestReleaseSpot(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 1)
	user := newTestUser(t, "alice")

	reservation, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)

	result, err := ReleaseSpot(reservation.SpotID, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, reservation.ReservationID, result.ReservationID)
	assert.GreaterOrEqual(t, result.DurationMinutes, 0.0)
	assert.GreaterOrEqual(t, result.Cost, 0.0)
	assert.Equal(t, models.SpotAvailable, spotStatus(t, reservation.SpotID))

	// 預約結束後不可變，leaving_timestamp 已寫入
	var closed models.Reservation
	require.NoError(t, database.DB.First(&closed, reservation.ReservationID).Error)
	require.NotNil(t, closed.LeavingTimestamp)
}

func TestReleaseSpotWrongUser(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 1)
	alice := newTestUser(t, "alice")
	bob := newTestUser(t, "bob")

	reservation, err := BookSpot(lot.LotID, alice.UserID)
	require.NoError(t, err)

	// 別人的預約不能由他人結束，車位狀態不得改變
	_, err = ReleaseSpot(reservation.SpotID, bob.UserID)
	assert.ErrorIs(t, err, ErrNoActiveReservation)
	assert.Equal(t, models.SpotOccupied, spotStatus(t, reservation.SpotID))
}

func TestReleaseSpotTwice(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 1)
	user := newTestUser(t, "alice")

	reservation, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)

	_, err = ReleaseSpot(reservation.SpotID, user.UserID)
	require.NoError(t, err)

	_, err = ReleaseSpot(reservation.SpotID, user.UserID)
	assert.ErrorIs(t, err, ErrNoActiveReservation)
	assert.Equal(t, models.SpotAvailable, spotStatus(t, reservation.SpotID))
}

func TestReleaseSpotMissingSpot(t *testing.T) {
	setupTestDB(t)
	user := newTestUser(t, "alice")

	_, err := ReleaseSpot(404, user.UserID)
	assert.ErrorIs(t, err, ErrSpotNotFound)
}

func TestGetUserReservationsNewestFirst(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 2)
	user := newTestUser(t, "alice")

	first, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)
	// 拉開排序用的時間差
	require.NoError(t, database.DB.Model(&models.Reservation{}).
		Where("reservation_id = ?", first.ReservationID).
		Update("parking_timestamp", first.ParkingTimestamp.Add(-time.Hour)).Error)

	second, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)

	reservations, err := GetUserReservations(user.UserID)
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, second.ReservationID, reservations[0].ReservationID)
	assert.Equal(t, first.ReservationID, reservations[1].ReservationID)
}

func TestSyncSpotStatus(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 2)
	user := newTestUser(t, "alice")

	var spots []models.ParkingSpot
	require.NoError(t, database.DB.Where("lot_id = ?", lot.LotID).Order("spot_id ASC").Find(&spots).Error)
	require.Len(t, spots, 2)

	// 漂移一：標記佔用但沒有進行中預約
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", spots[0].SpotID).
		Update("status", models.SpotOccupied).Error)

	// 漂移二：有進行中預約但車位標記可用
	reservation := models.Reservation{
		SpotID:           spots[1].SpotID,
		UserID:           user.UserID,
		ParkingTimestamp: time.Now().UTC(),
		PricePerUnit:     lot.Price,
	}
	require.NoError(t, database.DB.Create(&reservation).Error)

	require.NoError(t, SyncSpotStatus())

	assert.Equal(t, models.SpotAvailable, spotStatus(t, spots[0].SpotID))
	assert.Equal(t, models.SpotOccupied, spotStatus(t, spots[1].SpotID))
}
