package services

import (
	"testing"

	"parkwithease/database"
	"parkwithease/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLotSpotCountMatchesCapacity(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 5)

	total, occupied, err := CountLotSpots(lot.LotID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.EqualValues(t, 0, occupied)

	var available int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lot.LotID, models.SpotAvailable).
		Count(&available).Error)
	assert.EqualValues(t, 5, available)
}

func TestUpdateLotGrowsSpots(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 5)

	newMax := 8
	require.NoError(t, UpdateLot(lot.LotID, models.UpdateParkingLotRequest{MaxSpots: &newMax}))

	total, _, err := CountLotSpots(lot.LotID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, total)

	updated, err := GetLotByID(lot.LotID)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.MaxSpots)
}

func TestUpdateLotShrinkKeepsSpots(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 5)

	// 縮小容量只改宣告值，既有車位保留
	newMax := 3
	require.NoError(t, UpdateLot(lot.LotID, models.UpdateParkingLotRequest{MaxSpots: &newMax}))

	total, _, err := CountLotSpots(lot.LotID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	updated, err := GetLotByID(lot.LotID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxSpots)
}

func TestUpdateLotFields(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 2)

	name := "Harbor Front"
	price := 3.5
	require.NoError(t, UpdateLot(lot.LotID, models.UpdateParkingLotRequest{
		PrimeLocationName: &name,
		Price:             &price,
	}))

	updated, err := GetLotByID(lot.LotID)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Front", updated.PrimeLocationName)
	assert.InDelta(t, 3.5, updated.Price, 1e-9)
}

func TestUpdateLotMissing(t *testing.T) {
	setupTestDB(t)

	price := 3.5
	err := UpdateLot(404, models.UpdateParkingLotRequest{Price: &price})
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestDeleteLotRefusedWhileOccupied(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 2)
	user := newTestUser(t, "alice")

	_, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)

	err = DeleteLot(lot.LotID)
	assert.ErrorIs(t, err, ErrLotHasActiveReservations)

	// 拒絕刪除時不得動到任何資料
	_, err = GetLotByID(lot.LotID)
	require.NoError(t, err)
	total, occupied, err := CountLotSpots(lot.LotID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.EqualValues(t, 1, occupied)
	assert.EqualValues(t, 1, countReservations(t))
}

func TestDeleteLotRemovesSpotsAndHistory(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 2)
	user := newTestUser(t, "alice")

	reservation, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)
	_, err = ReleaseSpot(reservation.SpotID, user.UserID)
	require.NoError(t, err)

	require.NoError(t, DeleteLot(lot.LotID))

	_, err = GetLotByID(lot.LotID)
	assert.ErrorIs(t, err, ErrLotNotFound)

	var spots int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.LotID).Count(&spots).Error)
	assert.Zero(t, spots)
	assert.Zero(t, countReservations(t))
}

func TestDeleteLotMissing(t *testing.T) {
	setupTestDB(t)

	err := DeleteLot(404)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestGetLotStatus(t *testing.T) {
	setupTestDB(t)
	lot := newTestLot(t, "Central", 2.0, 2)
	user := newTestUser(t, "alice")

	reservation, err := BookSpot(lot.LotID, user.UserID)
	require.NoError(t, err)

	details, err := GetLotStatus(lot.LotID)
	require.NoError(t, err)
	require.Len(t, details, 2)

	// 佔用中的車位附上當前預約與使用者
	var occupiedDetail *models.SpotStatusResponse
	for i := range details {
		if details[i].SpotID == reservation.SpotID {
			occupiedDetail = &details[i]
		} else {
			assert.Equal(t, models.SpotAvailable, details[i].Status)
			assert.Nil(t, details[i].Reservation)
		}
	}
	require.NotNil(t, occupiedDetail)
	assert.Equal(t, models.SpotOccupied, occupiedDetail.Status)
	require.NotNil(t, occupiedDetail.Reservation)
	assert.Equal(t, reservation.ReservationID, occupiedDetail.Reservation.ReservationID)
	require.NotNil(t, occupiedDetail.User)
	assert.Equal(t, "alice", occupiedDetail.User.Username)
}

func TestGetLotStatusMissing(t *testing.T) {
	setupTestDB(t)

	_, err := GetLotStatus(404)
	assert.ErrorIs(t, err, ErrLotNotFound)
}
