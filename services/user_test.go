package services

import (
	"testing"
	"time"

	"parkwithease/database"
	"parkwithease/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	setupTestDB(t)
	user := newTestUser(t, "alice")

	// 密碼經過哈希、車牌加密後存放
	var stored models.User
	require.NoError(t, database.DB.First(&stored, user.UserID).Error)
	assert.NotEqual(t, "passw0rd123", stored.Password)
	assert.NotEqual(t, "ABC-1234", stored.VehicleNumber)
	assert.Equal(t, "user", stored.Role)
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	setupTestDB(t)
	newTestUser(t, "alice")

	dup := &models.User{
		Username:      "alice",
		Password:      "anotherPass1",
		DOB:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		VehicleNumber: "XYZ-9999",
	}
	err := RegisterUser(dup)
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegisterUserInvalidRole(t *testing.T) {
	setupTestDB(t)

	user := &models.User{
		Username:      "mallory",
		Password:      "passw0rd123",
		DOB:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		VehicleNumber: "XYZ-9999",
		Role:          "superuser",
	}
	assert.Error(t, RegisterUser(user))
}

func TestLoginUser(t *testing.T) {
	setupTestDB(t)
	registered := newTestUser(t, "alice")

	user, err := LoginUser("alice", "passw0rd123")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, user.UserID)
	assert.Equal(t, "user", user.Role)
}

func TestLoginUserWrongPassword(t *testing.T) {
	setupTestDB(t)
	newTestUser(t, "alice")

	_, err := LoginUser("alice", "wrongPass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUserUnknownUsername(t *testing.T) {
	setupTestDB(t)

	_, err := LoginUser("nobody", "passw0rd123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserByIDDecryptsVehicleNumber(t *testing.T) {
	setupTestDB(t)
	registered := newTestUser(t, "alice")

	user, err := GetUserByID(registered.UserID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ABC-1234", user.VehicleNumber)
}

func TestGetUserByIDMissing(t *testing.T) {
	setupTestDB(t)

	user, err := GetUserByID(404)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetAllUsers(t *testing.T) {
	setupTestDB(t)
	newTestUser(t, "alice")
	newTestUser(t, "bob")

	users, err := GetAllUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, "ABC-1234", u.VehicleNumber)
	}
}
