package service

import (
	"context"
	"errors"
	"testing"

	"loyalty/internal/model"
	"loyalty/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, users *fakeUserStore, phone, password, name string, mallID int64) *model.UserProfile {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return users.add(&model.UserProfile{
		PhoneNumber:  phone,
		Name:         name,
		Role:         model.RoleUser,
		MallID:       mallID,
		PasswordHash: hash,
	})
}

func TestLoginOrRegister_NewUser_Registers(t *testing.T) {
	users := newFakeUserStore()
	svc := &AuthService{users: users}

	result, err := svc.LoginOrRegister(context.Background(), "0790000000", "P@ssw0rd!", "Nevien", 7)
	require.NoError(t, err)

	assert.Equal(t, AuthStatusRegistered, result.Status)
	assert.Equal(t, "+962790000000", result.PhoneNumber)
	assert.Equal(t, "Nevien", result.Name)
	assert.NotZero(t, result.UserID)

	// persisted and retrievable by normalized phone
	saved, err := users.GetByPhone(context.Background(), "+962790000000", 7)
	require.NoError(t, err)
	assert.Equal(t, "Nevien", saved.Name)
	assert.Equal(t, model.RoleUser, saved.Role)
	assert.Zero(t, saved.TotalPoints)
	assert.NotEqual(t, "P@ssw0rd!", saved.PasswordHash, "password must be stored hashed")
}

func TestLoginOrRegister_ExistingUser_CorrectPassword_LogsIn(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "+962791111111", "Secret123!", "Existing", 7)
	svc := &AuthService{users: users}

	result, err := svc.LoginOrRegister(context.Background(), "0791111111", "Secret123!", "Ignored", 7)
	require.NoError(t, err)

	assert.Equal(t, AuthStatusLoggedIn, result.Status)
	assert.Equal(t, "Existing", result.Name, "stored name wins over the request name")
}

func TestLoginOrRegister_ExistingUser_WrongPassword(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "+962792222222", "RightPass!", "Existing", 7)
	svc := &AuthService{users: users}

	_, err := svc.LoginOrRegister(context.Background(), "0792222222", "WrongPass!", "", 7)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginOrRegister_MissingPhoneOrPassword(t *testing.T) {
	svc := &AuthService{users: newFakeUserStore()}

	for _, tc := range []struct{ phone, password string }{
		{"", ""},
		{"", "pass"},
		{"0791234567", ""},
		{"   ", "pass"},
	} {
		_, err := svc.LoginOrRegister(context.Background(), tc.phone, tc.password, "", 7)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr), "phone=%q password=%q", tc.phone, tc.password)
		assert.Equal(t, "PhoneNumber and Password are required", validationErr.Message)
	}
}

func TestLoginOrRegister_InvalidPhone(t *testing.T) {
	svc := &AuthService{users: newFakeUserStore()}

	_, err := svc.LoginOrRegister(context.Background(), "not-a-phone", "AnyPass123!", "", 7)

	var phoneErr *InvalidPhoneError
	require.True(t, errors.As(err, &phoneErr))
	assert.Equal(t, "phoneNumber", phoneErr.Field)
}

func TestLoginOrRegister_SamePhoneDifferentMall_RegistersBoth(t *testing.T) {
	users := newFakeUserStore()
	svc := &AuthService{users: users}

	first, err := svc.LoginOrRegister(context.Background(), "0793333333", "pass1", "A", 1)
	require.NoError(t, err)
	second, err := svc.LoginOrRegister(context.Background(), "0793333333", "pass2", "B", 2)
	require.NoError(t, err)

	assert.Equal(t, AuthStatusRegistered, first.Status)
	assert.Equal(t, AuthStatusRegistered, second.Status)
	assert.NotEqual(t, first.UserID, second.UserID)
}

func TestLoginOrRegister_LostRegistrationRace_FallsBackToLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := &AuthService{users: users}

	// The seeded row is what the concurrent winner wrote. The first
	// lookup misses, the insert then hits the unique index, and the
	// fallback re-reads the winner's row and verifies the password
	// like an ordinary login.
	seedUser(t, users, "+962794444444", "TheirPass!", "Winner", 7)
	users.missFirstLookup = true

	result, err := svc.LoginOrRegister(context.Background(), "0794444444", "TheirPass!", "", 7)
	require.NoError(t, err)
	assert.Equal(t, AuthStatusLoggedIn, result.Status)
	assert.Equal(t, "Winner", result.Name)
}

func TestLoginOrRegister_LostRace_WrongPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := &AuthService{users: users}

	seedUser(t, users, "+962795555555", "TheirPass!", "Winner", 7)
	users.missFirstLookup = true

	_, err := svc.LoginOrRegister(context.Background(), "0795555555", "MyPass!", "", 7)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
