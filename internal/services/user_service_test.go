package services

import (
	"context"
	"testing"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users   map[primitive.ObjectID]*models.User
	updates []map[string]interface{}
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperrors.NotFound("no user with this email")
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, user := range f.users {
		if user.ResetToken == token && token != "" {
			return user, nil
		}
	}
	return nil, apperrors.NotFound("invalid reset token")
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	f.updates = append(f.updates, update)
	if name, ok := update["name"].(string); ok {
		user.Name = name
	}
	if pwd, ok := update["hashed_password"].(string); ok {
		user.HashedPassword = pwd
	}
	if token, ok := update["reset_token"].(string); ok {
		user.ResetToken = token
	}
	if exp, ok := update["reset_token_exp"].(time.Time); ok {
		user.ResetTokenExp = exp
	}
	return user, nil
}

func (f *fakeUserStore) AppendWeightEntry(ctx context.Context, id primitive.ObjectID, entry models.WeightEntry) error {
	user, ok := f.users[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	user.WeightHistory = append(user.WeightHistory, entry)
	return nil
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:     "Aruzhan",
		Surname:  "Bekova",
		Email:    "aruzhan@example.com",
		Password: "secret1",
		Height:   165,
		Weight:   58,
		Age:      24,
		Gender:   "female",
		Goal:     models.GoalMaintain,
	}
}

func TestRegisterUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	user, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "secret1", user.HashedPassword)
	require.Len(t, user.WeightHistory, 1)
	assert.Equal(t, 58.0, user.WeightHistory[0].Weight)
}

func TestRegisterUser_CollectsAllFieldErrors(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	input := RegisterInput{
		Name:     "A",
		Surname:  "B3",
		Email:    "not-an-email",
		Password: "short",
		Height:   20,
		Weight:   10,
		Age:      5,
	}

	_, err := svc.RegisterUser(context.Background(), input)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	for _, field := range []string{"name", "surname", "email", "password", "height", "weight", "age", "goal"} {
		assert.Contains(t, appErr.Fields, field)
	}
}

func TestRegisterUser_EmailInUse(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	_, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), validRegisterInput())
	require.Error(t, err)

	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, apperrors.AuthEmailInUse, appErr.AuthCode)
}

func TestAuthenticateUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	created, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(context.Background(), "aruzhan@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.AuthenticateUser(context.Background(), "aruzhan@example.com", "wrong1")
	require.Error(t, err)
	appErr := err.(*apperrors.Error)
	assert.Equal(t, apperrors.AuthInvalidCredentials, appErr.AuthCode)

	// Unknown email yields the same typed code as a bad password.
	_, err = svc.AuthenticateUser(context.Background(), "nobody@example.com", "secret1")
	require.Error(t, err)
	appErr = err.(*apperrors.Error)
	assert.Equal(t, apperrors.AuthInvalidCredentials, appErr.AuthCode)
}

func validProfileInput() ProfileInput {
	return ProfileInput{
		Name:    "Aruzhan",
		Surname: "Bekova",
		Age:     24,
		Height:  165,
		Weight:  58,
		Goal:    models.GoalMaintain,
	}
}

func TestSaveProfile_WeightChangeAppendsHistory(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	created, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	input := validProfileInput()
	input.Weight = 57
	_, err = svc.SaveProfile(context.Background(), created.ID.Hex(), input)
	require.NoError(t, err)

	user := store.users[created.ID]
	require.Len(t, user.WeightHistory, 2)
	assert.Equal(t, 57.0, user.CurrentWeight())

	// Saving the same weight again must not add an entry.
	_, err = svc.SaveProfile(context.Background(), created.ID.Hex(), input)
	require.NoError(t, err)
	assert.Len(t, user.WeightHistory, 2)
}

func TestSaveProfile_PasswordChangeRequiresCurrent(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	created, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	input := validProfileInput()
	input.NewPassword = "newpass2"
	input.CurrentPassword = "wrong"

	_, err = svc.SaveProfile(context.Background(), created.ID.Hex(), input)
	require.Error(t, err)
	appErr := err.(*apperrors.Error)
	assert.Contains(t, appErr.Fields, "current_password")
	assert.Empty(t, store.updates, "nothing may be written on validation failure")

	input.CurrentPassword = "secret1"
	_, err = svc.SaveProfile(context.Background(), created.ID.Hex(), input)
	require.NoError(t, err)

	user := store.users[created.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("newpass2")))
}

func TestSaveProfile_CollectsFieldErrors(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	created, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	input := validProfileInput()
	input.Name = "X"
	input.Age = 200

	_, err = svc.SaveProfile(context.Background(), created.ID.Hex(), input)
	require.Error(t, err)
	appErr := err.(*apperrors.Error)
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "age")
	assert.Len(t, store.users[created.ID].WeightHistory, 1)
}

func TestResetPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	created, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	created.ResetToken = "token-123"
	created.ResetTokenExp = time.Now().Add(time.Hour)

	err = svc.ResetPassword(context.Background(), "token-123", "brand9new")
	require.NoError(t, err)

	user := store.users[created.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("brand9new")))
	assert.Empty(t, user.ResetToken)

	err = svc.ResetPassword(context.Background(), "token-123", "brand9new")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	created, err := svc.RegisterUser(context.Background(), validRegisterInput())
	require.NoError(t, err)

	created.ResetToken = "stale"
	created.ResetTokenExp = time.Now().Add(-time.Minute)

	err = svc.ResetPassword(context.Background(), "stale", "brand9new")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, validPassword("abc123"))
	assert.False(t, validPassword("abcdef"), "no digit")
	assert.False(t, validPassword("123456"), "no letter")
	assert.False(t, validPassword("a1"), "too short")
}

func TestValidName(t *testing.T) {
	assert.True(t, validName("Aruzhan"))
	assert.True(t, validName("Ana Maria"))
	assert.False(t, validName("A"))
	assert.False(t, validName("  A  "), "whitespace does not count toward length")
	assert.False(t, validName("R2D2"))
}
