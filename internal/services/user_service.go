package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/fitbalance/fitbalance-backend/pkg/email"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const resetTokenTTL = time.Hour

// UserStore is the persistence surface for accounts and profiles.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error)
	AppendWeightEntry(ctx context.Context, id primitive.ObjectID, entry models.WeightEntry) error
}

// UserService encapsulates the business logic for accounts and profiles.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	Name     string  `json:"name"`
	Surname  string  `json:"surname"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Height   float64 `json:"height"`
	Weight   float64 `json:"weight"`
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	Goal     string  `json:"goal"`
}

// validateProfileFields checks every profile field and collects all failures
// into one map, so the UI can highlight everything in a single pass.
func validateProfileFields(name, surname, goal string, age int, height, weight float64) map[string]string {
	fields := make(map[string]string)
	if !validName(name) {
		fields["name"] = "must be at least 2 letters"
	}
	if !validName(surname) {
		fields["surname"] = "must be at least 2 letters"
	}
	if strings.TrimSpace(goal) == "" {
		fields["goal"] = "must not be empty"
	}
	if !validAge(age) {
		fields["age"] = "must be between 10 and 120"
	}
	if !validHeight(height) {
		fields["height"] = "must be between 50 and 300 cm"
	}
	if !validWeight(weight) {
		fields["weight"] = "must be between 20 and 500 kg"
	}
	return fields
}

// RegisterUser validates the sign-up form, hashes the password and creates
// the account with its first weight history entry.
func (s *UserService) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	logrus.Info("Registering new user")

	fields := validateProfileFields(input.Name, input.Surname, input.Goal, input.Age, input.Height, input.Weight)
	if !validEmail(input.Email) {
		fields["email"] = "invalid email format"
	}
	if !validPassword(input.Password) {
		fields["password"] = apperrors.AuthMessage(apperrors.AuthWeakPassword)
	}
	if len(fields) > 0 {
		logrus.WithField("fields", len(fields)).Warn("Registration rejected by validation")
		return nil, apperrors.Validation("invalid registration fields", fields)
	}

	if existing, _ := s.repo.GetUserByEmail(ctx, input.Email); existing != nil {
		logrus.WithField("email", input.Email).Warn("Email already in use")
		return nil, apperrors.Auth(apperrors.AuthEmailInUse)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, apperrors.Persistence("failed to hash password", err)
	}

	user := &models.User{
		Name:           strings.TrimSpace(input.Name),
		Surname:        strings.TrimSpace(input.Surname),
		Email:          strings.TrimSpace(input.Email),
		HashedPassword: string(hashedPwd),
		Height:         input.Height,
		Age:            input.Age,
		Gender:         input.Gender,
		Goal:           input.Goal,
		WeightHistory: []models.WeightEntry{
			{Weight: input.Weight, Date: time.Now()},
		},
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, err
	}

	logrus.WithField("userID", created.ID.Hex()).Info("User registered successfully")
	return created, nil
}

// AuthenticateUser checks credentials and returns the account on success.
func (s *UserService) AuthenticateUser(ctx context.Context, emailAddr, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Auth(apperrors.AuthInvalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", emailAddr).Warn("Failed login attempt")
		return nil, apperrors.Auth(apperrors.AuthInvalidCredentials)
	}

	return user, nil
}

// GetUser fetches a user by their hex ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID", nil)
	}
	return s.repo.GetUserByID(ctx, objID)
}

// ProfileInput carries the editable profile fields. Weight is the user's
// current weight; a change appends a history entry rather than rewriting one.
// A non-empty NewPassword requires CurrentPassword to match.
type ProfileInput struct {
	Name            string  `json:"name"`
	Surname         string  `json:"surname"`
	Age             int     `json:"age"`
	Height          float64 `json:"height"`
	Weight          float64 `json:"weight"`
	Goal            string  `json:"goal"`
	CurrentPassword string  `json:"current_password,omitempty"`
	NewPassword     string  `json:"new_password,omitempty"`
}

// SaveProfile validates and applies a profile edit. All field errors are
// collected and returned together; nothing is written when any field fails.
func (s *UserService) SaveProfile(ctx context.Context, userID string, input ProfileInput) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID", nil)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	fields := validateProfileFields(input.Name, input.Surname, input.Goal, input.Age, input.Height, input.Weight)

	changingPassword := input.NewPassword != ""
	if changingPassword {
		if !validPassword(input.NewPassword) {
			fields["new_password"] = apperrors.AuthMessage(apperrors.AuthWeakPassword)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.CurrentPassword)) != nil {
			fields["current_password"] = "current password is incorrect"
		}
	}

	if len(fields) > 0 {
		logrus.WithFields(logrus.Fields{
			"userID": userID,
			"fields": len(fields),
		}).Warn("Profile edit rejected by validation")
		return nil, apperrors.Validation("invalid profile fields", fields)
	}

	update := map[string]interface{}{
		"name":    strings.TrimSpace(input.Name),
		"surname": strings.TrimSpace(input.Surname),
		"age":     input.Age,
		"height":  input.Height,
		"goal":    input.Goal,
	}

	if changingPassword {
		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Persistence("failed to hash password", err)
		}
		update["hashed_password"] = string(hashedPwd)
	}

	if input.Weight != user.CurrentWeight() {
		entry := models.WeightEntry{Weight: input.Weight, Date: time.Now()}
		if err := s.repo.AppendWeightEntry(ctx, objID, entry); err != nil {
			return nil, err
		}
	}

	return s.repo.UpdateUser(ctx, objID, update)
}

// RequestPasswordReset issues a one hour reset token and emails it to the
// account's address. An unknown email returns success to avoid leaking which
// addresses exist.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if apperrors.IsNotFound(err) {
			logrus.WithField("email", emailAddr).Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	update := map[string]interface{}{
		"reset_token":     token,
		"reset_token_exp": time.Now().Add(resetTokenTTL),
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return err
	}

	body := fmt.Sprintf("Hi %s,\n\nUse the code below to reset your FitBalance password. It expires in one hour.\n\n%s\n\nIf you did not request this, you can ignore this email.", user.Name, token)
	if err := email.SendEmail(user.Email, "Password Reset", body); err != nil {
		logrus.WithError(err).Error("Failed to send password reset email")
		return apperrors.Persistence("failed to send reset email", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset email sent")
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if !validPassword(newPassword) {
		return apperrors.Auth(apperrors.AuthWeakPassword)
	}

	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if time.Now().After(user.ResetTokenExp) {
		return apperrors.NotFound("reset token has expired")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Persistence("failed to hash password", err)
	}

	update := map[string]interface{}{
		"hashed_password": string(hashedPwd),
		"reset_token":     "",
		"reset_token_exp": time.Time{},
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return err
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset completed")
	return nil
}
