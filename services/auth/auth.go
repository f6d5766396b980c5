// Package auth handles admin and participant credentials and profiles.
// Token issuing stays in the HTTP layer.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursehub/apperrors"
	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

var errBadCredentials = apperrors.NewUnauthorizedError("Invalid email or password")

type SignupInput struct {
	Name            string
	Email           string
	Mobile          string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

type PasswordChange struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AdminProfile holds the editable admin fields. Empty values are ignored.
type AdminProfile struct {
	Name       string
	Phone      string
	Department string
}

// ParticipantProfile holds the editable participant fields. Nil or empty
// values are ignored.
type ParticipantProfile struct {
	Name              string
	Mobile            string
	Organization      string
	Designation       string
	YearsOfExperience *int
	Address           *models.Address
}

// HashPassword hashes with the configured bcrypt cost.
func HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if config.AppConfig != nil && config.AppConfig.SaltRound >= bcrypt.MinCost && config.AppConfig.SaltRound <= bcrypt.MaxCost {
		cost = config.AppConfig.SaltRound
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperrors.NewInternalError("Failed to process your request", err)
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return hash != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AdminLogin verifies admin credentials and stamps lastLogin.
func AdminLogin(ctx context.Context, db *gorm.DB, email, password string) (*models.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidError("Email and password are required")
	}

	db = db.WithContext(ctx)
	var admin models.Admin
	if err := db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if !checkPassword(admin.Password, password) {
		logger.Warn("admin login failed", zap.String("email", email))
		return nil, errBadCredentials
	}
	if !admin.IsActive {
		return nil, apperrors.NewForbiddenError("Admin account is inactive")
	}

	loggedIn := time.Now().UTC()
	if err := db.Model(&admin).Update("last_login", loggedIn).Error; err != nil {
		logger.Error("failed to record admin login", zap.String("adminId", admin.ID), zap.Error(err))
	}
	admin.LastLogin = &loggedIn
	return &admin, nil
}

// Admin loads an admin account by id.
func Admin(ctx context.Context, db *gorm.DB, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Admin not found")
		}
		return nil, err
	}
	return &admin, nil
}

func UpdateAdminProfile(ctx context.Context, db *gorm.DB, id string, in AdminProfile) (*models.Admin, error) {
	admin, err := Admin(ctx, db, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if v := strings.TrimSpace(in.Name); v != "" {
		updates["name"] = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		updates["phone"] = v
	}
	if v := strings.TrimSpace(in.Department); v != "" {
		updates["department"] = v
	}
	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(admin).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return Admin(ctx, db, id)
}

func ChangeAdminPassword(ctx context.Context, db *gorm.DB, id string, in PasswordChange) error {
	if err := in.validate(); err != nil {
		return err
	}
	admin, err := Admin(ctx, db, id)
	if err != nil {
		return err
	}
	if !checkPassword(admin.Password, in.CurrentPassword) {
		return apperrors.NewUnauthorizedError("Current password is incorrect")
	}
	hashed, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(admin).Update("password", hashed).Error
}

// RegisterParticipant creates an ACTIVE participant account.
func RegisterParticipant(ctx context.Context, db *gorm.DB, in SignupInput) (*models.Participant, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := strings.TrimSpace(in.Mobile)
	name := strings.TrimSpace(in.Name)

	if name == "" || email == "" || mobile == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, apperrors.NewInvalidError("All fields are required")
	}
	if !utils.IsValidEmail(email) {
		return nil, apperrors.NewInvalidError("Invalid email format")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.NewInvalidError("Passwords do not match")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.NewInvalidError("Password must be at least 6 characters")
	}
	if !in.AcceptTerms {
		return nil, apperrors.NewInvalidError("You must accept the terms and conditions")
	}

	db = db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.Participant{}).Where("email = ? OR mobile = ?", email, mobile).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.NewConflictError("Email or mobile already registered")
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	participant := &models.Participant{
		Name:        name,
		Email:       email,
		Mobile:      mobile,
		Password:    hashed,
		Status:      models.ParticipantActive,
		Preferences: models.Preferences{Newsletter: true, Notifications: true},
	}
	if err := db.Create(participant).Error; err != nil {
		return nil, err
	}
	logger.Info("participant registered", zap.String("participantId", participant.ID))
	return participant, nil
}

// ParticipantLogin verifies participant credentials. Suspended accounts
// are refused.
func ParticipantLogin(ctx context.Context, db *gorm.DB, email, password string) (*models.Participant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidError("Email and password are required")
	}
	if !utils.IsValidEmail(email) {
		return nil, apperrors.NewInvalidError("Invalid email format")
	}

	var participant models.Participant
	if err := db.WithContext(ctx).Where("email = ?", email).First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if participant.Password == "" {
		return nil, apperrors.NewUnauthorizedError("Password not set for this account")
	}
	if !checkPassword(participant.Password, password) {
		logger.Warn("participant login failed", zap.String("email", email))
		return nil, errBadCredentials
	}
	if participant.Status == models.ParticipantSuspended {
		return nil, apperrors.NewForbiddenError("Account is suspended")
	}
	return &participant, nil
}

// Participant loads a participant with their live course entries.
func Participant(ctx context.Context, db *gorm.DB, id string) (*models.Participant, error) {
	var participant models.Participant
	if err := db.WithContext(ctx).Preload("RegisteredCourses").First(&participant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Participant not found")
		}
		return nil, err
	}
	return &participant, nil
}

func UpdateParticipantProfile(ctx context.Context, db *gorm.DB, id string, in ParticipantProfile) (*models.Participant, error) {
	participant, err := Participant(ctx, db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if v := strings.TrimSpace(in.Name); v != "" {
		updates["name"] = v
	}
	if v := strings.TrimSpace(in.Mobile); v != "" && v != participant.Mobile {
		var taken int64
		if err := db.WithContext(ctx).Model(&models.Participant{}).Where("mobile = ? AND id <> ?", v, id).Count(&taken).Error; err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, apperrors.NewConflictError("mobile already exists")
		}
		updates["mobile"] = v
	}
	if v := strings.TrimSpace(in.Organization); v != "" {
		updates["organization"] = v
	}
	if v := strings.TrimSpace(in.Designation); v != "" {
		updates["designation"] = v
	}
	if in.YearsOfExperience != nil {
		if *in.YearsOfExperience < 0 {
			return nil, apperrors.NewInvalidError("Years of experience cannot be negative")
		}
		updates["years_of_experience"] = *in.YearsOfExperience
	}
	if a := in.Address; a != nil {
		updates["address_street"] = a.Street
		updates["address_city"] = a.City
		updates["address_state"] = a.State
		updates["address_zip_code"] = a.ZipCode
		updates["address_country"] = a.Country
	}
	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&models.Participant{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return Participant(ctx, db, id)
}

func ChangeParticipantPassword(ctx context.Context, db *gorm.DB, id string, in PasswordChange) error {
	if err := in.validate(); err != nil {
		return err
	}
	participant, err := Participant(ctx, db, id)
	if err != nil {
		return err
	}
	if participant.Password == "" {
		return apperrors.NewInvalidError("Password not set for this account")
	}
	if !checkPassword(participant.Password, in.CurrentPassword) {
		return apperrors.NewUnauthorizedError("Current password is incorrect")
	}
	hashed, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&models.Participant{}).Where("id = ?", id).Update("password", hashed).Error
}

func (in PasswordChange) validate() error {
	if in.CurrentPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return apperrors.NewInvalidError("All fields are required")
	}
	if in.NewPassword != in.ConfirmPassword {
		return apperrors.NewInvalidError("Passwords do not match")
	}
	if len(in.NewPassword) < MinPasswordLength {
		return apperrors.NewInvalidError("Password must be at least 6 characters")
	}
	return nil
}

// EnsureAdmin creates the admin when no account uses its email yet. It
// reports whether a new account was created.
func EnsureAdmin(ctx context.Context, db *gorm.DB, admin models.Admin, password string) (bool, error) {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	var count int64
	if err := db.WithContext(ctx).Model(&models.Admin{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	admin.Password = hashed
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}
