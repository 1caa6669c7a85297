package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// AuthRepository interface
type AuthRepository interface {
	CreateUser(user *models.User) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	FindUserByUsername(username string) (*models.User, error)
	IsEmailExist(email string) error
	IsPhoneExist(phone string) error
	FindRoleByID(id uuid.UUID) (*models.Role, error)
	FindRoleByName(name string) (*models.Role, error)
	EditUserProfile(userID uint, details *models.EditProfileRequest) error
	UpdateUserImage(userID uint, avatarURL, thumbnailURL string) error
	UpdateDeviceToken(userID uint, token string) error
	UpdatePassword(userID uint, hashedPassword string) error
	AddToBlacklist(blacklist *models.Blacklist) error
	IsTokenInBlacklist(token string) bool
	SetUserOnline(userID uint, online bool) error
	ListTechnicians() ([]models.User, error)
	SoftDeleteUser(userID uint) error
}

type authRepo struct {
	DB *gorm.DB
}

// NewAuthRepo creates a new instance of AuthRepository
func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) CreateUser(user *models.User) (*models.User, error) {
	if err := a.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := a.DB.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := a.DB.Preload("Role").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := a.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	if err := a.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("email already in use")
	}
	return nil
}

func (a *authRepo) IsPhoneExist(phone string) error {
	if phone == "" {
		return nil
	}
	var count int64
	if err := a.DB.Model(&models.User{}).Where("telephone = ?", phone).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("telephone already in use")
	}
	return nil
}

func (a *authRepo) FindRoleByID(id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := a.DB.Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (a *authRepo) FindRoleByName(name string) (*models.Role, error) {
	var role models.Role
	if err := a.DB.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (a *authRepo) EditUserProfile(userID uint, details *models.EditProfileRequest) error {
	updates := map[string]interface{}{}
	if details.Fullname != "" {
		updates["fullname"] = details.Fullname
	}
	if details.Username != "" {
		updates["username"] = details.Username
	}
	if details.Telephone != "" {
		updates["telephone"] = details.Telephone
	}
	if details.Bio != "" {
		updates["bio"] = details.Bio
	}
	if details.Skills != "" {
		updates["skills"] = details.Skills
	}
	if details.Latitude != 0 || details.Longitude != 0 {
		updates["latitude"] = details.Latitude
		updates["longitude"] = details.Longitude
	}
	if len(updates) == 0 {
		return nil
	}
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (a *authRepo) UpdateUserImage(userID uint, avatarURL, thumbnailURL string) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"avatar_url":     avatarURL,
		"thumb_nail_url": thumbnailURL,
	}).Error
}

func (a *authRepo) UpdateDeviceToken(userID uint, token string) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Update("device_token", token).Error
}

func (a *authRepo) UpdatePassword(userID uint, hashedPassword string) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Update("hashed_password", hashedPassword).Error
}

func (a *authRepo) AddToBlacklist(blacklist *models.Blacklist) error {
	return a.DB.Create(blacklist).Error
}

func (a *authRepo) IsTokenInBlacklist(token string) bool {
	var count int64
	if err := a.DB.Model(&models.Blacklist{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (a *authRepo) SetUserOnline(userID uint, online bool) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Update("online", online).Error
}

func (a *authRepo) ListTechnicians() ([]models.User, error) {
	var users []models.User
	err := a.DB.Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", models.RoleTechnician).
		Find(&users).Error
	return users, err
}

func (a *authRepo) SoftDeleteUser(userID uint) error {
	return a.DB.Delete(&models.User{}, userID).Error
}
