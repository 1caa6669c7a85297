package models

import (
	"errors"
	"fmt"

	goval "github.com/go-passwd/validator"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/leebenson/conform"
	"golang.org/x/crypto/bcrypt"
)

// User represents a customer or technician on the platform
type User struct {
	Model
	Fullname       string         `json:"fullname" binding:"required,min=2" conform:"trim"`
	Username       string         `json:"username" binding:"required,min=2" conform:"trim,lower"`
	Telephone      string         `json:"telephone" gorm:"default:null"`
	Email          string         `json:"email" gorm:"unique;not null" binding:"required,email" conform:"trim,lower"`
	Password       string         `json:"password,omitempty" gorm:"-" validate:"omitempty,min=6"`
	HashedPassword string         `json:"-"`
	IsEmailActive  bool           `json:"-"`
	IsSocial       bool           `json:"-"`
	AccessToken    string         `json:"-"`
	IsBlocked      bool           `json:"is_blocked" gorm:"default:false"`
	AvatarURL      string         `json:"avatar_url,omitempty"`
	ThumbNailURL   string         `json:"thumbnail_url,omitempty"`
	DeviceToken    string         `json:"-"`
	ResetToken     string         `json:"-"`
	Online         bool           `json:"online"`
	Bio            string         `json:"bio,omitempty"`
	Skills         string         `json:"skills,omitempty"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	RoleID         uuid.UUID      `gorm:"type:uuid" json:"role_id"`
	Role           Role           `gorm:"foreignKey:RoleID" json:"role"`
	Notifications  []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// Blacklist holds access tokens invalidated by logout
type Blacklist struct {
	Model
	Email string `json:"email"`
	Token string `json:"token" gorm:"index"`
}

type SignupRequest struct {
	Fullname  string `json:"fullname" binding:"required,min=2" conform:"trim"`
	Username  string `json:"username" binding:"required,min=2" conform:"trim,lower"`
	Email     string `json:"email" binding:"required,email" conform:"trim,lower"`
	Telephone string `json:"telephone" binding:"required" conform:"trim"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=Customer Technician"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Picture  string `json:"picture"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Fullname  string `json:"fullname"`
	Username  string `json:"username"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	RoleName  string `json:"role_name"`
}

type LoginResponse struct {
	UserResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type EditProfileRequest struct {
	Fullname  string  `json:"fullname" conform:"trim"`
	Username  string  `json:"username" conform:"trim,lower"`
	Telephone string  `json:"telephone" conform:"trim"`
	Bio       string  `json:"bio" conform:"trim"`
	Skills    string  `json:"skills" conform:"trim"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ForgotPassword struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPassword struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type GoogleAuthResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// ValidatePassword enforces the platform password policy
func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(64, errors.New("password cant be more than 64 characters")))
	return passwordValidator.Validate(password)
}

// ConformInput trims and normalizes tagged string fields in place
func ConformInput(data interface{}) error {
	return conform.Strings(data)
}

func TranslateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans) + "; ")
		errs = append(errs, translatedErr)
	}
	return errs
}

// VerifyPassword verifies the collected password with the user's hashed password
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

// DisplayName is what other participants see in conversation lists
func (u *User) DisplayName() string {
	if u.Fullname != "" {
		return u.Fullname
	}
	return u.Username
}
