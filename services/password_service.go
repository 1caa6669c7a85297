package services

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/repairhubng/repairhub/config"
	"github.com/repairhubng/repairhub/db"
	apiError "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/mailingservices"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/services/jwt"
	"golang.org/x/crypto/bcrypt"
)

// PasswordService interface
type PasswordService interface {
	ForgotPassword(email string) *apiError.Error
	ResetPassword(token string, request *models.ResetPassword) *apiError.Error
}

type passwordService struct {
	Config   *config.Config
	Mail     *mailingservices.Mailgun
	authRepo db.AuthRepository
}

// NewPasswordService instantiates a passwordService
func NewPasswordService(authRepo db.AuthRepository, mail *mailingservices.Mailgun, conf *config.Config) PasswordService {
	return &passwordService{
		Config:   conf,
		Mail:     mail,
		authRepo: authRepo,
	}
}

// ForgotPassword mails a reset link. A missing account gets the same
// response as a found one, so the endpoint doesn't leak which emails exist.
func (p *passwordService) ForgotPassword(email string) *apiError.Error {
	email = strings.ToLower(email)
	user, err := p.authRepo.FindUserByEmail(email)
	if err != nil {
		log.Printf("forgot password lookup for %s: %v", email, err)
		return nil
	}
	if user.IsSocial {
		return apiError.New("social accounts cannot reset a password", http.StatusBadRequest)
	}

	token, err := jwt.GeneratePasswordResetToken(user.Email, p.Config.JWTSecret)
	if err != nil {
		log.Printf("generate reset token: %v", err)
		return apiError.ErrInternalServerError
	}

	link := fmt.Sprintf("%s/password/reset/%s", p.Config.BaseUrl, token)
	if err := p.Mail.SendResetPassword(user.Email, link); err != nil {
		log.Printf("send reset mail to %s: %v", user.Email, err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (p *passwordService) ResetPassword(token string, request *models.ResetPassword) *apiError.Error {
	if request.Password != request.ConfirmPassword {
		return apiError.New("passwords do not match", http.StatusBadRequest)
	}
	if err := models.ValidatePassword(request.Password); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}

	claims, err := jwt.ValidateAndGetClaims(token, p.Config.JWTSecret)
	if err != nil {
		return apiError.New("invalid or expired reset link", http.StatusUnauthorized)
	}
	if claims["type"] != "password_reset" {
		return apiError.New("invalid or expired reset link", http.StatusUnauthorized)
	}
	email, ok := claims["email"].(string)
	if !ok {
		return apiError.New("invalid or expired reset link", http.StatusUnauthorized)
	}

	user, findErr := p.authRepo.FindUserByEmail(email)
	if findErr != nil {
		return apiError.ErrNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("hash password: %v", err)
		return apiError.ErrInternalServerError
	}
	if err := p.authRepo.UpdatePassword(user.ID, string(hashed)); err != nil {
		log.Printf("update password for user %d: %v", user.ID, err)
		return apiError.ErrInternalServerError
	}
	return nil
}
