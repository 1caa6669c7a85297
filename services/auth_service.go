package services

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/repairhubng/repairhub/config"
	"github.com/repairhubng/repairhub/db"
	apiError "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/services/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService interface
type AuthService interface {
	SignupUser(request *models.SignupRequest) (*models.UserResponse, *apiError.Error)
	LoginUser(request *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	GoogleLoginUser(authPayload *models.GoogleAuthResponse) (*models.LoginResponse, *apiError.Error)
	GetUserProfile(userID uint) (*models.User, *apiError.Error)
	EditUserProfile(userID uint, request *models.EditProfileRequest) *apiError.Error
	UpdateUserImage(userID uint, avatarURL, thumbnailURL string) *apiError.Error
	UpdateDeviceToken(userID uint, token string) *apiError.Error
	LogoutUser(email, token string) *apiError.Error
}

// authService struct
type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
}

// NewAuthService instantiates an authService
func NewAuthService(authRepo db.AuthRepository, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
	}
}

func (a *authService) SignupUser(request *models.SignupRequest) (*models.UserResponse, *apiError.Error) {
	if err := models.ConformInput(request); err != nil {
		log.Printf("conform error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if err := models.ValidatePassword(request.Password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	if err := a.authRepo.IsEmailExist(request.Email); err != nil {
		return nil, apiError.New("email already in use", http.StatusConflict)
	}
	if err := a.authRepo.IsPhoneExist(request.Telephone); err != nil {
		return nil, apiError.New("telephone already in use", http.StatusConflict)
	}

	role, err := a.authRepo.FindRoleByName(request.Role)
	if err != nil {
		log.Printf("find role %q: %v", request.Role, err)
		return nil, apiError.New("invalid role", http.StatusBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("hash password: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	user := &models.User{
		Fullname:       request.Fullname,
		Username:       request.Username,
		Telephone:      request.Telephone,
		Email:          request.Email,
		HashedPassword: string(hashed),
		IsEmailActive:  true,
		RoleID:         role.ID,
	}
	created, err := a.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("create user: %v", err)
		if uniqueErr := apiError.GetUniqueContraintError(err); uniqueErr != nil {
			return nil, uniqueErr
		}
		return nil, apiError.ErrInternalServerError
	}

	return &models.UserResponse{
		ID:        created.ID,
		Fullname:  created.Fullname,
		Username:  created.Username,
		Telephone: created.Telephone,
		Email:     created.Email,
		RoleName:  role.Name,
	}, nil
}

func (a *authService) LoginUser(request *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	user, err := a.authRepo.FindUserByEmail(strings.ToLower(request.Email))
	if err != nil {
		return nil, apiError.ErrInvalidPassword
	}
	if user.IsBlocked {
		return nil, apiError.New("account is blocked", http.StatusForbidden)
	}
	if !user.IsEmailActive {
		return nil, apiError.New(apiError.InActiveUserError.Error(), http.StatusUnauthorized)
	}
	if err := user.VerifyPassword(request.Password); err != nil {
		return nil, apiError.ErrInvalidPassword
	}

	return a.buildLoginResponse(user)
}

// GoogleLoginUser signs a Google-authenticated user in, creating the
// account on first login.
func (a *authService) GoogleLoginUser(authPayload *models.GoogleAuthResponse) (*models.LoginResponse, *apiError.Error) {
	email := strings.ToLower(authPayload.Email)
	user, err := a.authRepo.FindUserByEmail(email)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("find user by email: %v", err)
			return nil, apiError.ErrInternalServerError
		}
		role, roleErr := a.authRepo.FindRoleByName(models.RoleCustomer)
		if roleErr != nil {
			log.Printf("find customer role: %v", roleErr)
			return nil, apiError.ErrInternalServerError
		}
		user = &models.User{
			Fullname:      authPayload.Name,
			Username:      strings.Split(email, "@")[0],
			Email:         email,
			IsEmailActive: true,
			IsSocial:      true,
			AvatarURL:     authPayload.Picture,
			ThumbNailURL:  authPayload.Picture,
			RoleID:        role.ID,
		}
		user, err = a.authRepo.CreateUser(user)
		if err != nil {
			log.Printf("create social user: %v", err)
			return nil, apiError.ErrInternalServerError
		}
		user.Role = *role
	}
	if user.IsBlocked {
		return nil, apiError.New("account is blocked", http.StatusForbidden)
	}

	return a.buildLoginResponse(user)
}

func (a *authService) buildLoginResponse(user *models.User) (*models.LoginResponse, *apiError.Error) {
	isAdmin := user.Role.Name == models.RoleAdmin
	accessToken, refreshToken, err := jwt.GenerateTokenPair(user.Email, a.Config.JWTSecret, isAdmin, user.ID, user.Role.Name)
	if err != nil {
		log.Printf("generate token pair: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:        user.ID,
			Fullname:  user.Fullname,
			Username:  user.Username,
			Telephone: user.Telephone,
			Email:     user.Email,
			RoleName:  user.Role.Name,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (a *authService) GetUserProfile(userID uint) (*models.User, *apiError.Error) {
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.ErrNotFound
		}
		log.Printf("find user %d: %v", userID, err)
		return nil, apiError.ErrInternalServerError
	}
	return user, nil
}

func (a *authService) EditUserProfile(userID uint, request *models.EditProfileRequest) *apiError.Error {
	if err := models.ConformInput(request); err != nil {
		log.Printf("conform error: %v", err)
		return apiError.ErrInternalServerError
	}
	if err := a.authRepo.EditUserProfile(userID, request); err != nil {
		log.Printf("edit profile for user %d: %v", userID, err)
		if uniqueErr := apiError.GetUniqueContraintError(err); uniqueErr != nil {
			return uniqueErr
		}
		return apiError.ErrInternalServerError
	}
	return nil
}

func (a *authService) UpdateUserImage(userID uint, avatarURL, thumbnailURL string) *apiError.Error {
	if err := a.authRepo.UpdateUserImage(userID, avatarURL, thumbnailURL); err != nil {
		log.Printf("update image for user %d: %v", userID, err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (a *authService) UpdateDeviceToken(userID uint, token string) *apiError.Error {
	if err := a.authRepo.UpdateDeviceToken(userID, token); err != nil {
		log.Printf("update device token for user %d: %v", userID, err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (a *authService) LogoutUser(email, token string) *apiError.Error {
	blacklist := &models.Blacklist{Email: email, Token: token}
	if err := a.authRepo.AddToBlacklist(blacklist); err != nil {
		log.Printf("blacklist token: %v", err)
		return apiError.New(fmt.Sprintf("logout failed: %v", err), http.StatusInternalServerError)
	}
	return nil
}
