package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/server/response"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.SignupRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		user, apiErr := s.AuthService.SignupUser(&request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "signup successful", http.StatusCreated, user, nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.LoginRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		login, apiErr := s.AuthService.LoginUser(&request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, login, nil)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		token, _ := c.Get("access_token")
		accessToken, _ := token.(string)
		if user == nil || accessToken == "" {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		if apiErr := s.AuthService.LogoutUser(user.Email, accessToken); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		user, apiErr := s.AuthService.GetUserProfile(userID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "profile retrieved", http.StatusOK, user, nil)
	}
}

func (s *Server) handleEditUserProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.EditProfileRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		userID := currentUserID(c)
		if apiErr := s.AuthService.EditUserProfile(userID, &request); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "profile updated", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleUpdateUserAvatar() gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			response.JSON(c, "missing or invalid file", http.StatusBadRequest, nil, err)
			return
		}

		userID := currentUserID(c)
		avatarURL, thumbnailURL, apiErr := s.MediaService.UploadAvatar(c.Request.Context(), fileHeader, userID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		if apiErr := s.AuthService.UpdateUserImage(userID, avatarURL, thumbnailURL); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "avatar updated", http.StatusOK, gin.H{
			"avatar_url":    avatarURL,
			"thumbnail_url": thumbnailURL,
		}, nil)
	}
}

func (s *Server) handleUpdateDeviceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			DeviceToken string `json:"device_token" binding:"required"`
		}
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		userID := currentUserID(c)
		if apiErr := s.AuthService.UpdateDeviceToken(userID, request.DeviceToken); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "device token updated", http.StatusOK, nil, nil)
	}
}

func (s *Server) googleOauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.Config.GoogleClientID,
		ClientSecret: s.Config.GoogleClientSecret,
		RedirectURL:  s.Config.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func generateOauthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *Server) HandleGoogleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := generateOauthState()
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		c.SetCookie("oauthstate", state, 600, "/", "", false, true)
		c.Redirect(http.StatusTemporaryRedirect, s.googleOauthConfig().AuthCodeURL(state))
	}
}

func (s *Server) HandleGoogleCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		savedState, err := c.Cookie("oauthstate")
		if err != nil || c.Query("state") != savedState {
			response.JSON(c, "invalid oauth state", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		conf := s.googleOauthConfig()
		token, err := conf.Exchange(c.Request.Context(), c.Query("code"))
		if err != nil {
			response.JSON(c, "code exchange failed", http.StatusUnauthorized, nil, err)
			return
		}

		client := conf.Client(c.Request.Context(), token)
		resp, err := client.Get(googleUserInfoURL)
		if err != nil {
			response.JSON(c, "failed to fetch user info", http.StatusInternalServerError, nil, err)
			return
		}
		defer resp.Body.Close()

		var authPayload models.GoogleAuthResponse
		if err := json.NewDecoder(resp.Body).Decode(&authPayload); err != nil {
			response.JSON(c, "failed to decode user info", http.StatusInternalServerError, nil, err)
			return
		}
		if !authPayload.VerifiedEmail {
			response.JSON(c, "google email not verified", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		login, apiErr := s.AuthService.GoogleLoginUser(&authPayload)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, login, nil)
	}
}
