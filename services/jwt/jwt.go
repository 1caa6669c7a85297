package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// AccessTokenValidity is how long access tokens last
	AccessTokenValidity = time.Hour * 24
	// RefreshTokenValidity is how long refresh tokens last
	RefreshTokenValidity = time.Hour * 24 * 7
	// PasswordResetTokenValidity bounds the reset-link window
	PasswordResetTokenValidity = time.Minute * 20
)

// GenerateTokenPair returns an access token and a refresh token
func GenerateTokenPair(email string, secret string, isAdmin bool, userID uint, role string) (string, string, error) {
	accessClaims := jwt.MapClaims{
		"user_id":  userID,
		"email":    email,
		"role":     role,
		"is_admin": isAdmin,
		"type":     "access",
		"exp":      time.Now().Add(AccessTokenValidity).Unix(),
	}
	accessToken, err := generateToken(accessClaims, secret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"type":    "refresh",
		"exp":     time.Now().Add(RefreshTokenValidity).Unix(),
	}
	refreshToken, err := generateToken(refreshClaims, secret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GeneratePasswordResetToken returns a short-lived token for reset links
func GeneratePasswordResetToken(email string, secret string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"type":  "password_reset",
		"exp":   time.Now().Add(PasswordResetTokenValidity).Unix(),
	}
	return generateToken(claims, secret)
}

func generateToken(claims jwt.MapClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAndGetClaims validates a token string and returns its claims
func ValidateAndGetClaims(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
