package jwt

import "testing"

const testSecret = "test-secret"

func TestGenerateAndValidateTokenPair(t *testing.T) {
	access, refresh, err := GenerateTokenPair("ada@example.com", testSecret, false, 42, "Customer")
	if err != nil {
		t.Fatal(err)
	}
	if access == "" || refresh == "" {
		t.Fatal("empty token in pair")
	}

	claims, err := ValidateAndGetClaims(access, testSecret)
	if err != nil {
		t.Fatalf("ValidateAndGetClaims(access) = %v", err)
	}
	if claims["email"] != "ada@example.com" {
		t.Errorf("email claim = %v, want ada@example.com", claims["email"])
	}
	if claims["type"] != "access" {
		t.Errorf("type claim = %v, want access", claims["type"])
	}
	if id, ok := claims["user_id"].(float64); !ok || uint(id) != 42 {
		t.Errorf("user_id claim = %v, want 42", claims["user_id"])
	}

	refreshClaims, err := ValidateAndGetClaims(refresh, testSecret)
	if err != nil {
		t.Fatalf("ValidateAndGetClaims(refresh) = %v", err)
	}
	if refreshClaims["type"] != "refresh" {
		t.Errorf("refresh type claim = %v, want refresh", refreshClaims["type"])
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	access, _, err := GenerateTokenPair("ada@example.com", testSecret, false, 1, "Customer")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateAndGetClaims(access, "another-secret"); err == nil {
		t.Error("ValidateAndGetClaims with wrong secret = nil, want error")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, err := ValidateAndGetClaims("not.a.token", testSecret); err == nil {
		t.Error("ValidateAndGetClaims(garbage) = nil, want error")
	}
}

func TestPasswordResetToken(t *testing.T) {
	token, err := GeneratePasswordResetToken("ada@example.com", testSecret)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ValidateAndGetClaims(token, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if claims["type"] != "password_reset" {
		t.Errorf("type claim = %v, want password_reset", claims["type"])
	}
	if claims["email"] != "ada@example.com" {
		t.Errorf("email claim = %v, want ada@example.com", claims["email"])
	}
}
