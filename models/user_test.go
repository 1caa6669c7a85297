package models

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("ValidatePassword(short) = nil, want error")
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("ValidatePassword(longenough) = %v, want nil", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user := &User{HashedPassword: string(hashed)}

	if err := user.VerifyPassword("secret123"); err != nil {
		t.Errorf("VerifyPassword(correct) = %v, want nil", err)
	}
	if err := user.VerifyPassword("wrong"); err == nil {
		t.Error("VerifyPassword(wrong) = nil, want error")
	}
}

func TestDisplayName(t *testing.T) {
	u := &User{Fullname: "Ada Obi", Username: "ada"}
	if got := u.DisplayName(); got != "Ada Obi" {
		t.Errorf("DisplayName = %q, want %q", got, "Ada Obi")
	}
	u.Fullname = ""
	if got := u.DisplayName(); got != "ada" {
		t.Errorf("DisplayName = %q, want %q", got, "ada")
	}
}

func TestConformInput(t *testing.T) {
	request := &SignupRequest{
		Fullname: "  Ada Obi  ",
		Username: "  AdaObi ",
		Email:    " ADA@Example.COM ",
	}
	if err := ConformInput(request); err != nil {
		t.Fatal(err)
	}
	if request.Fullname != "Ada Obi" {
		t.Errorf("Fullname = %q, want trimmed", request.Fullname)
	}
	if request.Username != "adaobi" {
		t.Errorf("Username = %q, want trimmed lowercase", request.Username)
	}
	if request.Email != "ada@example.com" {
		t.Errorf("Email = %q, want trimmed lowercase", request.Email)
	}
}
