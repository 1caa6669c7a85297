package models

import (
	"github.com/google/uuid"
)

const (
	RoleCustomer   = "Customer"
	RoleTechnician = "Technician"
	RoleAdmin      = "Admin"
)

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid" json:"id"`
	Name string    `gorm:"unique;not null" json:"name"`
}
