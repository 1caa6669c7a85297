package models

import "fmt"

const (
	RequestStatusOpen       = "open"
	RequestStatusQuoted     = "quoted"
	RequestStatusAccepted   = "accepted"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
)

// legal status transitions for a repair request
var requestTransitions = map[string][]string{
	RequestStatusOpen:       {RequestStatusQuoted, RequestStatusAccepted, RequestStatusCancelled},
	RequestStatusQuoted:     {RequestStatusAccepted, RequestStatusCancelled},
	RequestStatusAccepted:   {RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusInProgress: {RequestStatusCompleted, RequestStatusCancelled},
}

// RepairRequest is a customer's ask for a device fix
type RepairRequest struct {
	Model
	UserID       uint    `gorm:"index;not null" json:"user_id"`
	TechnicianID *uint   `gorm:"index" json:"technician_id,omitempty"`
	DeviceType   string  `json:"device_type" conform:"trim"`
	Brand        string  `json:"brand" conform:"trim"`
	DeviceModel  string  `json:"device_model" conform:"trim"`
	Description  string  `gorm:"type:text" json:"description" conform:"trim"`
	Status       string  `gorm:"default:open;index" json:"status"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Media        []Media `gorm:"foreignKey:RepairRequestID" json:"media"`
	Quotes       []Quote `gorm:"foreignKey:RepairRequestID" json:"quotes,omitempty"`
}

// CanTransition reports whether the status may move from -> to
func CanTransition(from, to string) bool {
	for _, allowed := range requestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a descriptive error for an illegal move
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("cannot move repair request from %q to %q", from, to)
	}
	return nil
}

type CreateRepairRequest struct {
	DeviceType  string  `form:"device_type" binding:"required" conform:"trim"`
	Brand       string  `form:"brand" conform:"trim"`
	DeviceModel string  `form:"device_model" conform:"trim"`
	Description string  `form:"description" binding:"required" conform:"trim"`
	Latitude    float64 `form:"latitude"`
	Longitude   float64 `form:"longitude"`
}

// TechnicianMatch is a technician decorated with the distance to a request
type TechnicianMatch struct {
	UserResponse
	Skills     string  `json:"skills"`
	DistanceKm float64 `json:"distance_km"`
}
