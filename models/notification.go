package models

const (
	NotificationKindMessage = "message"
	NotificationKindQuote   = "quote"
	NotificationKindStatus  = "status"
)

// Notification represents notifications sent to users
type Notification struct {
	Model
	UserID  uint   `json:"user_id" gorm:"index;not null"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	IsRead  bool   `json:"is_read" gorm:"default:false"`
}
