package db

import (
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// NotificationRepository interface
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	ListNotificationsForUser(userID uint) ([]models.Notification, error)
	MarkNotificationRead(id uint, userID uint) error
}

type notificationRepo struct {
	DB *gorm.DB
}

// NewNotificationRepo creates a new instance of NotificationRepository
func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

func (n *notificationRepo) CreateNotification(notification *models.Notification) error {
	return n.DB.Create(notification).Error
}

func (n *notificationRepo) ListNotificationsForUser(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(100).Find(&notifications).Error
	return notifications, err
}

func (n *notificationRepo) MarkNotificationRead(id uint, userID uint) error {
	return n.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}
