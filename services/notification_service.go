package services

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/messaging"
	"github.com/repairhubng/repairhub/db"
	apiError "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
)

// NotificationService persists in-app notifications and pushes them to the
// user's device through Firebase Cloud Messaging. Push is best effort; a
// failed push never fails the action that triggered it.
type NotificationService interface {
	Notify(userID uint, kind, message string)
	MessageSent(ctx context.Context, message *models.Message)
	ListNotifications(userID uint) ([]models.Notification, *apiError.Error)
	MarkRead(id uint, userID uint) *apiError.Error
}

type notificationService struct {
	notificationRepo db.NotificationRepository
	authRepo         db.AuthRepository
	fcm              *messaging.Client
}

// NewNotificationService instantiates a notificationService. fcm may be nil
// when push credentials are not configured.
func NewNotificationService(notificationRepo db.NotificationRepository, authRepo db.AuthRepository, fcm *messaging.Client) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		authRepo:         authRepo,
		fcm:              fcm,
	}
}

func (n *notificationService) Notify(userID uint, kind, message string) {
	notification := &models.Notification{
		UserID:  userID,
		Kind:    kind,
		Message: message,
	}
	if err := n.notificationRepo.CreateNotification(notification); err != nil {
		log.Printf("persist notification for user %d: %v", userID, err)
	}
	n.push(userID, kind, message)
}

// MessageSent notifies the receiver of a new chat message.
func (n *notificationService) MessageSent(ctx context.Context, message *models.Message) {
	sender, err := n.authRepo.FindUserByID(message.SenderID)
	senderName := "Someone"
	if err != nil {
		log.Printf("find sender %d: %v", message.SenderID, err)
	} else {
		senderName = sender.DisplayName()
	}
	n.Notify(message.ReceiverID, models.NotificationKindMessage,
		fmt.Sprintf("New message from %s", senderName))
}

func (n *notificationService) push(userID uint, kind, body string) {
	if n.fcm == nil {
		return
	}
	user, err := n.authRepo.FindUserByID(userID)
	if err != nil {
		log.Printf("find user %d for push: %v", userID, err)
		return
	}
	if user.DeviceToken == "" {
		return
	}

	_, err = n.fcm.Send(context.Background(), &messaging.Message{
		Token: user.DeviceToken,
		Notification: &messaging.Notification{
			Title: "RepairHub",
			Body:  body,
		},
		Data: map[string]string{"kind": kind},
	})
	if err != nil {
		log.Printf("push to user %d: %v", userID, err)
	}
}

func (n *notificationService) ListNotifications(userID uint) ([]models.Notification, *apiError.Error) {
	notifications, err := n.notificationRepo.ListNotificationsForUser(userID)
	if err != nil {
		log.Printf("list notifications for user %d: %v", userID, err)
		return nil, apiError.ErrInternalServerError
	}
	return notifications, nil
}

func (n *notificationService) MarkRead(id uint, userID uint) *apiError.Error {
	if err := n.notificationRepo.MarkNotificationRead(id, userID); err != nil {
		log.Printf("mark notification %d read: %v", id, err)
		return apiError.ErrInternalServerError
	}
	return nil
}
