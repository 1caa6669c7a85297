package main

import (
	"context"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/repairhubng/repairhub/chat"
	"github.com/repairhubng/repairhub/config"
	"github.com/repairhubng/repairhub/db"
	"github.com/repairhubng/repairhub/mailingservices"
	"github.com/repairhubng/repairhub/server"
	"github.com/repairhubng/repairhub/services"
	"google.golang.org/api/option"
)

// initFirebase returns a messaging client, or nil when push credentials
// are not configured.
func initFirebase(conf *config.Config) *messaging.Client {
	if conf.GoogleApplicationCredentials == "" {
		log.Println("firebase credentials not configured, push disabled")
		return nil
	}
	opt := option.WithCredentialsFile(conf.GoogleApplicationCredentials)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Fatalf("error initializing Firebase app: %v", err)
	}
	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Fatalf("error getting Messaging client: %v", err)
	}
	log.Println("Firebase Messaging client initialized")
	return client
}

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	messagingClient := initFirebase(conf)

	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init(conf.MgDomain, conf.MailgunApiKey, conf.MgEmailFrom)

	gormDB := db.GetDB(conf)
	hub := chat.NewHub()

	authRepo := db.NewAuthRepo(gormDB)
	chatRepo := db.NewChatRepo(gormDB, hub)
	repairRepo := db.NewRepairRepo(gormDB)
	quoteRepo := db.NewQuoteRepo(gormDB)
	reviewRepo := db.NewReviewRepo(gormDB)
	mediaRepo := db.NewMediaRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)

	authService := services.NewAuthService(authRepo, conf)
	passwordService := services.NewPasswordService(authRepo, mailgunClient, conf)
	notificationService := services.NewNotificationService(notificationRepo, authRepo, messagingClient)
	repairService := services.NewRepairService(repairRepo, authRepo, notificationService)
	quoteService := services.NewQuoteService(quoteRepo, repairRepo, notificationService)
	reviewService := services.NewReviewService(reviewRepo, repairRepo)
	mediaService := services.NewMediaService(mediaRepo, conf)

	s := &server.Server{
		Config:                 conf,
		Mail:                   mailgunClient,
		AuthRepository:         authRepo,
		ChatRepository:         chatRepo,
		RepairRepository:       repairRepo,
		QuoteRepository:        quoteRepo,
		ReviewRepository:       reviewRepo,
		MediaRepository:        mediaRepo,
		NotificationRepository: notificationRepo,
		AuthService:            authService,
		PasswordService:        passwordService,
		RepairService:          repairService,
		QuoteService:           quoteService,
		ReviewService:          reviewService,
		MediaService:           mediaService,
		NotificationService:    notificationService,
		Hub:                    hub,
		DB:                     *gormDB,
	}

	s.Start()
}
