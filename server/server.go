package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairhubng/repairhub/chat"
	"github.com/repairhubng/repairhub/config"
	"github.com/repairhubng/repairhub/db"
	"github.com/repairhubng/repairhub/mailingservices"
	"github.com/repairhubng/repairhub/services"
)

// Server holds the wired dependencies and the HTTP surface.
type Server struct {
	Config *config.Config
	Mail   *mailingservices.Mailgun

	AuthRepository         db.AuthRepository
	ChatRepository         db.ChatRepository
	RepairRepository       db.RepairRepository
	QuoteRepository        db.QuoteRepository
	ReviewRepository       db.ReviewRepository
	MediaRepository        db.MediaRepository
	NotificationRepository db.NotificationRepository

	AuthService         services.AuthService
	PasswordService     services.PasswordService
	RepairService       services.RepairService
	QuoteService        services.QuoteService
	ReviewService       services.ReviewService
	MediaService        services.MediaService
	NotificationService services.NotificationService

	Hub *chat.Hub
	DB  db.GormDB
}

// Start runs the HTTP server until an interrupt, then drains connections.
func (s *Server) Start() {
	r := s.setupRouter()

	port := s.Config.Port
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

// decode binds a JSON request body into v.
func decode(c *gin.Context, v interface{}) error {
	return c.ShouldBindJSON(v)
}
