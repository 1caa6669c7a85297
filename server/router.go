package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute * 5,
		Limit: 3,
	})
	limitRate := limitRateForPasswordReset(store)

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", s.handleLogin())
	apirouter.GET("/google/login", s.HandleGoogleLogin())
	apirouter.GET("/auth/google/callback", s.HandleGoogleCallback())
	apirouter.POST("/password/forgot", limitRate, s.HandleForgotPassword())
	apirouter.POST("/password/reset/:token", s.ResetPassword())
	apirouter.GET("/technicians/:technicianID/reviews", s.handleGetTechnicianReviews())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.PUT("/me", s.handleEditUserProfile())
	authorized.PUT("/me/avatar", s.handleUpdateUserAvatar())
	authorized.POST("/me/device-token", s.handleUpdateDeviceToken())

	authorized.POST("/repair-requests", s.handleCreateRepairRequest())
	authorized.GET("/repair-requests", s.handleListMyRepairRequests())
	authorized.GET("/repair-requests/open", s.TechnicianOnly(), s.handleListOpenRepairRequests())
	authorized.GET("/repair-requests/assigned", s.TechnicianOnly(), s.handleListAssignedRepairRequests())
	authorized.GET("/repair-requests/:id", s.handleGetRepairRequest())
	authorized.PATCH("/repair-requests/:id/status", s.handleUpdateRepairRequestStatus())
	authorized.GET("/technicians/nearby", s.handleNearbyTechnicians())

	authorized.POST("/quotes", s.TechnicianOnly(), s.handleSubmitQuote())
	authorized.GET("/repair-requests/:id/quotes", s.handleListQuotes())
	authorized.POST("/quotes/:id/accept", s.handleAcceptQuote())

	authorized.POST("/reviews", s.handleCreateReview())

	authorized.GET("/notifications", s.handleListNotifications())
	authorized.PUT("/notifications/:id/read", s.handleMarkNotificationRead())

	authorized.GET("/ws/chat", s.handleChatSocket())
	authorized.GET("/conversations", s.handleListConversations())
	authorized.GET("/conversations/:id/messages", s.handleListMessages())
	authorized.GET("/conversations/unread-count", s.handleUnreadCount())
	authorized.POST("/messages", s.handleSendMessage())
}
