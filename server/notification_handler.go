package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/repairhubng/repairhub/server/response"
)

func (s *Server) handleListNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		notifications, apiErr := s.NotificationService.ListNotifications(userID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "notifications retrieved", http.StatusOK, notifications, nil)
	}
}

func (s *Server) handleMarkNotificationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid notification id", http.StatusBadRequest, nil, err)
			return
		}

		userID := currentUserID(c)
		if apiErr := s.NotificationService.MarkRead(uint(id), userID); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "notification marked read", http.StatusOK, nil, nil)
	}
}
