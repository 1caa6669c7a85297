package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/repairhubng/repairhub/chat"
	errs "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/server/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleChatSocket upgrades to a websocket and binds a chat session to the
// connection. Commands come in as JSON, snapshots and errors go out as
// events; closing the socket tears the session down.
func (s *Server) handleChatSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade for user %d: %v", user.ID, err)
			return
		}

		session := chat.NewSession(s.ChatRepository, user, s.NotificationService)
		if err := session.Start(); err != nil {
			log.Printf("start chat session for user %d: %v", user.ID, err)
			conn.Close()
			return
		}

		errEvents := make(chan chat.Event, 8)
		done := make(chan struct{})

		go s.chatWritePump(conn, session, errEvents, done)
		s.chatReadPump(conn, session, errEvents)

		close(done)
		session.Stop()
		conn.Close()
	}
}

func (s *Server) chatReadPump(conn *websocket.Conn, session *chat.Session, errEvents chan<- chat.Event) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd chat.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat socket read: %v", err)
			}
			return
		}
		if err := session.Handle(context.Background(), cmd); err != nil {
			select {
			case errEvents <- chat.Event{Type: chat.EventError, Error: err.Error()}:
			default:
			}
		}
	}
}

func (s *Server) chatWritePump(conn *websocket.Conn, session *chat.Session, errEvents <-chan chat.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-session.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case ev := <-errEvents:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// handleListConversations is the REST fallback for clients without a socket.
func (s *Server) handleListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		conversations, err := s.ChatRepository.ConversationsFor(c.Request.Context(), userID)
		if err != nil {
			log.Printf("list conversations for user %d: %v", userID, err)
			response.JSON(c, "", http.StatusServiceUnavailable, nil, errs.New("store unavailable", http.StatusServiceUnavailable))
			return
		}
		counts, err := s.ChatRepository.UnreadCounts(c.Request.Context(), userID)
		if err != nil {
			log.Printf("unread counts for user %d: %v", userID, err)
			counts = nil
		}

		views := make([]models.ConversationView, 0, len(conversations))
		total := 0
		for _, conversation := range conversations {
			unread := counts[conversation.ID]
			total += unread
			views = append(views, models.ConversationView{Conversation: conversation, UnreadCount: unread})
		}
		response.JSON(c, "conversations retrieved", http.StatusOK, gin.H{
			"conversations": views,
			"total_unread":  total,
		}, nil)
	}
}

func (s *Server) handleListMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.JSON(c, "invalid conversation id", http.StatusBadRequest, nil, err)
			return
		}

		userID := currentUserID(c)
		conversations, err := s.ChatRepository.ConversationsFor(c.Request.Context(), userID)
		if err != nil {
			log.Printf("list conversations for user %d: %v", userID, err)
			response.JSON(c, "", http.StatusServiceUnavailable, nil, errs.New("store unavailable", http.StatusServiceUnavailable))
			return
		}
		member := false
		for i := range conversations {
			if conversations[i].ID == conversationID {
				member = true
				break
			}
		}
		if !member {
			response.JSON(c, "", http.StatusNotFound, nil, errs.ErrNotFound)
			return
		}

		messages, err := s.ChatRepository.MessagesFor(c.Request.Context(), conversationID)
		if err != nil {
			log.Printf("list messages for %s: %v", conversationID, err)
			response.JSON(c, "", http.StatusServiceUnavailable, nil, errs.New("store unavailable", http.StatusServiceUnavailable))
			return
		}
		response.JSON(c, "messages retrieved", http.StatusOK, messages, nil)
	}
}

func (s *Server) handleUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		counts, err := s.ChatRepository.UnreadCounts(c.Request.Context(), userID)
		if err != nil {
			log.Printf("unread counts for user %d: %v", userID, err)
			response.JSON(c, "", http.StatusServiceUnavailable, nil, errs.New("store unavailable", http.StatusServiceUnavailable))
			return
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		response.JSON(c, "unread count retrieved", http.StatusOK, gin.H{"total_unread": total}, nil)
	}
}

// handleSendMessage sends one message over a short-lived session, so REST
// sends share the socket path's validation and conversation resolution.
func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.SendMessageRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		session := chat.NewSession(s.ChatRepository, user, s.NotificationService)
		if err := session.Start(); err != nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, err)
			return
		}
		defer session.Stop()

		message, err := session.Messages.Send(c.Request.Context(), request.ReceiverID, request.Text)
		if err != nil {
			response.JSON(c, "", chatErrorStatus(err), nil, err)
			return
		}
		go s.NotificationService.MessageSent(context.Background(), message)
		response.JSON(c, "message sent", http.StatusCreated, message, nil)
	}
}

func chatErrorStatus(err error) int {
	switch err {
	case chat.ErrEmptyMessage, chat.ErrInvalidReceiver:
		return http.StatusBadRequest
	case chat.ErrNotAuthenticated:
		return http.StatusUnauthorized
	case chat.ErrConversationNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}
