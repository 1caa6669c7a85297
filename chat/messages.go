package chat

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/repairhubng/repairhub/models"
)

// MessageSnapshot is one delivery of the focused conversation's messages,
// ordered by SentAt ascending.
type MessageSnapshot struct {
	ConversationID uuid.UUID
	Messages       []models.Message
}

// MessageSync maintains the live message list for exactly one focused
// conversation at a time. It is either idle (no focus) or subscribed to a
// single conversation; switching focus tears down the old subscription
// before opening the new one, and a snapshot that arrives for a
// conversation that is no longer focused is discarded, never applied.
type MessageSync struct {
	store Store
	conv  *ConversationSync

	mu       sync.Mutex
	focused  uuid.UUID
	gen      int
	cancel   func()
	messages []models.Message

	// onSnapshot runs with the internal lock held and must not call back
	// into the synchronizer.
	onSnapshot func(MessageSnapshot)
}

// NewMessageSync wires itself to the conversation synchronizer: focusing a
// conversation there retargets this one, clearing the focus idles it.
func NewMessageSync(store Store, conv *ConversationSync) *MessageSync {
	m := &MessageSync{store: store, conv: conv}
	conv.OnSelect(func(conversationID uuid.UUID) {
		if conversationID == uuid.Nil {
			m.Clear()
			return
		}
		m.focus(conversationID)
	})
	return m
}

func (m *MessageSync) OnSnapshot(fn func(MessageSnapshot)) {
	m.mu.Lock()
	m.onSnapshot = fn
	m.mu.Unlock()
}

func (m *MessageSync) focus(conversationID uuid.UUID) {
	m.mu.Lock()
	if m.cancel != nil {
		// never two message subscriptions at once
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	gen := m.gen
	m.focused = conversationID
	m.messages = nil
	signals, cancel := m.store.Watch(TopicMessages, conversationID.String())
	m.cancel = cancel
	m.mu.Unlock()

	go m.run(signals, conversationID, gen)
}

// Clear drops the focus and cancels the subscription.
func (m *MessageSync) Clear() {
	m.mu.Lock()
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.focused = uuid.Nil
	m.messages = nil
	m.mu.Unlock()
}

func (m *MessageSync) run(signals <-chan struct{}, conversationID uuid.UUID, gen int) {
	m.apply(context.Background(), conversationID, gen)
	for range signals {
		m.apply(context.Background(), conversationID, gen)
	}
}

func (m *MessageSync) apply(ctx context.Context, conversationID uuid.UUID, gen int) {
	msgs, err := m.store.MessagesFor(ctx, conversationID)
	if err != nil {
		log.Printf("chat: list messages for %s: %v", conversationID, err)
		return
	}

	m.mu.Lock()
	if gen != m.gen || m.focused != conversationID {
		// stale delivery from a subscription already torn down
		m.mu.Unlock()
		return
	}
	m.messages = msgs
	if m.onSnapshot != nil {
		m.onSnapshot(MessageSnapshot{ConversationID: conversationID, Messages: msgs})
	}
	m.mu.Unlock()

	m.reconcile(ctx, conversationID, gen)
}

func (m *MessageSync) stillFocused(conversationID uuid.UUID, gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen && m.focused == conversationID
}

// reconcile flips IsRead on every unread message addressed to self in the
// focused conversation. The updates are independent writes: one failure is
// logged and skipped, never rolling back or blocking its siblings. The
// decrement it reports is only an optimistic hint; the next snapshot
// recount self-heals any drift.
func (m *MessageSync) reconcile(ctx context.Context, conversationID uuid.UUID, gen int) {
	selfID := m.conv.SelfID()
	if selfID == 0 {
		return
	}
	unread, err := m.store.UnreadFor(ctx, conversationID, selfID)
	if err != nil {
		log.Printf("chat: unread query for %s: %v", conversationID, err)
		return
	}
	if len(unread) == 0 {
		return
	}
	if !m.stillFocused(conversationID, gen) {
		// focus moved while the unread query ran; the new focus
		// reconciles itself
		return
	}
	reconciled := 0
	for i := range unread {
		if err := m.store.MarkMessageRead(ctx, unread[i].ID); err != nil {
			log.Printf("chat: mark message %s read: %v", unread[i].ID, err)
			continue
		}
		reconciled++
	}
	if reconciled > 0 {
		m.conv.markReconciled(conversationID, reconciled)
	}
}

// Send validates, resolves the conversation, and appends the message. It
// returns once the message write is acknowledged; the sender's own view
// updates through the subscription like everyone else's, so local state is
// never a second source of truth. The conversation pointer update is a
// separate sequential write: if it fails the pointer goes stale until the
// next send, but message data is never corrupted.
func (m *MessageSync) Send(ctx context.Context, receiverID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	selfID := m.conv.SelfID()
	if selfID == 0 {
		return nil, ErrNotAuthenticated
	}
	if receiverID == selfID {
		return nil, ErrInvalidReceiver
	}

	conversationID, err := m.conv.GetOrCreate(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       selfID,
		ReceiverID:     receiverID,
		Text:           text,
	}
	if err := m.store.CreateMessage(ctx, message); err != nil {
		return nil, wrapStore(err, "create message")
	}
	if err := m.store.TouchConversation(ctx, conversationID, text, message.SentAt); err != nil {
		log.Printf("chat: touch conversation %s: %v", conversationID, err)
	}
	return message, nil
}

// Messages returns a copy of the focused conversation's current list.
func (m *MessageSync) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Focused returns the focused conversation id, or uuid.Nil when idle.
func (m *MessageSync) Focused() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}
