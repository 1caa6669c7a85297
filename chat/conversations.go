package chat

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/repairhubng/repairhub/models"
)

const profileFetchTimeout = 5 * time.Second

// ConversationSnapshot is one delivery of the live conversation list.
type ConversationSnapshot struct {
	Conversations []models.ConversationView
	TotalUnread   int
}

// ConversationSync maintains a live, sorted list of every conversation the
// current user participates in, with per-conversation unread counts, and
// tracks which conversation is focused. It owns at most one standing
// subscription; Start/Stop bound its lifetime to the user's session.
type ConversationSync struct {
	store Store

	mu          sync.Mutex
	selfID      uint
	gen         int // bumped on every re-subscribe or Stop; stale refreshes compare and drop
	cancel      func()
	list        []models.ConversationView
	totalUnread int
	focused     uuid.UUID

	// onSnapshot runs with the internal lock held and must not call back
	// into the synchronizer.
	onSnapshot func(ConversationSnapshot)
	onSelect   func(uuid.UUID)
}

func NewConversationSync(store Store) *ConversationSync {
	return &ConversationSync{store: store}
}

func (s *ConversationSync) OnSnapshot(fn func(ConversationSnapshot)) {
	s.mu.Lock()
	s.onSnapshot = fn
	s.mu.Unlock()
}

func (s *ConversationSync) OnSelect(fn func(uuid.UUID)) {
	s.mu.Lock()
	s.onSelect = fn
	s.mu.Unlock()
}

// Start opens the standing subscription for selfID. Calling it again with
// the same user just forces a refresh; calling it with a different user
// tears down the previous subscription first, so subscriptions never leak
// across identity changes.
func (s *ConversationSync) Start(selfID uint) error {
	if selfID == 0 {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	if s.cancel != nil && s.selfID == selfID {
		gen := s.gen
		s.mu.Unlock()
		s.refresh(context.Background(), gen)
		return nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.selfID = selfID
	s.focused = uuid.Nil
	s.gen++
	gen := s.gen
	signals, cancel := s.store.Watch(TopicConversations, userKey(selfID))
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(signals, gen)
	return nil
}

// Stop cancels the subscription. No snapshot callback fires after the
// generation bump, even if a refresh is already in flight.
func (s *ConversationSync) Stop() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.selfID = 0
	s.list = nil
	s.totalUnread = 0
	s.focused = uuid.Nil
	s.mu.Unlock()
}

func (s *ConversationSync) run(signals <-chan struct{}, gen int) {
	s.refresh(context.Background(), gen)
	for range signals {
		s.refresh(context.Background(), gen)
	}
}

func (s *ConversationSync) refresh(ctx context.Context, gen int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	selfID := s.selfID
	s.mu.Unlock()

	conversations, err := s.store.ConversationsFor(ctx, selfID)
	if err != nil {
		log.Printf("chat: list conversations for user %d: %v", selfID, err)
		return
	}
	counts, err := s.store.UnreadCounts(ctx, selfID)
	if err != nil {
		log.Printf("chat: unread counts for user %d: %v", selfID, err)
		counts = nil
	}

	views := make([]models.ConversationView, 0, len(conversations))
	total := 0
	for _, c := range conversations {
		unread := counts[c.ID]
		total += unread
		views = append(views, models.ConversationView{Conversation: c, UnreadCount: unread})
	}
	sortConversations(views)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.list = views
	s.totalUnread = total
	if s.onSnapshot != nil {
		s.onSnapshot(s.snapshotLocked())
	}
	s.mu.Unlock()

	s.repairParticipantInfo(selfID, conversations)
}

// sortConversations orders by last activity, newest first. Conversations
// with no messages yet sort last; ties fall back to the conversation id so
// consecutive snapshots stay stable.
func sortConversations(views []models.ConversationView) {
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i].LastMessageAt, views[j].LastMessageAt
		switch {
		case a == nil && b == nil:
			return views[i].ID.String() < views[j].ID.String()
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return views[i].ID.String() < views[j].ID.String()
		default:
			return a.After(*b)
		}
	})
}

// repairParticipantInfo backfills stale or missing cached profiles for the
// other participant. It is fire-and-forget: failures are logged and never
// reach the caller, and rendering proceeds with the stale name meanwhile.
func (s *ConversationSync) repairParticipantInfo(selfID uint, conversations []models.Conversation) {
	for _, c := range conversations {
		other := c.OtherParticipant(selfID)
		if info, ok := c.ParticipantInfo.Get(other); ok && info.DisplayName != "" {
			continue
		}
		go func(conversationID uuid.UUID, other uint) {
			ctx, cancel := context.WithTimeout(context.Background(), profileFetchTimeout)
			defer cancel()
			profile, err := s.store.Profile(ctx, other)
			if err != nil {
				log.Printf("chat: fetch profile %d for repair: %v", other, err)
				return
			}
			if err := s.store.PatchParticipantInfo(ctx, conversationID, other, profile); err != nil {
				log.Printf("chat: patch participant info on %s: %v", conversationID, err)
			}
		}(c.ID, other)
	}
}

// Select focuses a conversation from the current list. An unknown id is an
// error, not a crash.
func (s *ConversationSync) Select(conversationID uuid.UUID) error {
	s.mu.Lock()
	found := false
	for i := range s.list {
		if s.list[i].ID == conversationID {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	s.focused = conversationID
	onSelect := s.onSelect
	s.mu.Unlock()

	if onSelect != nil {
		onSelect(conversationID)
	}
	return nil
}

// ClearSelection returns the synchronizer to the no-focus state.
func (s *ConversationSync) ClearSelection() {
	s.mu.Lock()
	s.focused = uuid.Nil
	onSelect := s.onSelect
	s.mu.Unlock()

	if onSelect != nil {
		onSelect(uuid.Nil)
	}
}

// GetOrCreate resolves the conversation for the pair {self, otherUserID},
// creating it on first contact. The search-then-create is not atomic: two
// users messaging each other for the first time in the same instant can
// still race a duplicate pair into existence.
func (s *ConversationSync) GetOrCreate(ctx context.Context, otherUserID uint) (uuid.UUID, error) {
	s.mu.Lock()
	selfID := s.selfID
	if selfID == 0 {
		s.mu.Unlock()
		return uuid.Nil, ErrNotAuthenticated
	}
	if otherUserID == selfID {
		s.mu.Unlock()
		return uuid.Nil, ErrInvalidReceiver
	}
	for i := range s.list {
		if s.list[i].IsPair(selfID, otherUserID) {
			id := s.list[i].ID
			s.mu.Unlock()
			return id, nil
		}
	}
	s.mu.Unlock()

	// The in-memory list can lag the store; check there before creating.
	existing, err := s.store.ConversationsFor(ctx, selfID)
	if err != nil {
		return uuid.Nil, wrapStore(err, "list conversations")
	}
	for i := range existing {
		if existing[i].IsPair(selfID, otherUserID) {
			return existing[i].ID, nil
		}
	}

	conversation := &models.Conversation{
		ID:               uuid.New(),
		ParticipantOneID: selfID,
		ParticipantTwoID: otherUserID,
		ParticipantInfo:  models.ParticipantInfo{},
	}
	// Profile seeding is best effort; a missing profile must not block creation.
	for _, id := range []uint{selfID, otherUserID} {
		profile, err := s.store.Profile(ctx, id)
		if err != nil {
			log.Printf("chat: seed profile %d: %v", id, err)
			continue
		}
		conversation.ParticipantInfo.Set(id, profile)
	}
	if err := s.store.CreateConversation(ctx, conversation); err != nil {
		return uuid.Nil, wrapStore(err, "create conversation")
	}
	return conversation.ID, nil
}

// markReconciled applies the optimistic unread decrement after read
// reconciliation. The next snapshot recount from live IsRead values is
// ground truth and overwrites whatever this produced.
func (s *ConversationSync) markReconciled(conversationID uuid.UUID, reconciled int) {
	s.mu.Lock()
	for i := range s.list {
		if s.list[i].ID == conversationID {
			s.list[i].UnreadCount = 0
		}
	}
	s.totalUnread -= reconciled
	if s.totalUnread < 0 {
		s.totalUnread = 0
	}
	if s.onSnapshot != nil {
		s.onSnapshot(s.snapshotLocked())
	}
	s.mu.Unlock()
}

func (s *ConversationSync) snapshotLocked() ConversationSnapshot {
	out := make([]models.ConversationView, len(s.list))
	copy(out, s.list)
	return ConversationSnapshot{Conversations: out, TotalUnread: s.totalUnread}
}

// Conversations returns a copy of the current list.
func (s *ConversationSync) Conversations() []models.ConversationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ConversationView, len(s.list))
	copy(out, s.list)
	return out
}

// TotalUnread returns the global unread badge value.
func (s *ConversationSync) TotalUnread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalUnread
}

// Focused returns the focused conversation id, or uuid.Nil when idle.
func (s *ConversationSync) Focused() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// SelfID returns the active identity, zero when stopped.
func (s *ConversationSync) SelfID() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfID
}
