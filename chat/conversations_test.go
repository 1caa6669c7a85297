package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/repairhubng/repairhub/models"
)

// fakeStore is an in-memory Store that publishes change signals the way the
// database-backed repository does.
type fakeStore struct {
	mu            sync.Mutex
	hub           *Hub
	conversations []*models.Conversation
	messages      []*models.Message
	profiles      map[uint]models.Participant
	seq           int
	base          time.Time

	failTouch    bool
	failMarkRead bool

	createMessageCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hub:      NewHub(),
		profiles: map[uint]models.Participant{},
		base:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) addProfile(userID uint, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = models.Participant{DisplayName: name}
}

// cloneParticipantInfo detaches the map so rows handed out by the fake never
// alias its mutable state, matching the fresh maps a real query hydrates.
func cloneParticipantInfo(info models.ParticipantInfo) models.ParticipantInfo {
	if info == nil {
		return nil
	}
	out := make(models.ParticipantInfo, len(info))
	for k, v := range info {
		out[k] = v
	}
	return out
}

func (f *fakeStore) ConversationsFor(_ context.Context, userID uint) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range f.conversations {
		if c.HasParticipant(userID) {
			cc := *c
			cc.ParticipantInfo = cloneParticipantInfo(c.ParticipantInfo)
			out = append(out, cc)
		}
	}
	return out, nil
}

func (f *fakeStore) MessagesFor(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) UnreadFor(_ context.Context, conversationID uuid.UUID, receiverID uint) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for _, m := range f.messages {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.IsRead {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) UnreadCounts(_ context.Context, userID uint) (map[uuid.UUID]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[uuid.UUID]int{}
	for _, m := range f.messages {
		if m.ReceiverID == userID && !m.IsRead {
			counts[m.ConversationID]++
		}
	}
	return counts, nil
}

func (f *fakeStore) Profile(_ context.Context, userID uint) (models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return models.Participant{}, fmt.Errorf("no such user %d", userID)
	}
	return p, nil
}

func (f *fakeStore) CreateConversation(_ context.Context, conversation *models.Conversation) error {
	f.mu.Lock()
	stored := *conversation
	stored.ParticipantInfo = cloneParticipantInfo(conversation.ParticipantInfo)
	f.conversations = append(f.conversations, &stored)
	one, two := conversation.ParticipantOneID, conversation.ParticipantTwoID
	f.mu.Unlock()

	f.hub.Publish(TopicConversations, userKey(one))
	f.hub.Publish(TopicConversations, userKey(two))
	return nil
}

func (f *fakeStore) CreateMessage(_ context.Context, message *models.Message) error {
	f.mu.Lock()
	f.createMessageCalls++
	f.seq++
	message.SentAt = f.base.Add(time.Duration(f.seq) * time.Millisecond)
	stored := *message
	f.messages = append(f.messages, &stored)
	f.mu.Unlock()

	f.hub.Publish(TopicMessages, message.ConversationID.String())
	f.hub.Publish(TopicConversations, userKey(message.SenderID))
	f.hub.Publish(TopicConversations, userKey(message.ReceiverID))
	return nil
}

func (f *fakeStore) TouchConversation(_ context.Context, conversationID uuid.UUID, lastText string, lastAt time.Time) error {
	f.mu.Lock()
	if f.failTouch {
		f.mu.Unlock()
		return fmt.Errorf("touch failed")
	}
	var one, two uint
	for _, c := range f.conversations {
		if c.ID == conversationID {
			c.LastMessageText = lastText
			at := lastAt
			c.LastMessageAt = &at
			one, two = c.ParticipantOneID, c.ParticipantTwoID
		}
	}
	f.mu.Unlock()

	f.hub.Publish(TopicConversations, userKey(one))
	f.hub.Publish(TopicConversations, userKey(two))
	return nil
}

func (f *fakeStore) PatchParticipantInfo(_ context.Context, conversationID uuid.UUID, userID uint, info models.Participant) error {
	f.mu.Lock()
	var one, two uint
	for _, c := range f.conversations {
		if c.ID == conversationID {
			if c.ParticipantInfo == nil {
				c.ParticipantInfo = models.ParticipantInfo{}
			}
			c.ParticipantInfo.Set(userID, info)
			one, two = c.ParticipantOneID, c.ParticipantTwoID
		}
	}
	f.mu.Unlock()

	f.hub.Publish(TopicConversations, userKey(one))
	f.hub.Publish(TopicConversations, userKey(two))
	return nil
}

func (f *fakeStore) MarkMessageRead(_ context.Context, messageID uuid.UUID) error {
	f.mu.Lock()
	if f.failMarkRead {
		f.mu.Unlock()
		return fmt.Errorf("mark read failed")
	}
	var convID uuid.UUID
	var sender, receiver uint
	for _, m := range f.messages {
		if m.ID == messageID {
			m.IsRead = true
			convID = m.ConversationID
			sender, receiver = m.SenderID, m.ReceiverID
		}
	}
	f.mu.Unlock()

	f.hub.Publish(TopicMessages, convID.String())
	f.hub.Publish(TopicConversations, userKey(sender))
	f.hub.Publish(TopicConversations, userKey(receiver))
	return nil
}

func (f *fakeStore) Watch(topic Topic, key string) (<-chan struct{}, func()) {
	return f.hub.Subscribe(topic, key)
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeStore) conversationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conversations)
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartRequiresIdentity(t *testing.T) {
	cs := NewConversationSync(newFakeStore())
	if err := cs.Start(0); err != ErrNotAuthenticated {
		t.Errorf("Start(0) = %v, want ErrNotAuthenticated", err)
	}
}

func TestGetOrCreateFirstContact(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")

	cs := NewConversationSync(store)
	if err := cs.Start(1); err != nil {
		t.Fatal(err)
	}
	defer cs.Stop()

	id, err := cs.GetOrCreate(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetOrCreate = %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("GetOrCreate returned nil id")
	}
	if store.conversationCount() != 1 {
		t.Errorf("conversation count = %d, want 1", store.conversationCount())
	}

	// second resolve returns the same conversation, no duplicate
	again, err := cs.GetOrCreate(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if again != id {
		t.Errorf("second GetOrCreate = %s, want %s", again, id)
	}
	if store.conversationCount() != 1 {
		t.Errorf("conversation count after reuse = %d, want 1", store.conversationCount())
	}

	// profile info seeded for both participants
	conversations, _ := store.ConversationsFor(context.Background(), 1)
	info := conversations[0].ParticipantInfo
	if p, ok := info.Get(1); !ok || p.DisplayName != "Ada" {
		t.Errorf("participant 1 info = %+v, ok=%v, want Ada", p, ok)
	}
	if p, ok := info.Get(2); !ok || p.DisplayName != "Ben" {
		t.Errorf("participant 2 info = %+v, ok=%v, want Ben", p, ok)
	}
}

func TestGetOrCreateRejectsSelf(t *testing.T) {
	store := newFakeStore()
	cs := NewConversationSync(store)
	if err := cs.Start(1); err != nil {
		t.Fatal(err)
	}
	defer cs.Stop()

	if _, err := cs.GetOrCreate(context.Background(), 1); err != ErrInvalidReceiver {
		t.Errorf("GetOrCreate(self) = %v, want ErrInvalidReceiver", err)
	}
}

func TestConversationListUpdatesOnNewMessage(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")

	sender := NewConversationSync(store)
	if err := sender.Start(1); err != nil {
		t.Fatal(err)
	}
	defer sender.Stop()
	senderMessages := NewMessageSync(store, sender)

	receiver := NewConversationSync(store)
	if err := receiver.Start(2); err != nil {
		t.Fatal(err)
	}
	defer receiver.Stop()

	if _, err := senderMessages.Send(context.Background(), 2, "Hello, I need help with my device."); err != nil {
		t.Fatalf("Send = %v", err)
	}

	waitFor(t, "receiver conversation list", func() bool {
		list := receiver.Conversations()
		return len(list) == 1 && list[0].LastMessageText == "Hello, I need help with my device."
	})
	waitFor(t, "receiver unread count", func() bool {
		list := receiver.Conversations()
		return len(list) == 1 && list[0].UnreadCount == 1 && receiver.TotalUnread() == 1
	})

	// the sender sees the conversation too, with nothing unread
	waitFor(t, "sender conversation list", func() bool {
		list := sender.Conversations()
		return len(list) == 1 && list[0].UnreadCount == 0
	})
}

func TestSortConversationsNewestFirstNilsLast(t *testing.T) {
	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	idA := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	idB := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	idC := uuid.MustParse("cccccccc-0000-0000-0000-000000000000")
	idD := uuid.MustParse("dddddddd-0000-0000-0000-000000000000")

	views := []models.ConversationView{
		{Conversation: models.Conversation{ID: idD}},
		{Conversation: models.Conversation{ID: idA, LastMessageAt: &early}},
		{Conversation: models.Conversation{ID: idC, LastMessageAt: &late}},
		{Conversation: models.Conversation{ID: idB, LastMessageAt: &late}},
	}
	sortConversations(views)

	got := []uuid.UUID{views[0].ID, views[1].ID, views[2].ID, views[3].ID}
	want := []uuid.UUID{idB, idC, idA, idD}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSelectUnknownConversation(t *testing.T) {
	store := newFakeStore()
	cs := NewConversationSync(store)
	if err := cs.Start(1); err != nil {
		t.Fatal(err)
	}
	defer cs.Stop()

	if err := cs.Select(uuid.New()); err != ErrConversationNotFound {
		t.Errorf("Select(unknown) = %v, want ErrConversationNotFound", err)
	}
	if cs.Focused() != uuid.Nil {
		t.Errorf("Focused = %s after failed select, want nil", cs.Focused())
	}
}

func TestStopDropsInFlightSnapshots(t *testing.T) {
	store := newFakeStore()
	cs := NewConversationSync(store)

	var mu sync.Mutex
	snapshots := 0
	cs.OnSnapshot(func(ConversationSnapshot) {
		mu.Lock()
		snapshots++
		mu.Unlock()
	})

	if err := cs.Start(1); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "initial snapshot", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return snapshots >= 1
	})

	cs.Stop()
	mu.Lock()
	after := snapshots
	mu.Unlock()

	// a refresh captured before Stop must be discarded by the gen bump
	stale := after
	cs.refresh(context.Background(), 1)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	final := snapshots
	mu.Unlock()
	if final != stale {
		t.Errorf("snapshot fired after Stop: %d -> %d", stale, final)
	}
	if cs.SelfID() != 0 {
		t.Errorf("SelfID after Stop = %d, want 0", cs.SelfID())
	}
}

func TestConversationsForDetachesParticipantInfo(t *testing.T) {
	store := newFakeStore()

	conversation := &models.Conversation{
		ID:               uuid.New(),
		ParticipantOneID: 1,
		ParticipantTwoID: 2,
		ParticipantInfo:  models.ParticipantInfo{},
	}
	if err := store.CreateConversation(context.Background(), conversation); err != nil {
		t.Fatal(err)
	}

	// a row handed out earlier must not see a later patch
	before, _ := store.ConversationsFor(context.Background(), 1)
	if err := store.PatchParticipantInfo(context.Background(), conversation.ID, 2, models.Participant{DisplayName: "Ben"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := before[0].ParticipantInfo.Get(2); ok {
		t.Error("patch visible through a previously returned conversation")
	}

	after, _ := store.ConversationsFor(context.Background(), 1)
	if p, ok := after[0].ParticipantInfo.Get(2); !ok || p.DisplayName != "Ben" {
		t.Errorf("patched info = %+v, ok=%v, want Ben", p, ok)
	}

	// the caller's map is not aliased into the store either
	conversation.ParticipantInfo.Set(1, models.Participant{DisplayName: "Mallory"})
	fresh, _ := store.ConversationsFor(context.Background(), 1)
	if _, ok := fresh[0].ParticipantInfo.Get(1); ok {
		t.Error("caller mutation leaked into the stored conversation")
	}
}

func TestRepairParticipantInfoBackfills(t *testing.T) {
	store := newFakeStore()
	store.addProfile(2, "Ben")

	// a conversation persisted without cached profile info
	conversation := &models.Conversation{
		ID:               uuid.New(),
		ParticipantOneID: 1,
		ParticipantTwoID: 2,
		ParticipantInfo:  models.ParticipantInfo{},
	}
	if err := store.CreateConversation(context.Background(), conversation); err != nil {
		t.Fatal(err)
	}

	cs := NewConversationSync(store)
	if err := cs.Start(1); err != nil {
		t.Fatal(err)
	}
	defer cs.Stop()

	waitFor(t, "participant info repair", func() bool {
		conversations, _ := store.ConversationsFor(context.Background(), 1)
		if len(conversations) != 1 {
			return false
		}
		p, ok := conversations[0].ParticipantInfo.Get(2)
		return ok && p.DisplayName == "Ben"
	})
}
