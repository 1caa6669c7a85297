package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func startedPair(t *testing.T, store *fakeStore, selfID uint) (*ConversationSync, *MessageSync) {
	t.Helper()
	cs := NewConversationSync(store)
	ms := NewMessageSync(store, cs)
	if err := cs.Start(selfID); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ms.Clear()
		cs.Stop()
	})
	return cs, ms
}

func TestSendRejectsBlankText(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")
	_, ms := startedPair(t, store, 1)

	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := ms.Send(context.Background(), 2, text); err != ErrEmptyMessage {
			t.Errorf("Send(%q) = %v, want ErrEmptyMessage", text, err)
		}
	}
	if store.messageCount() != 0 {
		t.Errorf("message count = %d after rejected sends, want 0", store.messageCount())
	}
	if store.conversationCount() != 0 {
		t.Errorf("conversation count = %d after rejected sends, want 0", store.conversationCount())
	}
}

func TestSendRequiresIdentity(t *testing.T) {
	store := newFakeStore()
	cs := NewConversationSync(store)
	ms := NewMessageSync(store, cs)

	if _, err := ms.Send(context.Background(), 2, "hello"); err != ErrNotAuthenticated {
		t.Errorf("Send before Start = %v, want ErrNotAuthenticated", err)
	}
	if cs.SelfID() != 0 {
		t.Errorf("SelfID = %d before Start, want 0", cs.SelfID())
	}
}

func TestSendRejectsSelfReceiver(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	_, ms := startedPair(t, store, 1)

	if _, err := ms.Send(context.Background(), 1, "hello"); err != ErrInvalidReceiver {
		t.Errorf("Send(self) = %v, want ErrInvalidReceiver", err)
	}
}

func TestSequentialSendsReuseConversation(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")
	_, ms := startedPair(t, store, 1)

	first, err := ms.Send(context.Background(), 2, "first")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ms.Send(context.Background(), 2, "second")
	if err != nil {
		t.Fatal(err)
	}

	if first.ConversationID != second.ConversationID {
		t.Errorf("messages landed in different conversations: %s vs %s",
			first.ConversationID, second.ConversationID)
	}
	if store.conversationCount() != 1 {
		t.Errorf("conversation count = %d, want 1", store.conversationCount())
	}
}

func TestMessagesOrderedBySentAt(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")
	cs, ms := startedPair(t, store, 1)

	var convID uuid.UUID
	for _, text := range []string{"one", "two", "three"} {
		message, err := ms.Send(context.Background(), 2, text)
		if err != nil {
			t.Fatal(err)
		}
		convID = message.ConversationID
	}

	waitFor(t, "conversation in list", func() bool {
		return len(cs.Conversations()) == 1
	})
	if err := cs.Select(convID); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "message snapshot", func() bool {
		return len(ms.Messages()) == 3
	})
	messages := ms.Messages()
	for i := 1; i < len(messages); i++ {
		if messages[i].SentAt.Before(messages[i-1].SentAt) {
			t.Fatalf("messages out of order at %d: %v before %v", i,
				messages[i].SentAt, messages[i-1].SentAt)
		}
	}
	if messages[0].Text != "one" || messages[2].Text != "three" {
		t.Errorf("unexpected message order: %q ... %q", messages[0].Text, messages[2].Text)
	}
}

func TestFocusMarksUnreadRead(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")

	_, senderMessages := startedPair(t, store, 1)
	receiverConvs, receiverMessages := startedPair(t, store, 2)
	_ = receiverMessages

	message, err := senderMessages.Send(context.Background(), 2, "hello there")
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, "receiver unread", func() bool {
		return receiverConvs.TotalUnread() == 1
	})

	waitFor(t, "conversation visible to receiver", func() bool {
		return len(receiverConvs.Conversations()) == 1
	})
	if err := receiverConvs.Select(message.ConversationID); err != nil {
		t.Fatal(err)
	}

	// focusing reconciles: the message flips to read and the badge drops
	waitFor(t, "read reconciliation", func() bool {
		unread, _ := store.UnreadFor(context.Background(), message.ConversationID, 2)
		return len(unread) == 0
	})
	waitFor(t, "unread badge drop", func() bool {
		return receiverConvs.TotalUnread() == 0
	})

	// the flip never reverses
	messages, _ := store.MessagesFor(context.Background(), message.ConversationID)
	if len(messages) != 1 || !messages[0].IsRead {
		t.Fatalf("message not read after reconciliation: %+v", messages)
	}
}

func TestReconcileSkipsFailedWrites(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")

	_, senderMessages := startedPair(t, store, 1)
	message, err := senderMessages.Send(context.Background(), 2, "hello")
	if err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	store.failMarkRead = true
	store.mu.Unlock()

	receiverConvs, _ := startedPair(t, store, 2)
	waitFor(t, "conversation visible", func() bool {
		return len(receiverConvs.Conversations()) == 1
	})
	if err := receiverConvs.Select(message.ConversationID); err != nil {
		t.Fatal(err)
	}

	// the write fails, so the message stays unread and the recount keeps it
	time.Sleep(50 * time.Millisecond)
	unread, _ := store.UnreadFor(context.Background(), message.ConversationID, 2)
	if len(unread) != 1 {
		t.Fatalf("unread = %d with failing mark-read, want 1", len(unread))
	}

	// once the store recovers, the next focus reconciles
	store.mu.Lock()
	store.failMarkRead = false
	store.mu.Unlock()
	receiverConvs.ClearSelection()
	if err := receiverConvs.Select(message.ConversationID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "recovered reconciliation", func() bool {
		unread, _ := store.UnreadFor(context.Background(), message.ConversationID, 2)
		return len(unread) == 0
	})
}

func TestSendSurvivesTouchFailure(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")
	_, ms := startedPair(t, store, 1)

	store.mu.Lock()
	store.failTouch = true
	store.mu.Unlock()

	message, err := ms.Send(context.Background(), 2, "pointer goes stale")
	if err != nil {
		t.Fatalf("Send = %v, want success despite touch failure", err)
	}
	if store.messageCount() != 1 {
		t.Errorf("message count = %d, want 1", store.messageCount())
	}

	conversations, _ := store.ConversationsFor(context.Background(), 1)
	if conversations[0].LastMessageText != "" {
		t.Errorf("last message text = %q, want stale empty pointer", conversations[0].LastMessageText)
	}
	if message.Text != "pointer goes stale" {
		t.Errorf("message text = %q", message.Text)
	}
}

func TestStaleSnapshotDiscardedAfterRefocus(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")
	store.addProfile(3, "Cam")
	cs, ms := startedPair(t, store, 1)

	toB, err := ms.Send(context.Background(), 2, "for b")
	if err != nil {
		t.Fatal(err)
	}
	toC, err := ms.Send(context.Background(), 3, "for c")
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, "both conversations listed", func() bool {
		return len(cs.Conversations()) == 2
	})

	if err := cs.Select(toB.ConversationID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "focus on first conversation", func() bool {
		msgs := ms.Messages()
		return len(msgs) == 1 && msgs[0].Text == "for b"
	})

	staleGen := func() int {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		return ms.gen
	}()

	if err := cs.Select(toC.ConversationID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "focus on second conversation", func() bool {
		msgs := ms.Messages()
		return len(msgs) == 1 && msgs[0].Text == "for c"
	})

	// a late delivery for the torn-down subscription must be discarded
	ms.apply(context.Background(), toB.ConversationID, staleGen)
	msgs := ms.Messages()
	if len(msgs) != 1 || msgs[0].Text != "for c" {
		t.Fatalf("stale snapshot applied: %+v", msgs)
	}
	if ms.Focused() != toC.ConversationID {
		t.Errorf("Focused = %s, want %s", ms.Focused(), toC.ConversationID)
	}
}

func TestReconcileIgnoresStaleFocus(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")
	store.addProfile(3, "Cam")

	_, adaMessages := startedPair(t, store, 1)
	_, camMessages := startedPair(t, store, 3)

	fromAda, err := adaMessages.Send(context.Background(), 2, "from ada")
	if err != nil {
		t.Fatal(err)
	}
	fromCam, err := camMessages.Send(context.Background(), 2, "from cam")
	if err != nil {
		t.Fatal(err)
	}

	benConvs, benMessages := startedPair(t, store, 2)
	waitFor(t, "both conversations listed", func() bool {
		return len(benConvs.Conversations()) == 2
	})

	if err := benConvs.Select(fromAda.ConversationID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first conversation reconciled", func() bool {
		unread, _ := store.UnreadFor(context.Background(), fromAda.ConversationID, 2)
		return len(unread) == 0
	})
	staleGen := func() int {
		benMessages.mu.Lock()
		defer benMessages.mu.Unlock()
		return benMessages.gen
	}()

	if err := benConvs.Select(fromCam.ConversationID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "second conversation reconciled", func() bool {
		unread, _ := store.UnreadFor(context.Background(), fromCam.ConversationID, 2)
		return len(unread) == 0
	})

	// a new message lands in the no-longer-focused conversation
	if _, err := adaMessages.Send(context.Background(), 2, "after refocus"); err != nil {
		t.Fatal(err)
	}

	// a reconciliation carrying the old focus must not flip it
	benMessages.reconcile(context.Background(), fromAda.ConversationID, staleGen)
	unread, _ := store.UnreadFor(context.Background(), fromAda.ConversationID, 2)
	if len(unread) != 1 {
		t.Fatalf("unread = %d after stale reconcile, want 1", len(unread))
	}
}

func TestClearIdlesMessageSync(t *testing.T) {
	store := newFakeStore()
	store.addProfile(1, "Ada")
	store.addProfile(2, "Ben")
	cs, ms := startedPair(t, store, 1)

	message, err := ms.Send(context.Background(), 2, "hello")
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, "conversation listed", func() bool {
		return len(cs.Conversations()) == 1
	})
	if err := cs.Select(message.ConversationID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "messages loaded", func() bool {
		return len(ms.Messages()) == 1
	})

	cs.ClearSelection()
	waitFor(t, "message sync idle", func() bool {
		return ms.Focused() == uuid.Nil && len(ms.Messages()) == 0
	})
}
