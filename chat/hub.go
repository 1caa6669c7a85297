package chat

import "sync"

// Topic names a watched collection.
type Topic string

const (
	// TopicConversations is keyed by the participant's user id.
	TopicConversations Topic = "conversations"
	// TopicMessages is keyed by the conversation id.
	TopicMessages Topic = "messages"
)

// Hub delivers lightweight change signals to standing subscriptions.
// A signal carries no payload; subscribers re-query the store, so every
// snapshot is derived from live state. Sends never block: a subscriber
// that already has a pending signal is not queued a second one.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[Topic]map[string]map[int]chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Topic]map[string]map[int]chan struct{})}
}

// Subscribe registers a watcher for (topic, key). The returned cancel
// function removes the watcher and closes its channel; after cancel
// returns, no further signals are delivered.
func (h *Hub) Subscribe(topic Topic, key string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[topic]; !ok {
		h.subs[topic] = make(map[string]map[int]chan struct{})
	}
	if _, ok := h.subs[topic][key]; !ok {
		h.subs[topic][key] = make(map[int]chan struct{})
	}

	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[topic][key][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if watchers, ok := h.subs[topic][key]; ok {
			if c, ok := watchers[id]; ok {
				delete(watchers, id)
				close(c)
			}
			if len(watchers) == 0 {
				delete(h.subs[topic], key)
			}
		}
	}
	return ch, cancel
}

// Publish signals every watcher of (topic, key).
func (h *Hub) Publish(topic Topic, key string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[topic][key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
