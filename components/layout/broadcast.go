package layout

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// LiveUpdate is a push payload for a single live topic.
type LiveUpdate struct {
	Topic    string          `json:"topic"`
	WidgetID string          `json:"widget_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// LiveFeed fans out push updates to in-process subscribers and tracks which
// topics currently have at least one listener. It satisfies LiveChannel, so
// the refresh Scheduler stops polling any widget whose live key is covered
// by an active subscription.
type LiveFeed struct {
	registry *Registry

	mu     sync.RWMutex
	subs   map[int]*liveSub
	topics map[string]int
	next   int
}

type liveSub struct {
	ch     chan LiveUpdate
	topics map[string]struct{}
}

// NewLiveFeed creates a feed resolving widget live keys through registry.
func NewLiveFeed(registry *Registry) *LiveFeed {
	return &LiveFeed{
		registry: registry,
		subs:     make(map[int]*liveSub),
		topics:   make(map[string]int),
	}
}

var _ LiveChannel = (*LiveFeed)(nil)

// Covers reports whether the widget's live key has an active subscriber.
func (f *LiveFeed) Covers(widgetID string) bool {
	desc, ok := f.registry.Descriptor(widgetID)
	if !ok || desc.LiveKey == "" {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.topics[desc.LiveKey] > 0
}

// Publish delivers an update to every subscriber of its topic. Slow
// subscribers drop updates rather than block the publisher.
func (f *LiveFeed) Publish(update LiveUpdate) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subs {
		if _, ok := sub.topics[update.Topic]; !ok {
			continue
		}
		select {
		case sub.ch <- update:
		default:
		}
	}
}

// Subscribe returns a channel of updates for the given topics and a cancel
// func. Topic coverage is refcounted; Covers flips back to false once the
// last subscriber of a topic cancels.
func (f *LiveFeed) Subscribe(topics ...string) (<-chan LiveUpdate, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	sub := &liveSub{
		ch:     make(chan LiveUpdate, 8),
		topics: make(map[string]struct{}, len(topics)),
	}
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		if _, ok := sub.topics[topic]; ok {
			continue
		}
		sub.topics[topic] = struct{}{}
		f.topics[topic]++
	}
	f.subs[id] = sub
	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		stored, ok := f.subs[id]
		if !ok {
			return
		}
		delete(f.subs, id)
		for topic := range stored.topics {
			if f.topics[topic] <= 1 {
				delete(f.topics, topic)
			} else {
				f.topics[topic]--
			}
		}
		close(stored.ch)
	}
	return sub.ch, cancel
}

// ActiveTopics returns the topics with at least one subscriber, unordered.
func (f *LiveFeed) ActiveTopics() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.topics))
	for topic := range f.topics {
		out = append(out, topic)
	}
	return out
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams updates for the topics
// named in the "topics" query parameter (comma separated).
func (f *LiveFeed) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	updates, cancel := f.Subscribe(requestTopics(r)...)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for live updates.
func (f *LiveFeed) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	updates, cancel := f.Subscribe(requestTopics(r)...)
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(update); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func requestTopics(r *http.Request) []string {
	raw := r.URL.Query().Get("topics")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	topics := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			topics = append(topics, part)
		}
	}
	return topics
}
