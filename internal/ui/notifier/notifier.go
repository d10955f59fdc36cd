// Package notifier provides keyed ping channels for SSE updates.
package notifier

import "sync"

// Notifier pings listeners subscribed to topics. Listeners receive an empty
// struct when something under one of their topics changed and should re-read
// the current state.
type Notifier struct {
	mu     sync.RWMutex
	topics map[string]map[chan struct{}]struct{}
	subs   map[chan struct{}][]string
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		topics: make(map[string]map[chan struct{}]struct{}),
		subs:   make(map[chan struct{}][]string),
	}
}

// Subscribe returns a channel pinged whenever any of topics is notified.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(topics ...string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, topic := range topics {
		listeners, ok := n.topics[topic]
		if !ok {
			listeners = make(map[chan struct{}]struct{})
			n.topics[topic] = listeners
		}
		listeners[ch] = struct{}{}
	}
	n.subs[ch] = topics
	return ch
}

// Unsubscribe removes a listener channel from all its topics and closes it.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	for _, topic := range n.subs[ch] {
		delete(n.topics[topic], ch)
		if len(n.topics[topic]) == 0 {
			delete(n.topics, topic)
		}
	}
	delete(n.subs, ch)
	n.mu.Unlock()
	close(ch)
}

// Notify pings the listeners of topic.
// Non-blocking: if a listener's channel is full, the ping is skipped.
func (n *Notifier) Notify(topic string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.topics[topic] {
		ping(ch)
	}
}

// Broadcast pings every listener.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.subs {
		ping(ch)
	}
}

// Listeners returns the number of listeners of topic.
func (n *Notifier) Listeners(topic string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.topics[topic])
}

func ping(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
		// already pending; the listener reads the latest state anyway
	}
}
