package storage

import (
	"sort"
	"sync"

	"github.com/Veraticus/zerobudget/internal/service"
)

// notifier fans change events out to subscribers. Each subscriber has a
// one-slot buffer; a pending event is merged with the next one instead of
// blocking the writer.
type notifier struct {
	subs    map[int]chan service.ChangeEvent
	mu      sync.Mutex
	version uint64
	nextID  int
	closed  bool
}

func newNotifier() *notifier {
	return &notifier{
		subs: make(map[int]chan service.ChangeEvent),
	}
}

func (n *notifier) subscribe() (<-chan service.ChangeEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan service.ChangeEvent, 1)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if sub, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

func (n *notifier) publish(tables ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.version++

	for _, ch := range n.subs {
		event := service.ChangeEvent{Tables: mergeTables(nil, tables), Version: n.version}

		// Replace an undelivered event, keeping its tables. The slot is then
		// free and only publish sends, so the send below never blocks.
		select {
		case old := <-ch:
			event.Tables = mergeTables(old.Tables, tables)
		default:
		}
		ch <- event
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		close(ch)
		delete(n.subs, id)
	}
}

func mergeTables(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, t := range append(append([]string{}, a...), b...) {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	sort.Strings(merged)
	return merged
}
