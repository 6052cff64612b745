package tree

import "sync"

// Notifier signals that the tree changed. A nil node means "re-query
// everything that is currently expanded".
type Notifier struct {
	mu       sync.Mutex
	handlers map[int]func(*Node)
	nextID   int
}

func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[int]func(*Node))}
}

// Subscribe registers fn and returns a function that removes it.
func (n *Notifier) Subscribe(fn func(*Node)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.handlers[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.handlers, id)
	}
}

// Fire calls every subscriber with node.
func (n *Notifier) Fire(node *Node) {
	n.mu.Lock()
	handlers := make([]func(*Node), 0, len(n.handlers))
	for _, fn := range n.handlers {
		handlers = append(handlers, fn)
	}
	n.mu.Unlock()

	for _, fn := range handlers {
		fn(node)
	}
}
