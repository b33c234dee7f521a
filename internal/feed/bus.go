package feed

import (
	"sync"

	"github.com/casarossa/casarossa-backend/pkg/logger"
)

// Change kinds carried by table events.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Event describes one row-level change to a table. Subscribers are
// expected to treat it as an invalidation signal and re-read, not as a
// patch: the payload carries identity only.
type Event struct {
	Table string
	Kind  string
	RowID uint
}

// Bus is an in-process change feed. Publish delivers the event to every
// handler subscribed at that moment, synchronously, in subscription
// order. Unsubscribe is guaranteed: once the returned function has
// returned, the handler will never be invoked again.
type Bus struct {
	mu      sync.Mutex
	nextID  uint64
	subs    map[uint64]*subscription
	ordered []uint64
}

type subscription struct {
	table   string
	handler func(Event)
}

// NewBus creates an empty change feed.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[uint64]*subscription),
	}
}

// Subscribe registers a handler for change events on the given table.
// An empty table subscribes to every table. The returned function
// removes the handler; it is safe to call more than once. Handlers must
// not subscribe or unsubscribe from within themselves: delivery holds
// the bus lock.
func (b *Bus) Subscribe(table string, handler func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = &subscription{table: table, handler: handler}
	b.ordered = append(b.ordered, id)

	logger.Debug("Feed subscription registered", map[string]interface{}{
		"table":       table,
		"subscribers": len(b.subs),
	})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		for i, sid := range b.ordered {
			if sid == id {
				b.ordered = append(b.ordered[:i], b.ordered[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers an event to the current subscribers of its table.
// Delivery happens under the bus lock, which is what makes the
// no-delivery-after-unsubscribe guarantee hold: an unsubscribe blocks
// until any in-flight publish has finished.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, id := range b.ordered {
		sub := b.subs[id]
		if sub.table != "" && sub.table != event.Table {
			continue
		}
		sub.handler(event)
		delivered++
	}

	logger.Debug("Feed event published", map[string]interface{}{
		"table":     event.Table,
		"kind":      event.Kind,
		"row_id":    event.RowID,
		"delivered": delivered,
	})
}

// SubscriberCount reports the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
