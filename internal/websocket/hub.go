// Package websocket relays catalog changes to connected storefront
// clients. The hub subscribes once to menu events; any change triggers
// a full refetch of the featured list, which is broadcast as a complete
// replacement to every client. No diffing.
package websocket

import (
	"encoding/json"

	"github.com/casarossa/casarossa-backend/internal/app/service"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/casarossa/casarossa-backend/pkg/logger"
)

// MenuUpdateMessage is the wire format pushed to storefront clients.
type MenuUpdateMessage struct {
	Type  string      `json:"type"`
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// Client is one connected storefront session.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub manages storefront connections and fans the featured list out to
// them.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// menuEvents receives bus notifications; the refetch happens on the
	// hub goroutine, never inside the bus handler.
	menuEvents chan feed.Event
	shutdown   chan struct{}

	menuService service.MenuService
	unsubscribe func()
}

func NewHub(menuService service.MenuService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 256),
		unregister:  make(chan *Client, 256),
		menuEvents:  make(chan feed.Event, 1024),
		shutdown:    make(chan struct{}),
		menuService: menuService,
	}
}

// Start subscribes to catalog events and launches the hub loop.
func (h *Hub) Start(bus *feed.Bus) {
	h.unsubscribe = bus.Subscribe("menu_items", func(e feed.Event) {
		select {
		case h.menuEvents <- e:
		default:
			logger.Warn("Dropping menu event, hub backlog full", map[string]interface{}{
				"row_id": e.RowID,
			})
		}
	})
	go h.run()
}

// Stop unsubscribes from the bus and disconnects every client.
func (h *Hub) Stop() {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
	close(h.shutdown)
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Info("Storefront client connected", map[string]interface{}{
				"user_id": client.UserID,
				"total":   len(h.clients),
			})
			// New clients get the current list immediately.
			if message, ok := h.featuredMessage(); ok {
				h.send(client, message)
			}

		case client := <-h.unregister:
			h.drop(client)

		case event := <-h.menuEvents:
			logger.Debug("Catalog changed, broadcasting featured list", map[string]interface{}{
				"kind":   string(event.Kind),
				"row_id": event.RowID,
			})
			message, ok := h.featuredMessage()
			if !ok {
				continue
			}
			for client := range h.clients {
				h.send(client, message)
			}

		case <-h.shutdown:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// featuredMessage refetches the featured list and encodes the
// replacement payload.
func (h *Hub) featuredMessage() ([]byte, bool) {
	items, err := h.menuService.GetFeatured()
	if err != nil {
		logger.Error("Failed to refetch featured menu for broadcast", err, nil)
		return nil, false
	}

	message, err := json.Marshal(MenuUpdateMessage{
		Type:  "menu_update",
		Items: items,
		Count: len(items),
	})
	if err != nil {
		logger.Error("Failed to encode menu update", err, nil)
		return nil, false
	}
	return message, true
}

// send delivers without blocking; a client whose buffer is full is
// dropped.
func (h *Hub) send(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		logger.Warn("Dropping stalled storefront client", map[string]interface{}{
			"user_id": client.UserID,
		})
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
}
