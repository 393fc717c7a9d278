package websocket

import (
	"log/slog"
	"sync"
)

// hub indexes open clients by room id for broadcasts.
type hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
	open  map[*client]struct{}
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger: logger,
		rooms:  make(map[string]map[*client]struct{}),
		open:   make(map[*client]struct{}),
	}
}

func (that *hub) track(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.open[c] = struct{}{}
}

func (that *hub) untrack(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.open, c)
}

// closeAll - closes every open socket, their read loops then run the usual disconnect path.
func (that *hub) closeAll() {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.open {
		_ = c.conn.Close()
	}
}

func (that *hub) add(roomID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rooms[roomID] == nil {
		that.rooms[roomID] = make(map[*client]struct{})
	}
	that.rooms[roomID][c] = struct{}{}
}

func (that *hub) remove(roomID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(clients, c)
	if len(clients) == 0 {
		delete(that.rooms, roomID)
	}
}

func (that *hub) clients(roomID string) []*client {
	that.mu.RLock()
	defer that.mu.RUnlock()

	clients := make([]*client, 0, len(that.rooms[roomID]))
	for c := range that.rooms[roomID] {
		clients = append(clients, c)
	}

	return clients
}

// broadcast - sends to every client of the room except skip (may be nil). Writes happen outside the hub lock.
func (that *hub) broadcast(roomID string, message ServerMessage, skip *client) {
	for _, c := range that.clients(roomID) {
		if c == skip {
			continue
		}

		if err := c.send(message); err != nil {
			that.logger.Debug("failed to deliver broadcast", "roomID", roomID, "type", message.Type, "error", err)
		}
	}
}
