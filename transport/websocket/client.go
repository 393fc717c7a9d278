package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// seat is what a socket holds in a room. session is the registry token handed out when the seat was taken.
type seat struct {
	roomID   string
	playerID string
	session  uint64
}

// client is one socket. It remembers which seat it holds, nothing else.
type client struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu   sync.Mutex
	seat seat
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn}
}

func (that *client) send(message ServerMessage) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) ping() error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to write ping: %w", err)
	}

	return nil
}

// keepAlive - pings every period until done is closed or a ping fails.
func (that *client) keepAlive(period time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := that.ping(); err != nil {
				return
			}
		}
	}
}

// bind - returns the previous seat so the caller can leave it.
func (that *client) bind(next seat) seat {
	that.mu.Lock()
	defer that.mu.Unlock()

	prev := that.seat
	that.seat = next

	return prev
}

func (that *client) held() seat {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.seat
}
