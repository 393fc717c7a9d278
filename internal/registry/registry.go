// Package registry owns every live room and applies the game rules to them.
//
// Operations on different rooms run concurrently; operations on the same room are
// serialized by that room's lock. Rooms never leave the registry by reference: every
// returned room is a copy, callers keep only (room id, player id) pairs.
package registry

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
)

const (
	DefaultRetention = time.Hour

	maxRoomIDAttempts = 32
)

// ReconnectPolicy decides what a join with an already seated display name means.
type ReconnectPolicy int

const (
	// ReconnectByName hands the seated player's id back and marks them connected.
	ReconnectByName ReconnectPolicy = iota
	// RejectWhenFull treats every join as a new player.
	RejectWhenFull
)

// CreateResult and JoinResult carry the session of the seat taken.
// Only that session can end the seat through EndSession.
type CreateResult struct {
	RoomID   string
	PlayerID string
	Session  uint64
	Room     *entity.Room
}

type JoinResult struct {
	PlayerID    string
	Session     uint64
	Room        *entity.Room
	Reconnected bool
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithRetention(retention time.Duration) Option {
	return func(r *Registry) { r.retention = retention }
}

func WithReconnectPolicy(policy ReconnectPolicy) Option {
	return func(r *Registry) { r.reconnect = policy }
}

func WithRoomIDGenerator(gen func() (string, error)) Option {
	return func(r *Registry) { r.newRoomID = gen }
}

func WithPlayerIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newPlayerID = gen }
}

type slot struct {
	mu      sync.Mutex
	room    *entity.Room
	evicted bool
}

type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*slot

	now         func() time.Time
	retention   time.Duration
	reconnect   ReconnectPolicy
	newRoomID   func() (string, error)
	newPlayerID func() string
}

func New(logger *slog.Logger, opts ...Option) *Registry {
	registry := &Registry{
		logger:      logger.With("component", "registry"),
		rooms:       make(map[string]*slot),
		now:         time.Now,
		retention:   DefaultRetention,
		reconnect:   ReconnectByName,
		newRoomID:   pkg.GenerateRoomID,
		newPlayerID: pkg.GeneratePlayerID,
	}

	for _, opt := range opts {
		opt(registry)
	}

	return registry
}

// CreateRoom - opens a room with the caller seated as X.
func (that *Registry) CreateRoom(playerName string) (*CreateResult, error) {
	player := entity.NewPlayer(that.newPlayerID(), playerName, entity.MarkX)
	player.Session = 1

	that.mu.Lock()
	defer that.mu.Unlock()

	roomID, err := that.freeRoomID()
	if err != nil {
		return nil, err
	}

	room := entity.NewRoom(roomID, player, that.now())
	that.rooms[roomID] = &slot{room: room}

	that.logger.Info("room created", "roomID", roomID, "playerID", player.ID)

	return &CreateResult{
		RoomID:   roomID,
		PlayerID: player.ID,
		Session:  player.Session,
		Room:     room.Clone(),
	}, nil
}

// freeRoomID must be called with the write lock held.
func (that *Registry) freeRoomID() (string, error) {
	for range maxRoomIDAttempts {
		id, err := that.newRoomID()
		if err != nil {
			return "", fmt.Errorf("failed to generate room id: %w", err)
		}

		if _, taken := that.rooms[id]; !taken {
			return id, nil
		}
	}

	return "", apperror.ErrRoomIDExhausted
}

func (that *Registry) JoinRoom(roomID, playerName string) (*JoinResult, error) {
	log := that.logger.With("method", "JoinRoom", "roomID", roomID)

	var result *JoinResult

	err := that.withRoom(roomID, func(room *entity.Room) error {
		if that.reconnect == ReconnectByName {
			if existing := room.PlayerByName(playerName); existing != nil {
				existing.Connected = true
				existing.Session++
				result = &JoinResult{PlayerID: existing.ID, Session: existing.Session, Room: room.Clone(), Reconnected: true}

				return nil
			}
		}

		player := entity.NewPlayer(that.newPlayerID(), playerName, entity.MarkO)
		player.Session = 1
		if err := room.AddPlayer(player); err != nil {
			return err
		}

		result = &JoinResult{PlayerID: player.ID, Session: player.Session, Room: room.Clone()}

		return nil
	})
	if err != nil {
		log.Info("join rejected", "error", err)
		return nil, err
	}

	if result.Reconnected {
		log.Info("player reconnected", "playerID", result.PlayerID)
	} else {
		log.Info("player joined", "playerID", result.PlayerID)
	}

	return result, nil
}

func (that *Registry) MakeMove(roomID, playerID string, position int) (*entity.Room, error) {
	var updated *entity.Room

	err := that.withRoom(roomID, func(room *entity.Room) error {
		if err := room.MakeTurn(playerID, position); err != nil {
			return err
		}

		updated = room.Clone()

		return nil
	})
	if err != nil {
		that.logger.Debug("move rejected", "roomID", roomID, "playerID", playerID, "position", position, "error", err)
		return nil, err
	}

	if updated.IsFinished() {
		that.logger.Info("game finished", "roomID", roomID, "winner", updated.Winner, "reason", updated.Reason)
	}

	return updated, nil
}

// HandleDisconnect - returns the forfeit result, or nil when the disconnect changed no outcome.
func (that *Registry) HandleDisconnect(roomID, playerID string) *entity.GameResult {
	return that.disconnect(roomID, playerID, func(*entity.Player) bool { return true })
}

// EndSession - like HandleDisconnect, but only when session still owns the seat.
// A connection that was superseded by a reconnect ends nothing.
func (that *Registry) EndSession(roomID, playerID string, session uint64) *entity.GameResult {
	return that.disconnect(roomID, playerID, func(player *entity.Player) bool {
		return player.Session == session
	})
}

func (that *Registry) disconnect(roomID, playerID string, owns func(*entity.Player) bool) *entity.GameResult {
	var (
		result *entity.GameResult
		stale  bool
	)

	err := that.withRoom(roomID, func(room *entity.Room) error {
		player := room.PlayerByID(playerID)
		if player == nil {
			return apperror.ErrPlayerNotInRoom
		}

		if !owns(player) {
			stale = true
			return nil
		}

		result = room.Forfeit(playerID)

		return nil
	})
	if err != nil {
		return nil
	}

	if stale {
		that.logger.Debug("superseded session ended", "roomID", roomID, "playerID", playerID)
		return nil
	}

	that.logger.Info("player disconnected", "roomID", roomID, "playerID", playerID, "forfeit", result != nil)

	return result
}

func (that *Registry) GetRoomState(roomID string) (*entity.Room, bool) {
	var room *entity.Room

	err := that.withRoom(roomID, func(r *entity.Room) error {
		room = r.Clone()
		return nil
	})

	return room, err == nil
}

// CleanupStaleRooms - evicts finished rooms and rooms older than the retention window.
// Returns the evicted room ids.
func (that *Registry) CleanupStaleRooms() []string {
	now := that.now()

	that.mu.Lock()
	defer that.mu.Unlock()

	var evicted []string

	for id, s := range that.rooms {
		s.mu.Lock()
		if s.room.IsStale(now, that.retention) {
			s.evicted = true
			delete(that.rooms, id)
			evicted = append(evicted, id)
		}
		s.mu.Unlock()
	}

	if len(evicted) > 0 {
		that.logger.Info("stale rooms evicted", "count", len(evicted), "remaining", len(that.rooms))
	}

	return evicted
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// withRoom runs fn under the room's lock. The key-set lock is released first,
// so a slow room never blocks lookups of other rooms.
func (that *Registry) withRoom(roomID string, fn func(room *entity.Room) error) error {
	that.mu.RLock()
	s, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.evicted {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return fn(s.room)
}
