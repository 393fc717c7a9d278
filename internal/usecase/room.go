package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
)

type RoomUseCase interface {
	CreateRoom(ctx context.Context, playerName string) (*registry.CreateResult, error)
	JoinRoom(ctx context.Context, roomID, playerName string) (*registry.JoinResult, error)
	MakeMove(ctx context.Context, roomID, playerID string, position int) (*entity.Room, error)
	Disconnect(ctx context.Context, roomID, playerID string, session uint64) (*entity.GameResult, *entity.Room)
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	CleanupStaleRooms(ctx context.Context) int
}

type roomRegistry interface {
	CreateRoom(playerName string) (*registry.CreateResult, error)
	JoinRoom(roomID, playerName string) (*registry.JoinResult, error)
	MakeMove(roomID, playerID string, position int) (*entity.Room, error)
	EndSession(roomID, playerID string, session uint64) *entity.GameResult
	GetRoomState(roomID string) (*entity.Room, bool)
	CleanupStaleRooms() []string
}

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	DeleteByID(ctx context.Context, id string) error
}

type roomUseCase struct {
	logger *slog.Logger

	rooms     roomRegistry
	snapshots roomRepo
}

// NewRoomUseCase - snapshots may be nil, then rooms live in memory only.
func NewRoomUseCase(logger *slog.Logger, rooms roomRegistry, snapshots roomRepo) RoomUseCase {
	return &roomUseCase{
		logger:    logger.With("component", "roomUseCase"),
		rooms:     rooms,
		snapshots: snapshots,
	}
}

func (that *roomUseCase) CreateRoom(ctx context.Context, playerName string) (*registry.CreateResult, error) {
	created, err := that.rooms.CreateRoom(playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.saveSnapshot(ctx, created.Room)

	return created, nil
}

func (that *roomUseCase) JoinRoom(ctx context.Context, roomID, playerName string) (*registry.JoinResult, error) {
	joined, err := that.rooms.JoinRoom(roomID, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	that.saveSnapshot(ctx, joined.Room)

	return joined, nil
}

func (that *roomUseCase) MakeMove(ctx context.Context, roomID, playerID string, position int) (*entity.Room, error) {
	room, err := that.rooms.MakeMove(roomID, playerID, position)
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	that.saveSnapshot(ctx, room)

	return room, nil
}

// Disconnect - ends the connection's session on the seat. Returns the forfeit result (nil when none)
// and the room as it is afterwards. The room is nil when it no longer exists.
func (that *roomUseCase) Disconnect(ctx context.Context, roomID, playerID string, session uint64) (*entity.GameResult, *entity.Room) {
	result := that.rooms.EndSession(roomID, playerID, session)

	room, ok := that.rooms.GetRoomState(roomID)
	if !ok {
		return result, nil
	}

	that.saveSnapshot(ctx, room)

	return result, room
}

func (that *roomUseCase) GetRoom(_ context.Context, roomID string) (*entity.Room, error) {
	room, ok := that.rooms.GetRoomState(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return room, nil
}

func (that *roomUseCase) CleanupStaleRooms(ctx context.Context) int {
	log := that.logger.With("method", "CleanupStaleRooms")

	evicted := that.rooms.CleanupStaleRooms()

	if that.snapshots != nil {
		for _, id := range evicted {
			if err := that.snapshots.DeleteByID(ctx, id); err != nil {
				log.Debug("failed to delete room snapshot", "roomID", id, "error", err)
			}
		}
	}

	return len(evicted)
}

// saveSnapshot is best-effort, players are never failed because the mirror is down.
func (that *roomUseCase) saveSnapshot(ctx context.Context, room *entity.Room) {
	if that.snapshots == nil {
		return
	}

	if err := that.snapshots.CreateOrUpdate(ctx, room); err != nil {
		that.logger.Warn("failed to save room snapshot", "roomID", room.ID, "error", err)
	}
}
