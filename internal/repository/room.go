package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const roomKeyPrefix = "room:"

var ErrRoomNotFound = errors.New("room snapshot not found")

// RoomRepository mirrors room snapshots for readers outside the process.
// Snapshots expire after the retention window and are never used to restore the registry.
type RoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	DeleteByID(ctx context.Context, id string) error
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbRoom) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKeyPrefix+room.ID, roomJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, roomKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room by id: %w", err)
	}

	if deleted == 0 {
		return ErrRoomNotFound
	}

	return nil
}
