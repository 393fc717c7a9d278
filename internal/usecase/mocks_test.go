package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
)

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) CreateRoom(playerName string) (*registry.CreateResult, error) {
	args := m.Called(playerName)
	created, _ := args.Get(0).(*registry.CreateResult)
	return created, args.Error(1)
}

func (m *mockRegistry) JoinRoom(roomID, playerName string) (*registry.JoinResult, error) {
	args := m.Called(roomID, playerName)
	joined, _ := args.Get(0).(*registry.JoinResult)
	return joined, args.Error(1)
}

func (m *mockRegistry) MakeMove(roomID, playerID string, position int) (*entity.Room, error) {
	args := m.Called(roomID, playerID, position)
	room, _ := args.Get(0).(*entity.Room)
	return room, args.Error(1)
}

func (m *mockRegistry) EndSession(roomID, playerID string, session uint64) *entity.GameResult {
	args := m.Called(roomID, playerID, session)
	result, _ := args.Get(0).(*entity.GameResult)
	return result
}

func (m *mockRegistry) GetRoomState(roomID string) (*entity.Room, bool) {
	args := m.Called(roomID)
	room, _ := args.Get(0).(*entity.Room)
	return room, args.Bool(1)
}

func (m *mockRegistry) CleanupStaleRooms() []string {
	args := m.Called()
	ids, _ := args.Get(0).([]string)
	return ids
}

type mockRoomRepo struct {
	mock.Mock
}

func (m *mockRoomRepo) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockRoomRepo) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
