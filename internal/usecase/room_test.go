package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
	"github.com/rocketscienceinc/tictactoe-rooms/testing/suite"
)

var errRedisDown = errors.New("redis down")

func waitingRoom() *entity.Room {
	return entity.NewRoom("ABC123", entity.NewPlayer("p1", "Alice", entity.MarkX), time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
}

func playingRoom() *entity.Room {
	room := waitingRoom()
	_ = room.AddPlayer(entity.NewPlayer("p2", "Bob", entity.MarkO))
	return room
}

func TestRoomUseCase_CreateRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Mirrors the new room", func(t *testing.T) {
		// Given: a registry that creates a room and a working snapshot store
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		room := waitingRoom()
		rooms.On("CreateRoom", "Alice").Return(&registry.CreateResult{RoomID: room.ID, PlayerID: "p1", Room: room}, nil).Once()
		snapshots.On("CreateOrUpdate", mock.Anything, room).Return(nil).Once()

		// When: CreateRoom is called
		created, err := useCase.CreateRoom(ctx, "Alice")

		// Then: the registry result is returned and the snapshot saved
		require.NoError(t, err)
		assert.Equal(t, "ABC123", created.RoomID)
		assert.Equal(t, "p1", created.PlayerID)
		rooms.AssertExpectations(t)
		snapshots.AssertExpectations(t)
	})

	t.Run("Snapshot failure does not fail the call", func(t *testing.T) {
		// Given: a snapshot store that is down
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		room := waitingRoom()
		rooms.On("CreateRoom", "Alice").Return(&registry.CreateResult{RoomID: room.ID, PlayerID: "p1", Room: room}, nil).Once()
		snapshots.On("CreateOrUpdate", mock.Anything, room).Return(errRedisDown).Once()

		// When: CreateRoom is called
		created, err := useCase.CreateRoom(ctx, "Alice")

		// Then: the room is still created
		require.NoError(t, err)
		assert.Equal(t, "ABC123", created.RoomID)
	})

	t.Run("Registry error is wrapped", func(t *testing.T) {
		// Given: a registry that cannot allocate an id
		rooms := &mockRegistry{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, nil)

		rooms.On("CreateRoom", "Alice").Return(nil, apperror.ErrRoomIDExhausted).Once()

		// When: CreateRoom is called
		created, err := useCase.CreateRoom(ctx, "Alice")

		// Then: the sentinel survives the wrapping
		require.ErrorIs(t, err, apperror.ErrRoomIDExhausted)
		assert.Nil(t, created)
	})
}

func TestRoomUseCase_JoinRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Mirrors the joined room", func(t *testing.T) {
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		room := playingRoom()
		rooms.On("JoinRoom", "ABC123", "Bob").Return(&registry.JoinResult{PlayerID: "p2", Room: room}, nil).Once()
		snapshots.On("CreateOrUpdate", mock.Anything, room).Return(nil).Once()

		joined, err := useCase.JoinRoom(ctx, "ABC123", "Bob")

		require.NoError(t, err)
		assert.Equal(t, "p2", joined.PlayerID)
		assert.True(t, joined.Room.IsPlaying())
		snapshots.AssertExpectations(t)
	})

	t.Run("Full room is rejected without a snapshot", func(t *testing.T) {
		// Given: a registry that reports the room as full
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		rooms.On("JoinRoom", "ABC123", "Carol").Return(nil, apperror.ErrRoomFull).Once()

		// When: JoinRoom is called
		joined, err := useCase.JoinRoom(ctx, "ABC123", "Carol")

		// Then: ErrRoomFull is returned and nothing is mirrored
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Nil(t, joined)
		snapshots.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestRoomUseCase_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Mirrors the board after a move", func(t *testing.T) {
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		room := playingRoom()
		require.NoError(t, room.MakeTurn("p1", 4))
		rooms.On("MakeMove", "ABC123", "p1", 4).Return(room, nil).Once()
		snapshots.On("CreateOrUpdate", mock.Anything, room).Return(nil).Once()

		updated, err := useCase.MakeMove(ctx, "ABC123", "p1", 4)

		require.NoError(t, err)
		assert.Equal(t, entity.MarkX, updated.Board[4])
		assert.Equal(t, entity.MarkO, updated.Turn)
		snapshots.AssertExpectations(t)
	})

	t.Run("Rejected move keeps the error", func(t *testing.T) {
		rooms := &mockRegistry{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, nil)

		rooms.On("MakeMove", "ABC123", "p2", 4).Return(nil, apperror.ErrNotYourTurn).Once()

		updated, err := useCase.MakeMove(ctx, "ABC123", "p2", 4)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, apperror.CodeNotYourTurn, apperror.Code(err))
		assert.Nil(t, updated)
	})
}

func TestRoomUseCase_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Forfeit returns the result and the finished room", func(t *testing.T) {
		// Given: a playing room where Alice drops
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		room := playingRoom()
		result := room.Forfeit("p1")
		rooms.On("EndSession", "ABC123", "p1", uint64(1)).Return(result).Once()
		rooms.On("GetRoomState", "ABC123").Return(room, true).Once()
		snapshots.On("CreateOrUpdate", mock.Anything, room).Return(nil).Once()

		// When: Disconnect is called
		got, after := useCase.Disconnect(ctx, "ABC123", "p1", 1)

		// Then: Bob wins by disconnect
		require.NotNil(t, got)
		assert.Equal(t, entity.OutcomeO, got.Winner)
		assert.Equal(t, entity.ReasonDisconnect, got.Reason)
		require.NotNil(t, after)
		assert.True(t, after.IsFinished())
		snapshots.AssertExpectations(t)
	})

	t.Run("Unknown room returns nothing", func(t *testing.T) {
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		rooms.On("EndSession", "NOPE00", "p1", uint64(1)).Return(nil).Once()
		rooms.On("GetRoomState", "NOPE00").Return(nil, false).Once()

		got, after := useCase.Disconnect(ctx, "NOPE00", "p1", 1)

		assert.Nil(t, got)
		assert.Nil(t, after)
		snapshots.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestRoomUseCase_GetRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Known room", func(t *testing.T) {
		rooms := &mockRegistry{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, nil)

		rooms.On("GetRoomState", "ABC123").Return(waitingRoom(), true).Once()

		room, err := useCase.GetRoom(ctx, "ABC123")

		require.NoError(t, err)
		assert.True(t, room.IsWaiting())
	})

	t.Run("Unknown room", func(t *testing.T) {
		rooms := &mockRegistry{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, nil)

		rooms.On("GetRoomState", "NOPE00").Return(nil, false).Once()

		room, err := useCase.GetRoom(ctx, "NOPE00")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Nil(t, room)
	})
}

func TestRoomUseCase_CleanupStaleRooms(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes snapshots of evicted rooms", func(t *testing.T) {
		// Given: two rooms are evicted and one snapshot already expired
		rooms := &mockRegistry{}
		snapshots := &mockRoomRepo{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, snapshots)

		rooms.On("CleanupStaleRooms").Return([]string{"AAAAAA", "BBBBBB"}).Once()
		snapshots.On("DeleteByID", mock.Anything, "AAAAAA").Return(nil).Once()
		snapshots.On("DeleteByID", mock.Anything, "BBBBBB").Return(errRedisDown).Once()

		// When: the sweep runs
		evicted := useCase.CleanupStaleRooms(ctx)

		// Then: both rooms are counted regardless of the mirror
		assert.Equal(t, 2, evicted)
		snapshots.AssertExpectations(t)
	})

	t.Run("Works without a mirror", func(t *testing.T) {
		rooms := &mockRegistry{}
		useCase := NewRoomUseCase(suite.Logger(), rooms, nil)

		rooms.On("CleanupStaleRooms").Return([]string(nil)).Once()

		assert.Zero(t, useCase.CleanupStaleRooms(ctx))
	})
}

func TestRoomUseCase_WithRegistry(t *testing.T) {
	ctx := context.Background()

	// Given: a real registry without a mirror
	useCase := NewRoomUseCase(suite.Logger(), registry.New(suite.Logger()), nil)

	// When: two players create, join and make a move
	created, err := useCase.CreateRoom(ctx, "Alice")
	require.NoError(t, err)

	joined, err := useCase.JoinRoom(ctx, created.RoomID, "Bob")
	require.NoError(t, err)

	room, err := useCase.MakeMove(ctx, created.RoomID, created.PlayerID, 0)
	require.NoError(t, err)

	// Then: the room reflects the move and Bob is next
	assert.True(t, joined.Room.IsPlaying())
	assert.Equal(t, entity.MarkX, room.Board[0])
	assert.Equal(t, entity.MarkO, room.Turn)

	_, err = useCase.MakeMove(ctx, created.RoomID, created.PlayerID, 1)
	require.ErrorIs(t, err, apperror.ErrNotYourTurn)
}
