package websocket

import (
	"context"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
)

func (that *Server) handleCreateRoom(ctx context.Context, c *client, message *ClientMessage) error {
	name, err := pkg.NormalizePlayerName(message.PlayerName)
	if err != nil {
		return err
	}

	created, err := that.rooms.CreateRoom(ctx, name)
	if err != nil {
		return err
	}

	that.takeSeat(ctx, c, seat{roomID: created.RoomID, playerID: created.PlayerID, session: created.Session})

	that.reply(c, ServerMessage{
		Type:      typeRoomCreated,
		RoomID:    created.RoomID,
		PlayerID:  created.PlayerID,
		GameState: created.Room,
	})

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, c *client, message *ClientMessage) error {
	name, err := pkg.NormalizePlayerName(message.PlayerName)
	if err != nil {
		return err
	}

	roomID := strings.ToUpper(strings.TrimSpace(message.RoomID))

	joined, err := that.rooms.JoinRoom(ctx, roomID, name)
	if err != nil {
		return err
	}

	that.takeSeat(ctx, c, seat{roomID: roomID, playerID: joined.PlayerID, session: joined.Session})

	// the player id goes to the joining socket only
	that.reply(c, ServerMessage{
		Type:       typePlayerJoined,
		RoomID:     roomID,
		PlayerID:   joined.PlayerID,
		PlayerName: name,
		GameState:  joined.Room,
	})
	that.hub.broadcast(roomID, ServerMessage{
		Type:       typePlayerJoined,
		PlayerName: name,
		GameState:  joined.Room,
	}, c)

	if joined.Room.IsPlaying() && !joined.Reconnected {
		that.hub.broadcast(roomID, ServerMessage{Type: typeGameStart, GameState: joined.Room}, nil)
	}

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, c *client, message *ClientMessage) error {
	if message.Position == nil {
		return apperror.ErrInvalidPosition
	}

	held := c.held()
	if held.playerID == "" {
		return apperror.ErrPlayerNotInRoom
	}

	// a socket may only move for the seat it holds
	if (message.RoomID != "" && !strings.EqualFold(message.RoomID, held.roomID)) ||
		(message.PlayerID != "" && message.PlayerID != held.playerID) {
		return apperror.ErrPlayerNotInRoom
	}

	room, err := that.rooms.MakeMove(ctx, held.roomID, held.playerID, *message.Position)
	if err != nil {
		return err
	}

	that.hub.broadcast(held.roomID, ServerMessage{Type: typeMoveMade, GameState: room}, nil)

	if result := room.Result(); result != nil {
		that.hub.broadcast(held.roomID, gameOverMessage(result, room), nil)
	}

	return nil
}

// takeSeat - binds the socket to a seat, ending the session it held before.
func (that *Server) takeSeat(ctx context.Context, c *client, next seat) {
	prev := c.bind(next)

	if prev.roomID != "" && (prev.roomID != next.roomID || prev.playerID != next.playerID) {
		that.hub.remove(prev.roomID, c)
		that.disconnect(ctx, prev)
	}

	that.hub.add(next.roomID, c)
}

func (that *Server) leave(ctx context.Context, c *client) {
	prev := c.bind(seat{})
	if prev.roomID == "" {
		return
	}

	that.hub.remove(prev.roomID, c)
	that.disconnect(ctx, prev)
}

// disconnect - a session taken over by a newer connection ends without touching the room.
func (that *Server) disconnect(ctx context.Context, ended seat) {
	result, room := that.rooms.Disconnect(ctx, ended.roomID, ended.playerID, ended.session)
	if result != nil {
		that.hub.broadcast(ended.roomID, gameOverMessage(result, room), nil)
		return
	}

	if room == nil {
		return
	}

	// still connected means another socket holds the seat now
	if player := room.PlayerByID(ended.playerID); player == nil || player.Connected {
		return
	}

	that.hub.broadcast(ended.roomID, ServerMessage{Type: typePlayerDisconnected, PlayerID: ended.playerID, GameState: room}, nil)
}
