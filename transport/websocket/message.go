package websocket

import (
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	typeCreateRoom = "create-room"
	typeJoinRoom   = "join-room"
	typeMakeMove   = "make-move"

	typeRoomCreated        = "room-created"
	typePlayerJoined       = "player-joined"
	typeGameStart          = "game-start"
	typeMoveMade           = "move-made"
	typeGameOver           = "game-over"
	typePlayerDisconnected = "player-disconnected"
	typeError              = "error"
)

// ClientMessage - every inbound message, fields are used depending on Type.
type ClientMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Position   *int   `json:"position,omitempty"`
}

type ServerMessage struct {
	Type       string         `json:"type"`
	RoomID     string         `json:"roomId,omitempty"`
	PlayerID   string         `json:"playerId,omitempty"`
	PlayerName string         `json:"playerName,omitempty"`
	Winner     entity.Outcome `json:"winner,omitempty"`
	Reason     entity.Reason  `json:"reason,omitempty"`
	GameState  *entity.Room   `json:"gameState,omitempty"`
	Message    string         `json:"message,omitempty"`
	Code       string         `json:"code,omitempty"`
}

func errorMessage(message, code string) ServerMessage {
	return ServerMessage{Type: typeError, Message: message, Code: code}
}

func gameOverMessage(result *entity.GameResult, room *entity.Room) ServerMessage {
	return ServerMessage{
		Type:      typeGameOver,
		Winner:    result.Winner,
		Reason:    result.Reason,
		GameState: room,
	}
}
