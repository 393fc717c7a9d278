package apperror

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrPlayerNotInRoom   = errors.New("player not in room")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrRoomIDExhausted   = errors.New("could not allocate a free room id")
	ErrInvalidPlayerName = errors.New("player name must be 1-20 characters")
)

const (
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeGameNotInProgress = "GAME_NOT_IN_PROGRESS"
	CodePlayerNotInRoom   = "PLAYER_NOT_IN_ROOM"
	CodeNotYourTurn       = "NOT_YOUR_TURN"
	CodeInvalidPosition   = "INVALID_POSITION"
	CodeCellOccupied      = "CELL_OCCUPIED"
	CodeBadRequest        = "BAD_REQUEST"
	CodeInternal          = "INTERNAL"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, CodeRoomNotFound},
	{ErrRoomFull, CodeRoomFull},
	{ErrGameNotInProgress, CodeGameNotInProgress},
	{ErrPlayerNotInRoom, CodePlayerNotInRoom},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrInvalidPosition, CodeInvalidPosition},
	{ErrCellOccupied, CodeCellOccupied},
	{ErrInvalidPlayerName, CodeBadRequest},
}

// Code - returns the machine readable code for a (possibly wrapped) room error.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}

// Message - returns the player facing text of a room error without the wrapping context.
func Message(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.err.Error()
		}
	}

	return "internal error"
}
