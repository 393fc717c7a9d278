package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

type (
	Mark    string
	Status  string
	Outcome string
	Reason  string
)

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"

	MarkX     Mark = "X"
	MarkO     Mark = "O"
	EmptyCell Mark = ""

	OutcomeNone Outcome = ""
	OutcomeX    Outcome = "X"
	OutcomeO    Outcome = "O"
	OutcomeDraw Outcome = "draw"

	ReasonWin        Reason = "win"
	ReasonDraw       Reason = "draw"
	ReasonDisconnect Reason = "disconnect"
)

const (
	BoardSize  = 9
	MaxPlayers = 2
)

// WinCombos - rows, columns, diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Room struct {
	ID        string          `json:"id"`
	Players   []*Player       `json:"players"`
	Board     [BoardSize]Mark `json:"board"`
	Turn      Mark            `json:"currentTurn"`
	Status    Status          `json:"status"`
	Winner    Outcome         `json:"winner,omitempty"`
	Reason    Reason          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// GameResult - terminal result of a room, handed to transports for the game-over notice.
type GameResult struct {
	Winner Outcome `json:"winner"`
	Reason Reason  `json:"reason"`
}

func NewRoom(id string, host *Player, now time.Time) *Room {
	host.Mark = MarkX

	return &Room{
		ID:        id,
		Players:   []*Player{host},
		Turn:      MarkX,
		Status:    StatusWaiting,
		CreatedAt: now,
	}
}

// Other - returns the opposite mark.
func (that Mark) Other() Mark {
	if that == MarkX {
		return MarkO
	}
	return MarkX
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

func (that *Room) PlayerByName(name string) *Player {
	for _, player := range that.Players {
		if player.Name == name {
			return player
		}
	}
	return nil
}

// AddPlayer - seats the second player and starts the game.
func (that *Room) AddPlayer(player *Player) error {
	if that.IsFull() {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	player.Mark = MarkO
	player.Connected = true

	that.Players = append(that.Players, player)
	that.Status = StatusPlaying

	return nil
}

// DetermineGameResult - checks all lines first, a full board is a draw only when none of them wins.
func (that *Room) DetermineGameResult() Outcome {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome(a)
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range that.Board {
		if cell == EmptyCell {
			return OutcomeNone
		}
	}

	return OutcomeDraw
}

func (that *Room) MakeTurn(playerID string, cell int) error {
	if !that.IsPlaying() {
		return fmt.Errorf("%w: room is %s", apperror.ErrGameNotInProgress, that.Status)
	}

	player := that.PlayerByID(playerID)
	if player == nil {
		return apperror.ErrPlayerNotInRoom
	}

	if that.Turn != player.Mark {
		return apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidPosition, cell)
	}

	if that.Board[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell] = player.Mark
	that.UpdateGameState()

	return nil
}

func (that *Room) UpdateGameState() {
	switch outcome := that.DetermineGameResult(); outcome {
	case OutcomeX, OutcomeO:
		that.finish(outcome, ReasonWin)
	case OutcomeDraw:
		that.finish(outcome, ReasonDraw)
	default:
		that.Turn = that.Turn.Other()
	}
}

// Forfeit - marks the player as gone and, mid-game, awards the room to the opponent.
// Returns nil when no outcome was produced.
func (that *Room) Forfeit(playerID string) *GameResult {
	player := that.PlayerByID(playerID)
	if player == nil {
		return nil
	}

	player.Connected = false

	if !that.IsPlaying() {
		return nil
	}

	for _, opponent := range that.Players {
		if opponent.ID == playerID {
			continue
		}

		that.finish(Outcome(opponent.Mark), ReasonDisconnect)

		return &GameResult{Winner: that.Winner, Reason: that.Reason}
	}

	return nil
}

func (that *Room) Result() *GameResult {
	if !that.IsFinished() {
		return nil
	}
	return &GameResult{Winner: that.Winner, Reason: that.Reason}
}

// IsStale - finished rooms are always stale, others once they outlive the retention window.
func (that *Room) IsStale(now time.Time, retention time.Duration) bool {
	return that.IsFinished() || that.CreatedAt.Before(now.Add(-retention))
}

func (that *Room) Clone() *Room {
	clone := *that

	clone.Players = make([]*Player, len(that.Players))
	for i, player := range that.Players {
		p := *player
		clone.Players[i] = &p
	}

	return &clone
}

func (that *Room) finish(outcome Outcome, reason Reason) {
	if that.IsFinished() {
		return
	}

	that.Winner = outcome
	that.Reason = reason
	that.Status = StatusFinished
}
