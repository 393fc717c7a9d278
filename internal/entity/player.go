package entity

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mark      Mark   `json:"symbol"`
	Connected bool   `json:"connected"`

	// Session is bumped every time a connection takes the seat.
	Session uint64 `json:"-"`
}

func NewPlayer(id, name string, mark Mark) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Mark:      mark,
		Connected: true,
	}
}
