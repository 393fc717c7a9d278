package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	RoomIDLength   = 6
	RoomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var alphabetSize = big.NewInt(int64(len(RoomIDAlphabet)))

// GenerateRoomID - generates a short uppercase alphanumeric room code.
func GenerateRoomID() (string, error) {
	id := make([]byte, RoomIDLength)

	for i := range id {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random index: %w", err)
		}

		id[i] = RoomIDAlphabet[n.Int64()]
	}

	return string(id), nil
}

// GeneratePlayerID - generates an opaque player token.
func GeneratePlayerID() string {
	return uuid.NewString()
}
