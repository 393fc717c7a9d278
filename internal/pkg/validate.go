package pkg

import (
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const MaxPlayerNameLength = 20

// NormalizePlayerName - trims the name and checks it is 1-20 characters long.
func NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" || utf8.RuneCountInString(name) > MaxPlayerNameLength {
		return "", apperror.ErrInvalidPlayerName
	}

	return name, nil
}
