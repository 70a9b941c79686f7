package game

import (
	"errors"

	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// Command rejections, shared with the rules package.
var (
	ErrInvalidPhase        = rules.ErrInvalidPhase
	ErrNotYourTurn         = rules.ErrNotYourTurn
	ErrIllegalBid          = rules.ErrIllegalBid
	ErrIllegalCard         = rules.ErrIllegalCard
	ErrInvalidExchangeSize = rules.ErrInvalidExchangeSize
	ErrDuplicateSubmission = rules.ErrDuplicateSubmission
	ErrUnknownSeat         = rules.ErrUnknownSeat
	ErrInvalidSuit         = rules.ErrInvalidSuit
)

// Engine registry errors.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// IsRejection reports whether err is a command validation failure rather
// than an engine error.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidPhase, ErrNotYourTurn, ErrIllegalBid, ErrIllegalCard,
		ErrInvalidExchangeSize, ErrDuplicateSubmission, ErrUnknownSeat, ErrInvalidSuit,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
