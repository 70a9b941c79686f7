package rules

import "errors"

// Rejection reasons. Every command failure wraps exactly one of these so
// callers can classify it with errors.Is.
var (
	ErrInvalidPhase        = errors.New("command not applicable to current phase")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrIllegalBid          = errors.New("illegal bid")
	ErrIllegalCard         = errors.New("illegal card")
	ErrInvalidExchangeSize = errors.New("exchange requires exactly two cards")
	ErrDuplicateSubmission = errors.New("seat already submitted")
	ErrUnknownSeat         = errors.New("unknown seat")
	ErrInvalidSuit         = errors.New("invalid suit")
)
