package game

import "errors"

// Sentinel errors returned by Game operations. Callers match them with
// errors.Is; the wrapping message carries the specific detail.
var (
	// ErrInvalidArgument reports a malformed argument, such as an out of
	// range bet or an unknown hand index.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyResource reports that the shoe ran out of cards mid round.
	ErrEmptyResource = errors.New("empty resource")

	// ErrNotInitialized reports use of a Game that was not constructed
	// with NewGame.
	ErrNotInitialized = errors.New("not initialized")

	// ErrIllegalAction reports an operation that is not legal in the
	// current phase or for the current hand.
	ErrIllegalAction = errors.New("illegal action")

	// ErrInsufficientFunds reports a wager the bankroll cannot cover.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
