package model

import "errors"

// Domain error taxonomy. Callers wrap these with context and test with errors.Is.
var (
	// ErrInvalidArgument marks malformed input, e.g. a draw from an empty pool or a negative amount.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfiguration is only produced at setup time.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInsufficientPool means an extra-value payoff could not select any number.
	ErrInsufficientPool = errors.New("could not pay off numbers with this amount")
	// ErrPreconditionViolation marks an operation attempted in the wrong game phase.
	ErrPreconditionViolation = errors.New("precondition violation")
)
