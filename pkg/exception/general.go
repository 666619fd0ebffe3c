package exception

import "errors"

// General errors
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEngineStopped      = errors.New("engine stopped")
	ErrQueueFull          = errors.New("task queue full")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrNoExpiringFuture   = errors.New("no future with matching expiration date")
	ErrNoFairPrice        = errors.New("no fair price observed")
)
