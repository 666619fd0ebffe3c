package exception

import "errors"

// Order ledger and quoting errors
var (
	ErrDuplicateOrder = errors.New("order already exists")
	ErrUnknownOrder   = errors.New("order not found")
	ErrInvalidFill    = errors.New("invalid fill quantity")
	ErrCrossedQuotes  = errors.New("generated bid crosses generated ask")
)
