package schedule

import "github.com/cockroachdb/errors"

var (
	ErrUnknownOrder     = errors.New("order does not exist")
	ErrAlreadyDelivered = errors.New("order has already been delivered")
	ErrOutForDelivery   = errors.New("order is out for delivery")
	ErrDuplicateOrder   = errors.New("order already exists")
)
