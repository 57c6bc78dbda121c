package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("user doesn't have sufficient rights to access the auction")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")

	ErrValidationFailed = errors.New("validation failed")
	ErrNoNewChanges     = errors.New("no new values")
	ErrAuctionLocked    = errors.New("auction can only be edited while active and without bids")
	ErrAuctionFinished  = errors.New("auction can no longer be deleted")

	ErrWindowClosed   = errors.New("auction is not accepting bids")
	ErrBidTooLow      = errors.New("bid must exceed the current price")
	ErrOwnBid         = errors.New("owner can't bid on their own auction")
	ErrCartNotAllowed = errors.New("only the winner of a completed auction can add it to the cart")

	ErrPersistenceFailure = errors.New("storage is temporarily unavailable")
	ErrEventsUnavailable  = errors.New("live auction events are not available")
)

// BidTooLowError reports the amount a rejected bid had to exceed.
type BidTooLowError struct {
	MinimumToBeat decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s: must be greater than %s", ErrBidTooLow, e.MinimumToBeat.StringFixed(2))
}

func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
}
