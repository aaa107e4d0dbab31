package platform

import (
	"errors"
)

// ErrAlreadyRunning is an error returned when run can't be started because previous run is not finished yet.
var ErrAlreadyRunning = errors.New("aggregation run already in progress")

// ErrInvalidListing is an error returned when storage rejects single listing.
var ErrInvalidListing = errors.New("listing rejected by storage")
