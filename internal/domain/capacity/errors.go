package capacity

import (
	"errors"
	"fmt"
)

// ErrInsufficientCapacity is the errors.Is target for rejections; the
// concrete *InsufficientError carries the exhausted key for the caller's
// message.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

type InsufficientError struct {
	Key       Key
	Requested int
	Remaining int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient capacity for %s: requested %d, %d remaining",
		e.Key, e.Requested, e.Remaining)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}
