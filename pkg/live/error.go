package live

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a session that has been closed.
var ErrClosed = errors.New("session closed")

func wrapError(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}
