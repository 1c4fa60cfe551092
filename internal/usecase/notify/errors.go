package notify

import "errors"

// ErrInvalidType indicates an unknown notification type.
var ErrInvalidType = errors.New("notify: invalid notification type")
