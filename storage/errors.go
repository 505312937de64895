package storage

import "errors"

var ErrCorruptValue = errors.New("corrupt stored value")
