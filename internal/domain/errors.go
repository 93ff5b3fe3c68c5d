package domain

import "errors"

// ErrNotFound is returned by stores when a program or summary does not exist.
var ErrNotFound = errors.New("not found")
