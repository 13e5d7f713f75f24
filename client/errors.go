package client

import "errors"

var (
	ErrClosed = errors.New("Connection is closed")
)
