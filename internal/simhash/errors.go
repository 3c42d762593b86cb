package simhash

import "errors"

var (
	// ErrUnknownHasher is returned by HasherByName for unregistered names.
	ErrUnknownHasher = errors.New("unknown shingle hash")
)
