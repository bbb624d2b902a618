package part

import "errors"

var (
	// ErrBlankMPN is reported for request items that normalize to an empty key.
	ErrBlankMPN = errors.New("blank part number")

	// ErrNoSelection is returned when an ambiguous result is resolved with an
	// index outside its candidate list.
	ErrNoSelection = errors.New("selection out of range")
)
