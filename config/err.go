package config

import (
	"errors"

	"github.com/ezrec/esovm/translate"
)

var f = translate.From

var (
	ErrStackCapacity = errors.New(f("stack_capacity must be positive"))
	ErrTextCapacity  = errors.New(f("text_capacity must be positive"))
	ErrDotPointer    = errors.New(f("dot_pointer is not an allowed address"))
)

// ErrUndecoded lists configuration keys that were not understood.
type ErrUndecoded []string

func (err ErrUndecoded) Error() string {
	return f("unknown configuration keys %v", []string(err))
}
