package emulator

import (
	"errors"

	"github.com/ezrec/esovm/translate"
)

var f = translate.From

var (
	ErrNoProgram = errors.New(f("no program loaded"))
	ErrTickLimit = errors.New(f("tick limit exceeded"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Ep     uint16
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d (ep 0x%04x) %v", err.LineNo, err.Ep, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
