package console

import (
	"errors"

	"github.com/ezrec/esovm/translate"
)

var f = translate.From

var (
	ErrNoInput   = errors.New(f("console has no input"))
	ErrNoOutput  = errors.New(f("console has no output"))
	ErrInterrupt = errors.New(f("console interrupted"))
)
