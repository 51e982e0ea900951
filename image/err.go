package image

import (
	"errors"

	"github.com/ezrec/esovm/translate"
)

var f = translate.From

var (
	ErrMagic   = errors.New(f("not an esovm image"))
	ErrVersion = errors.New(f("image version unsupported"))
	ErrSegment = errors.New(f("image segment too large"))
)
