package machine

import (
	"io"
)

// Console is the host terminal used by the I/O instructions.
type Console interface {
	io.Writer

	// MakeRaw switches the console to raw key input, returning a function
	// that restores the previous mode.
	MakeRaw() (restore func() error, err error)

	// ReadKey blocks until a single key is available.
	ReadKey() (key rune, err error)

	// ReadLine reads a line of text, without the line terminator.
	ReadLine() (line string, err error)
}
