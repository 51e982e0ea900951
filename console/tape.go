package console

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Tape is a console over plain streams. Raw mode has no effect.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
}

func (tc *Tape) input() (reader *bufio.Reader, err error) {
	if tc.Input == nil {
		err = ErrNoInput
		return
	}
	if tc.reader == nil {
		tc.reader = bufio.NewReader(tc.Input)
	}
	return tc.reader, nil
}

// Write sends output to the tape.
func (tc *Tape) Write(data []byte) (n int, err error) {
	if tc.Output == nil {
		err = ErrNoOutput
		return
	}
	return tc.Output.Write(data)
}

// MakeRaw does nothing on a tape.
func (tc *Tape) MakeRaw() (restore func() error, err error) {
	restore = func() error { return nil }
	return
}

// ReadKey returns the next printable rune, skipping control characters.
func (tc *Tape) ReadKey() (key rune, err error) {
	reader, err := tc.input()
	if err != nil {
		return
	}
	for {
		key, _, err = reader.ReadRune()
		if err != nil {
			return
		}
		if !unicode.IsControl(key) {
			return
		}
	}
}

// ReadLine returns the next line, without its terminator. A final line
// without a terminator is returned without error.
func (tc *Tape) ReadLine() (line string, err error) {
	reader, err := tc.input()
	if err != nil {
		return
	}
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	line = strings.TrimRight(line, "\r\n")
	return
}
