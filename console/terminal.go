package console

import (
	"io"
	"os"
	"unicode"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

const (
	KEY_INTERRUPT = 0x03 // ^C
	KEY_EOF       = 0x04 // ^D
)

// Terminal is an interactive console on a host tty.
type Terminal struct {
	In          *os.File
	Out         io.Writer
	HistoryFile string // Line history, if set.

	rl *readline.Instance
}

// NewTerminal creates a terminal on the process standard streams.
func NewTerminal() *Terminal {
	return &Terminal{
		In:  os.Stdin,
		Out: os.Stdout,
	}
}

// IsTerminal reports if the input is an interactive tty.
func (tty *Terminal) IsTerminal() bool {
	return term.IsTerminal(int(tty.In.Fd()))
}

func (tty *Terminal) Write(data []byte) (n int, err error) {
	if tty.Out == nil {
		err = ErrNoOutput
		return
	}
	return tty.Out.Write(data)
}

// MakeRaw puts the tty in raw mode. On a non-tty input it does nothing.
func (tty *Terminal) MakeRaw() (restore func() error, err error) {
	restore = func() error { return nil }
	if !tty.IsTerminal() {
		return
	}

	fd := int(tty.In.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	restore = func() error { return term.Restore(fd, state) }
	return
}

// ReadKey blocks until a printable key is pressed. ^C and ^D end the read
// with ErrInterrupt and io.EOF.
func (tty *Terminal) ReadKey() (key rune, err error) {
	var buf [utf8.UTFMax]byte
	for {
		n := 0
		for !utf8.FullRune(buf[:n]) {
			_, err = tty.In.Read(buf[n : n+1])
			if err != nil {
				return
			}
			n++
		}

		key, _ = utf8.DecodeRune(buf[:n])
		switch {
		case key == KEY_INTERRUPT:
			err = ErrInterrupt
			return
		case key == KEY_EOF:
			err = io.EOF
			return
		case !unicode.IsControl(key) && key != utf8.RuneError:
			return
		}
	}
}

// ReadLine reads a line with editing and history.
func (tty *Terminal) ReadLine() (line string, err error) {
	if tty.rl == nil {
		tty.rl, err = readline.NewEx(&readline.Config{
			Prompt:      "",
			HistoryFile: tty.HistoryFile,
			Stdin:       tty.In,
			Stdout:      tty.Out,
		})
		if err != nil {
			return
		}
	}

	line, err = tty.rl.Readline()
	if err == readline.ErrInterrupt {
		err = ErrInterrupt
	}
	return
}

// Close releases the line editor.
func (tty *Terminal) Close() (err error) {
	if tty.rl != nil {
		err = tty.rl.Close()
		tty.rl = nil
	}
	return
}
