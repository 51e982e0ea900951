package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/esovm/machine"
)

var _ machine.Console = (*Tape)(nil)
var _ machine.Console = (*Terminal)(nil)

func TestTape_ReadKey(t *testing.T) {
	assert := assert.New(t)

	tc := &Tape{Input: strings.NewReader("a\n\té")}

	key, err := tc.ReadKey()
	assert.NoError(err)
	assert.Equal('a', key)

	key, err = tc.ReadKey()
	assert.NoError(err)
	assert.Equal('é', key)

	_, err = tc.ReadKey()
	assert.ErrorIs(err, io.EOF)
}

func TestTape_ReadLine(t *testing.T) {
	assert := assert.New(t)

	tc := &Tape{Input: strings.NewReader("one\r\ntwo\nthree")}

	for _, expected := range []string{"one", "two", "three"} {
		line, err := tc.ReadLine()
		assert.NoError(err)
		assert.Equal(expected, line)
	}

	_, err := tc.ReadLine()
	assert.ErrorIs(err, io.EOF)
}

func TestTape_Mixed(t *testing.T) {
	assert := assert.New(t)

	tc := &Tape{Input: strings.NewReader("yline\n")}

	key, err := tc.ReadKey()
	assert.NoError(err)
	assert.Equal('y', key)

	line, err := tc.ReadLine()
	assert.NoError(err)
	assert.Equal("line", line)
}

func TestTape_Detached(t *testing.T) {
	assert := assert.New(t)

	tc := &Tape{}
	_, err := tc.ReadKey()
	assert.ErrorIs(err, ErrNoInput)
	_, err = tc.ReadLine()
	assert.ErrorIs(err, ErrNoInput)
	_, err = tc.Write([]byte("x"))
	assert.ErrorIs(err, ErrNoOutput)

	restore, err := tc.MakeRaw()
	assert.NoError(err)
	assert.NoError(restore())
}

func TestTape_Write(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tc := &Tape{Output: out}
	n, err := tc.Write([]byte("hello"))
	assert.NoError(err)
	assert.Equal(5, n)
	assert.Equal("hello", out.String())
}
