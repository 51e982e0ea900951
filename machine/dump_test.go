package machine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}
	program := []Item{
		Make(OP_LDIDP, DOT_POINTER_DEFAULT),
		MakeSetir(1, -2),
		Byte(0xee),
		MakeChoiceSet(CHOICE_NOTHING),
		Make(OP_SKIP_TO_THE_CHASE),
	}
	end, err := mem.Load(program, 0xfffc)
	assert.NoError(err)

	var listing []string
	var addrs []uint16
	for addr, item := range Disassemble(mem, 0xfffc, end) {
		addrs = append(addrs, addr)
		listing = append(listing, item.String())
	}

	assert.Equal([]uint16{0xfffc, 0xffff, 0x0002, 0x0003, 0x0005}, addrs)
	assert.Equal([]string{
		"ldidp 0x6ff1",
		"setir 1 -2",
		"byte 0xee",
		"choiceset nothing",
		"skiptothechase",
	}, listing)
}

func TestMachine_Dump(t *testing.T) {
	assert := assert.New(t)

	m := New()
	m.B = -1
	m.Omega.Choice = CHOICE_SOME_NOTHING

	buf := &bytes.Buffer{}
	assert.NoError(m.Dump(buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(19, len(lines))
	assert.Contains(buf.String(), "b: 0xFFFF (-1)")
	assert.Contains(buf.String(), "choice: Some Nothing")
	assert.Contains(m.String(), "b=-1 ")
}
