package machine

import (
	"fmt"
	"strconv"
)

// Item is a unit of a program image: an Instruction, a Byte, or Data.
type Item interface {
	fmt.Stringer

	Size() int
	Bytes() ([]byte, error)

	isItem()
}

// Byte is a single raw byte item.
type Byte uint8

func (b Byte) Size() int { return 1 }

func (b Byte) Bytes() ([]byte, error) { return []byte{byte(b)}, nil }

func (b Byte) String() string { return fmt.Sprintf("byte 0x%02x", uint8(b)) }

// Data is a raw block of bytes.
type Data []byte

func (d Data) Size() int { return len(d) }

func (d Data) Bytes() ([]byte, error) { return []byte(d), nil }

func (d Data) String() string { return "data " + strconv.Quote(string(d)) }

func (Byte) isItem()        {}
func (Data) isItem()        {}
func (Instruction) isItem() {}

// Load writes items sequentially starting at offset, and returns the offset
// following the last item. Writes wrap at the end of memory and silently
// overwrite earlier bytes.
func (mem *Memory) Load(items []Item, offset uint16) (next uint16, err error) {
	next = offset
	for _, item := range items {
		var data []byte
		data, err = item.Bytes()
		if err != nil {
			return
		}
		next = mem.WriteBytes(next, data)
	}
	return
}
