package machine

import (
	"encoding/binary"
)

const (
	STACK_CAPACITY = 4095 // Default stack capacity, in bytes.
)

// Stack is a bounded byte stack. Every operation either completes fully or
// leaves the stack unchanged.
//
// A zero Stack has a capacity of STACK_CAPACITY.
type Stack struct {
	Data []byte

	capacity int
}

// NewStack returns an empty stack with the given capacity.
func NewStack(capacity int) *Stack {
	return &Stack{capacity: capacity}
}

// Capacity of the stack, in bytes.
func (s *Stack) Capacity() int {
	if s.capacity <= 0 {
		return STACK_CAPACITY
	}
	return s.capacity
}

// Used bytes.
func (s *Stack) Used() int {
	return len(s.Data)
}

// Left is the number of bytes that can still be pushed.
func (s *Stack) Left() int {
	return s.Capacity() - len(s.Data)
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return s.Left() == 0
}

// Push a single byte.
func (s *Stack) Push(value byte) (err error) {
	return s.PushBytes([]byte{value})
}

// PushBytes pushes data in order, so the last byte ends up on top.
func (s *Stack) PushBytes(data []byte) (err error) {
	if len(data) > s.Left() {
		err = ErrStackOverflow
		return
	}
	s.Data = append(s.Data, data...)
	return
}

// PushU16 pushes a big-endian 16-bit value.
func (s *Stack) PushU16(value uint16) error {
	return s.PushBytes(binary.BigEndian.AppendUint16(nil, value))
}

// PushU32 pushes a big-endian 32-bit value.
func (s *Stack) PushU32(value uint32) error {
	return s.PushBytes(binary.BigEndian.AppendUint32(nil, value))
}

// PushU64 pushes a big-endian 64-bit value.
func (s *Stack) PushU64(value uint64) error {
	return s.PushBytes(binary.BigEndian.AppendUint64(nil, value))
}

// Pop a single byte.
func (s *Stack) Pop() (value byte, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

// PopBytes removes the top n bytes, returned in push order.
func (s *Stack) PopBytes(n int) (data []byte, ok bool) {
	if n < 0 || n > len(s.Data) {
		return
	}
	top := len(s.Data) - n
	data = append([]byte(nil), s.Data[top:]...)
	s.Data = s.Data[:top]
	ok = true
	return
}

// PopU16 pops a big-endian 16-bit value.
func (s *Stack) PopU16() (value uint16, ok bool) {
	data, ok := s.PopBytes(2)
	if ok {
		value = binary.BigEndian.Uint16(data)
	}
	return
}

// PopU32 pops a big-endian 32-bit value.
func (s *Stack) PopU32() (value uint32, ok bool) {
	data, ok := s.PopBytes(4)
	if ok {
		value = binary.BigEndian.Uint32(data)
	}
	return
}

// PopU64 pops a big-endian 64-bit value.
func (s *Stack) PopU64() (value uint64, ok bool) {
	data, ok := s.PopBytes(8)
	if ok {
		value = binary.BigEndian.Uint64(data)
	}
	return
}

// Peek at the top byte.
func (s *Stack) Peek() (value byte, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

// Alloc pushes n zero bytes.
func (s *Stack) Alloc(n int) (err error) {
	return s.PushBytes(make([]byte, n))
}

// Dealloc discards the top n bytes.
func (s *Stack) Dealloc(n int) (err error) {
	if _, ok := s.PopBytes(n); !ok {
		err = ErrStackUnderflow
	}
	return
}

// Region returns a copy of the used bytes in [from, to).
func (s *Stack) Region(from, to int) (data []byte, ok bool) {
	if from < 0 || from > to || to > len(s.Data) {
		return
	}
	return append([]byte(nil), s.Data[from:to]...), true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
