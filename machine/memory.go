package machine

import (
	"encoding/binary"
)

const (
	MEMORY_SIZE = 1 << 16 // Bytes of addressable memory.
	DOT         = '.'     // Sentinel byte the dot pointer must address.
)

// Memory is the flat machine memory. Every index is a uint16, so all address
// arithmetic wraps modulo MEMORY_SIZE.
type Memory [MEMORY_SIZE]byte

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint16) byte {
	return mem[addr]
}

// Write stores a byte at addr.
func (mem *Memory) Write(addr uint16, value byte) {
	mem[addr] = value
}

// ReadBytes copies n bytes starting at addr, wrapping at the end of memory.
func (mem *Memory) ReadBytes(addr uint16, n int) (data []byte) {
	data = make([]byte, n)
	for i := range data {
		data[i] = mem[addr+uint16(i)]
	}
	return
}

// WriteBytes stores data starting at addr, wrapping at the end of memory,
// and returns the address following the last byte written.
func (mem *Memory) WriteBytes(addr uint16, data []byte) (next uint16) {
	for i, b := range data {
		mem[addr+uint16(i)] = b
	}
	return addr + uint16(len(data))
}

// ReadU16 reads a big-endian 16-bit value at addr.
func (mem *Memory) ReadU16(addr uint16) uint16 {
	return binary.BigEndian.Uint16(mem.ReadBytes(addr, 2))
}

// WriteU16 writes a big-endian 16-bit value at addr.
func (mem *Memory) WriteU16(addr uint16, value uint16) {
	mem.WriteBytes(addr, binary.BigEndian.AppendUint16(nil, value))
}

// ReadU64 reads a big-endian 64-bit value at addr.
func (mem *Memory) ReadU64(addr uint16) uint64 {
	return binary.BigEndian.Uint64(mem.ReadBytes(addr, 8))
}

// WriteU64 writes a big-endian 64-bit value at addr.
func (mem *Memory) WriteU64(addr uint16, value uint64) {
	mem.WriteBytes(addr, binary.BigEndian.AppendUint64(nil, value))
}

// CString returns the bytes from addr up to, not including, the first NUL.
// The scan wraps and stops after one full lap of memory.
func (mem *Memory) CString(addr uint16) (data []byte) {
	for n := range MEMORY_SIZE {
		b := mem[addr+uint16(n)]
		if b == 0 {
			break
		}
		data = append(data, b)
	}
	return
}

// Region returns the bytes in [from, to), wrapping. from == to is empty.
func (mem *Memory) Region(from, to uint16) []byte {
	return mem.ReadBytes(from, int(to-from))
}
