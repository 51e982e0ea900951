// Package machine implements the esoteric byte-code virtual machine.
//
// The machine has a flat 64KiB memory addressed by a wrapping 16-bit cursor,
// a bounded byte stack, a bounded text register, and a fixed register bank:
// A (exit code), B (signed 16-bit), L (unsigned 16-bit), F (float64), Ch
// (character), a 37 slot signed byte array, the Num register, and the Omega
// register of odd flags.
//
// Instructions are a one byte opcode followed by a fixed, opcode specific
// operand layout. Multi-byte operands are big-endian. Decode and Encode are
// driven by the same layout table.
//
// Recoverable failures raise the sticky Flag. The only fatal condition is
// fetching an invalid opcode. The machine halts only when skiptothechase
// executes after theendisnear.
package machine
