package machine

import (
	"errors"

	"github.com/ezrec/esovm/translate"
)

var f = translate.From

var (
	// Bounded region errors
	ErrStackOverflow  = errors.New(f("stack overflow"))
	ErrStackUnderflow = errors.New(f("stack underflow"))
	ErrTextOverflow   = errors.New(f("text overflow"))
	ErrTextIndex      = errors.New(f("text index out of range"))

	// Instruction decode errors
	ErrOpcodeInvalid = errors.New(f("invalid opcode"))
	ErrChoiceInvalid = errors.New(f("invalid choice"))

	// Machine errors
	ErrHalted = errors.New(f("machine halted"))
)

// ErrDecode reports an instruction that could not be decoded.
type ErrDecode struct {
	Address uint16 // Address of the opcode byte.
	Opcode  byte   // Opcode byte at Address.
	Err     error
}

func (err *ErrDecode) Error() string {
	return f("0x%04x: opcode 0x%02x: %v", err.Address, err.Opcode, err.Err)
}

func (err *ErrDecode) Unwrap() error {
	return err.Err
}

// ErrInvalidOpcode is the fatal fault raised when the execution pointer
// reaches bytes that do not decode to an instruction.
type ErrInvalidOpcode struct {
	*ErrDecode
}

func (err ErrInvalidOpcode) Error() string {
	return f("fatal: invalid opcode fault at %v", err.ErrDecode.Error())
}

func (err ErrInvalidOpcode) Unwrap() error {
	return err.ErrDecode
}

func (err ErrInvalidOpcode) Is(target error) bool {
	return target == ErrOpcodeInvalid
}
