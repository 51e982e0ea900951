// Package image persists assembled programs as CBOR byte-code images.
package image

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/esovm/asm"
	"github.com/ezrec/esovm/machine"
)

const (
	MAGIC   = "esovm" // Image identifier.
	VERSION = 1       // Current image version.
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Segment is a run of bytes loaded at an offset.
type Segment struct {
	Offset uint16 `cbor:"1,keyasint"`
	Data   []byte `cbor:"2,keyasint"`
}

// Line maps a range of addresses to a source line.
type Line struct {
	Offset uint16 `cbor:"1,keyasint"`
	Size   uint16 `cbor:"2,keyasint"`
	LineNo int    `cbor:"3,keyasint"`
}

// Image is a loadable byte-code image.
type Image struct {
	Magic    string    `cbor:"1,keyasint"`
	Version  uint      `cbor:"2,keyasint"`
	Entry    uint16    `cbor:"3,keyasint"`
	Segments []Segment `cbor:"4,keyasint"`
	Lines    []Line    `cbor:"5,keyasint,omitempty"` // Source line map, if any.
}

// FromProgram builds an image from an assembled program.
func FromProgram(prog *asm.Program) (img *Image, err error) {
	segs, err := prog.Segments()
	if err != nil {
		return
	}

	img = &Image{
		Magic:   MAGIC,
		Version: VERSION,
		Entry:   prog.Entry,
	}

	for _, seg := range segs {
		img.Segments = append(img.Segments, Segment{Offset: seg.Offset, Data: seg.Data})
	}

	for _, st := range prog.Statements {
		size := st.Size()
		if size == 0 {
			continue
		}
		img.Lines = append(img.Lines, Line{
			Offset: st.Offset,
			Size:   uint16(min(size, machine.MEMORY_SIZE-1)),
			LineNo: st.LineNo,
		})
	}

	return
}

// Marshal serializes an image to canonical CBOR.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes and validates an image.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Magic != MAGIC {
		return nil, ErrMagic
	}
	if img.Version != VERSION {
		return nil, fmt.Errorf("%w: %d", ErrVersion, img.Version)
	}
	for _, seg := range img.Segments {
		if len(seg.Data) > machine.MEMORY_SIZE {
			return nil, fmt.Errorf("%w: 0x%04x", ErrSegment, seg.Offset)
		}
	}
	return &img, nil
}

// Load writes the image segments into machine memory, and sets the
// execution pointer to the image entry.
func (img *Image) Load(m *machine.Machine) (err error) {
	for _, seg := range img.Segments {
		if len(seg.Data) > machine.MEMORY_SIZE {
			err = fmt.Errorf("%w: 0x%04x", ErrSegment, seg.Offset)
			return
		}
		m.Memory.WriteBytes(seg.Offset, seg.Data)
	}
	m.Ep = img.Entry
	return
}

// LineNo returns the source line covering addr, or 0 if unknown.
func (img *Image) LineNo(addr uint16) int {
	for _, line := range img.Lines {
		if addr-line.Offset < line.Size {
			return line.LineNo
		}
	}
	return 0
}
