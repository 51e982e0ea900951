package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/esovm/asm"
	"github.com/ezrec/esovm/emulator"
	"github.com/ezrec/esovm/image"
	"github.com/ezrec/esovm/machine"
)

// span is a half-open address range.
type span struct {
	from, to uint16
}

// spans returns the address ranges loaded by a source.
func spans(src emulator.Source) (list []span, err error) {
	var segs []image.Segment
	switch src := src.(type) {
	case *image.Image:
		segs = src.Segments
	case *asm.Program:
		var psegs []asm.Segment
		psegs, err = src.Segments()
		if err != nil {
			return
		}
		for _, seg := range psegs {
			segs = append(segs, image.Segment{Offset: seg.Offset, Data: seg.Data})
		}
	}

	for _, seg := range segs {
		size := min(len(seg.Data), machine.MEMORY_SIZE-1)
		list = append(list, span{from: seg.Offset, to: seg.Offset + uint16(size)})
	}
	return
}

// disassemble writes the decoded machine memory, annotated with source lines.
func disassemble(w io.Writer, emu *emulator.Emulator, src emulator.Source, from, to uint16) (err error) {
	list := []span{{from: from, to: to}}
	if from == 0 && to == 0 {
		list, err = spans(src)
		if err != nil {
			return
		}
	}

	for _, s := range list {
		for addr, item := range machine.Disassemble(&emu.Machine.Memory, s.from, s.to) {
			line := fmt.Sprintf("0x%04x  %-32s", addr, item)
			if lineno := src.LineNo(addr); lineno > 0 {
				line += fmt.Sprintf(" ; line %d", lineno)
			}
			_, err = fmt.Fprintln(w, strings.TrimRight(line, " "))
			if err != nil {
				return
			}
		}
	}

	return
}
