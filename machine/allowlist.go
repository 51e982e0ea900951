package machine

import (
	"slices"
)

// DOT_POINTER_DEFAULT is the largest allow-listed dot pointer address.
const DOT_POINTER_DEFAULT = 28657

// Addresses that are both Fibonacci numbers and prime or semiprime.
var _dot_pointer_allowed = []uint16{
	1, 2, 3, 5, 13, 21, 34, 55, 89, 233, 377, 1597, 4181, 17711, 28657,
}

// DotPointerAllowed reports if the dot pointer may be set to addr.
func DotPointerAllowed(addr uint16) bool {
	_, found := slices.BinarySearch(_dot_pointer_allowed, addr)
	return found
}

// DotPointerAllowList returns a copy of the allowed dot pointer addresses,
// in ascending order.
func DotPointerAllowList() []uint16 {
	return slices.Clone(_dot_pointer_allowed)
}
