// Package console provides host terminals for the virtual machine's I/O
// instructions.
//
// Tape reads keys and lines from any io.Reader, and is used for piped input
// and tests. Terminal drives an interactive tty, switching to raw mode for
// single key reads and using line editing for line reads.
package console
