// Package ansicode implements the byte-level ANSI/VT parser state machine:
// the ground/escape/CSI/OSC/DCS/SOS-PM-APC automaton described by ECMA-48 and
// extended by xterm and Kitty. It does not hold any screen state itself;
// instead it drives a caller-supplied Handler, calling one method per
// recognized control function as soon as its terminating byte is consumed.
//
// Feeding a byte stream through a Decoder is deterministic and resumable:
// splitting the stream at any point and feeding the pieces separately
// produces the same sequence of Handler calls as feeding it whole.
package ansicode
