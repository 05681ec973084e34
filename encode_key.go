package vtengine

import (
	"fmt"
	"strings"

	"github.com/coreterm/vtengine/ansicode"
)

// KeyEventKind distinguishes a key press, release, or autorepeat.
type KeyEventKind int

const (
	KeyPress KeyEventKind = iota
	KeyRelease
	KeyRepeat
)

// KeyID is a layout-independent key identifier, modeled after the physical
// key rather than the character it produces under the active layout.
type KeyID int

const (
	KeyUnknown KeyID = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyModifiers carries the modifier keys held during a KeyEvent. Both the
// xterm and the Kitty encoders fold the right-hand side flags into the same
// Shift/Alt/Ctrl bits as the plain flags, so left and right are not reported
// separately; there is no right-hand Super flag, and the xterm parameter
// ignores Super.
type KeyModifiers struct {
	Shift, Alt, Ctrl, Super         bool
	ShiftRight, AltRight, CtrlRight bool
}

// xtermParam computes the xterm modifier parameter: 1 + shift + 2*alt + 4*ctrl.
func (m KeyModifiers) xtermParam() int {
	n := 1
	if m.Shift || m.ShiftRight {
		n++
	}
	if m.Alt || m.AltRight {
		n += 2
	}
	if m.Ctrl || m.CtrlRight {
		n += 4
	}
	return n
}

func (m KeyModifiers) any() bool {
	return m.Shift || m.Alt || m.Ctrl || m.Super || m.ShiftRight || m.AltRight || m.CtrlRight
}

// kittyParam packs modifiers into the CSI-u modifier parameter (1-based, same
// bit order as the xterm parameter, plus Super as bit 8).
func (m KeyModifiers) kittyParam() int {
	n := 0
	if m.Shift || m.ShiftRight {
		n |= 1
	}
	if m.Alt || m.AltRight {
		n |= 2
	}
	if m.Ctrl || m.CtrlRight {
		n |= 4
	}
	if m.Super {
		n |= 8
	}
	return n + 1
}

// KeyEvent describes one keyboard input, layout-independent, ready to be
// turned into terminal wire bytes by EncodeKey.
type KeyEvent struct {
	Kind               KeyEventKind
	KeyID              KeyID
	Text               string
	UnshiftedCodepoint rune
	Modifiers          KeyModifiers
	Composing          bool
}

// KittyFlags is a bitset of Kitty keyboard protocol enhancements, matching
// the bit layout of ansicode.KeyboardMode.
type KittyFlags = ansicode.KeyboardMode

const (
	KittyDisambiguate       = ansicode.KeyboardModeDisambiguateEscapeCodes
	KittyReportEvents       = ansicode.KeyboardModeReportEventTypes
	KittyReportAlternates   = ansicode.KeyboardModeReportAlternateKeys
	KittyReportAllAsEscapes = ansicode.KeyboardModeReportAllKeysAsEscapeCodes
	KittyReportText         = ansicode.KeyboardModeReportAssociatedText
)

// EncodeKey turns a KeyEvent into the bytes a real terminal would send for
// it, honoring the Kitty keyboard protocol flags currently pushed on t's
// mode stack and the state of DECCKM (application cursor keys). It performs
// no I/O and has no side effects on t beyond reading its current modes.
func (t *Terminal) EncodeKey(ev KeyEvent) []byte {
	flags := t.KeyboardMode()
	if flags != ansicode.KeyboardModeNoMode {
		return encodeKittyKey(ev, flags)
	}
	return encodeLegacyKey(ev, t.HasMode(ModeCursorKeys))
}

func encodeLegacyKey(ev KeyEvent, applicationCursorKeys bool) []byte {
	if ev.Kind == KeyRelease {
		return nil
	}

	mods := ev.Modifiers

	if ev.KeyID == KeyUnknown && ev.Text != "" {
		if mods.Ctrl && !mods.Alt && len(ev.Text) == 1 {
			return ctrlLetter(ev.Text[0])
		}
		if mods.Alt && !mods.Ctrl {
			return append([]byte{0x1B}, ev.Text...)
		}
		return []byte(ev.Text)
	}

	switch ev.KeyID {
	case KeyEnter:
		return []byte{'\r'}
	case KeyBackspace:
		return []byte{0x7F}
	case KeyTab:
		return []byte{'\t'}
	case KeyEscape:
		return []byte{0x1B}
	case KeyUp, KeyDown, KeyRight, KeyLeft:
		final := arrowFinal(ev.KeyID)
		if mods.any() {
			return []byte(fmt.Sprintf("\x1b[1;%d%c", mods.xtermParam(), final))
		}
		if applicationCursorKeys {
			return []byte{0x1B, 'O', final}
		}
		return []byte{0x1B, '[', final}
	case KeyHome:
		return navSeq('H', mods)
	case KeyEnd:
		return navSeq('F', mods)
	case KeyInsert:
		return navTilde(2, mods)
	case KeyDelete:
		return navTilde(3, mods)
	case KeyPageUp:
		return navTilde(5, mods)
	case KeyPageDown:
		return navTilde(6, mods)
	case KeyF1, KeyF2, KeyF3, KeyF4:
		final := byte('P' + int(ev.KeyID-KeyF1))
		if mods.any() {
			return []byte(fmt.Sprintf("\x1b[1;%d%c", mods.xtermParam(), final))
		}
		return []byte{0x1B, 'O', final}
	case KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12:
		return navTilde(functionKeyNumber(ev.KeyID), mods)
	}

	if ev.Text != "" {
		if mods.Ctrl && !mods.Alt && len(ev.Text) == 1 {
			return ctrlLetter(ev.Text[0])
		}
		if mods.Alt && !mods.Ctrl {
			return append([]byte{0x1B}, ev.Text...)
		}
		return []byte(ev.Text)
	}
	return nil
}

// navSeq encodes Home/End, which take the plain CSI form unmodified and the
// xterm modifier form (CSI 1;m H/F) when any modifier is held.
func navSeq(final byte, mods KeyModifiers) []byte {
	if mods.any() {
		return []byte(fmt.Sprintf("\x1b[1;%d%c", mods.xtermParam(), final))
	}
	return []byte{0x1B, '[', final}
}

// navTilde encodes the CSI <n>~ family (Insert/Delete/PgUp/PgDn/F5-F12),
// appending an xterm modifier parameter when any modifier is held.
func navTilde(n int, mods KeyModifiers) []byte {
	if mods.any() {
		return []byte(fmt.Sprintf("\x1b[%d;%d~", n, mods.xtermParam()))
	}
	return []byte(fmt.Sprintf("\x1b[%d~", n))
}

func arrowFinal(id KeyID) byte {
	switch id {
	case KeyUp:
		return 'A'
	case KeyDown:
		return 'B'
	case KeyRight:
		return 'C'
	case KeyLeft:
		return 'D'
	}
	return 'A'
}

func functionKeyNumber(id KeyID) int {
	switch id {
	case KeyF5:
		return 15
	case KeyF6:
		return 17
	case KeyF7:
		return 18
	case KeyF8:
		return 19
	case KeyF9:
		return 20
	case KeyF10:
		return 21
	case KeyF11:
		return 23
	case KeyF12:
		return 24
	}
	return 15
}

func ctrlLetter(c byte) []byte {
	upper := c
	if upper >= 'a' && upper <= 'z' {
		upper -= 'a' - 'A'
	}
	if upper >= '@' && upper <= '_' {
		return []byte{upper & 0x1F}
	}
	return []byte{c}
}

// encodeKittyKey produces a CSI-u report per the Kitty keyboard protocol,
// honoring whichever enhancement flags are set on flags.
func encodeKittyKey(ev KeyEvent, flags ansicode.KeyboardMode) []byte {
	code := keyCodepoint(ev)
	if code == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("\x1b[")
	b.WriteString(fmt.Sprintf("%d", code))

	modParam := ev.Modifiers.kittyParam()
	needModifiers := modParam != 1
	needEvent := flags&ansicode.KeyboardModeReportEventTypes != 0 && ev.Kind != KeyPress
	needText := flags&ansicode.KeyboardModeReportAssociatedText != 0 && ev.Text != ""

	if needModifiers || needEvent || needText {
		b.WriteString(fmt.Sprintf(";%d", modParam))
		if needEvent {
			b.WriteString(fmt.Sprintf(":%d", eventNumber(ev.Kind)))
		}
	}

	if needText {
		b.WriteByte(';')
		for i, r := range ev.Text {
			if i > 0 {
				b.WriteByte(':')
			}
			b.WriteString(fmt.Sprintf("%d", r))
		}
	}

	b.WriteByte('u')
	return []byte(b.String())
}

func eventNumber(kind KeyEventKind) int {
	switch kind {
	case KeyRelease:
		return 3
	case KeyRepeat:
		return 2
	default:
		return 1
	}
}

// keyCodepoint resolves the CSI-u codepoint: the event's own Unicode text
// when present, its unshifted codepoint as a fallback, or a functional-key
// codepoint for the fixed control keys that have no textual representation.
func keyCodepoint(ev KeyEvent) rune {
	if ev.Text != "" {
		for _, r := range ev.Text {
			return r
		}
	}
	if ev.UnshiftedCodepoint != 0 {
		return ev.UnshiftedCodepoint
	}
	switch ev.KeyID {
	case KeyEnter:
		return 13
	case KeyEscape:
		return 27
	case KeyBackspace:
		return 127
	case KeyTab:
		return 9
	case KeyUp:
		return 57352
	case KeyDown:
		return 57353
	case KeyLeft:
		return 57354
	case KeyRight:
		return 57355
	}
	return 0
}
