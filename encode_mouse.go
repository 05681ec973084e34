package vtengine

import "fmt"

// MouseEventKind distinguishes the kind of mouse activity a MouseEvent reports.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMotion
	MouseWheel
)

// MouseButton identifies which button a MouseEvent concerns. Wheel events use
// MouseWheelUp/MouseWheelDown in place of a physical button.
type MouseButton int

const (
	MouseLeft      MouseButton = 0
	MouseMiddle    MouseButton = 1
	MouseRight     MouseButton = 2
	MouseWheelUp   MouseButton = 64
	MouseWheelDown MouseButton = 65
)

// MouseEvent describes one mouse activity, with 1-based cell coordinates.
type MouseEvent struct {
	Kind      MouseEventKind
	Button    MouseButton
	X, Y      int
	Modifiers KeyModifiers
}

// EncodeMouse turns a MouseEvent into the bytes appropriate for whichever
// mouse reporting modes are currently enabled, following the precedence
// 1003 (all motion) > 1002 (cell motion) > 1000 (click only), with 1006
// selecting SGR encoding over legacy X10. Returns nil if no mouse reporting
// mode is active, or if the event kind isn't covered by the active mode.
func (t *Terminal) EncodeMouse(ev MouseEvent) []byte {
	switch {
	case t.HasMode(ModeReportAllMouseMotion):
		// Every press, release, and motion event is reported.
	case t.HasMode(ModeReportCellMouseMotion):
		// Motion is only meaningful while a button is held; the host is
		// expected to call EncodeMouse for drag motion only in this mode.
	case t.HasMode(ModeReportMouseClicks):
		if ev.Kind == MouseMotion {
			return nil
		}
	default:
		return nil
	}

	cb := mouseButtonCode(ev)
	if t.HasMode(ModeSGRMouse) {
		return encodeSGRMouse(cb, ev)
	}
	return encodeX10Mouse(cb, ev)
}

func mouseButtonCode(ev MouseEvent) int {
	var cb int
	switch ev.Kind {
	case MouseWheel:
		cb = int(ev.Button)
	case MouseRelease:
		cb = 3
	default:
		cb = int(ev.Button)
	}

	m := ev.Modifiers
	if m.Shift || m.ShiftRight {
		cb += 4
	}
	if m.Alt || m.AltRight {
		cb += 8
	}
	if m.Ctrl || m.CtrlRight {
		cb += 16
	}
	if ev.Kind == MouseMotion {
		cb += 32
	}
	return cb
}

// encodeX10Mouse encodes the legacy CSI M Cb Cx Cy form, coordinates clamped
// to [1,223] since each is transmitted as a single byte offset by 32.
func encodeX10Mouse(cb int, ev MouseEvent) []byte {
	x := clampMouseCoord(ev.X)
	y := clampMouseCoord(ev.Y)
	return []byte{0x1B, '[', 'M', byte(cb + 32), byte(x + 32), byte(y + 32)}
}

func clampMouseCoord(v int) int {
	if v < 1 {
		return 1
	}
	if v > 223 {
		return 223
	}
	return v
}

// encodeSGRMouse encodes the CSI < Cb ; Cx ; Cy M/m form; the final byte is
// 'm' for a release and 'M' for everything else.
func encodeSGRMouse(cb int, ev MouseEvent) []byte {
	final := byte('M')
	if ev.Kind == MouseRelease {
		final = 'm'
	}
	return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, ev.X, ev.Y, final))
}
