package ansicode

import (
	"encoding/base64"
	"image/color"
	"strconv"
	"strings"
	"unicode/utf8"
)

// parserState is one node of the ground/escape/CSI/OSC/DCS/SOS-PM-APC automaton.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
	stateCsiIgnore
	stateOscString
	stateDcsEntry
	stateDcsParam
	stateDcsIntermediate
	stateDcsPassthrough
	stateDcsIgnore
	stateSosPmApcString
)

// maxStringPayload bounds OSC/DCS/SOS-PM-APC string accumulation. Sequences
// exceeding this are dropped in their entirety rather than grown without end.
const maxStringPayload = 1 << 20 // 1 MiB

// maxParams bounds the number of semicolon/colon separated parameters a
// single CSI sequence can accumulate; further params are discarded.
const maxParams = 32

// paramOverflow is the clamp applied to any individual parameter value.
const paramOverflow = 0xFFFF

// Decoder drives a Handler from a byte stream, implementing the parser
// state machine described by ECMA-48 and extended for OSC/DCS/Kitty/Sixel.
// A Decoder is not safe for concurrent use; callers own serializing Write.
type Decoder struct {
	handler Handler

	state parserState

	params     []int64
	paramCount int
	curParam   int64
	paramUsed  bool
	subParams  [][]int64 // one slice per top-level param, populated on ':'
	inSubParam bool      // true once the current field's top-level value has
	// been pushed and further colon-joined digits are sub-params of it

	intermediates []byte
	private       byte // '?', '>', '=', or 0

	// string-sequence accumulation (OSC/DCS/SOS/PM/APC)
	strBuf      []byte
	strOverflow bool
	stringKind  byte   // ']' OSC, 'X' SOS, '^' PM, '_' APC, 'P' DCS
	terminator  string // "\x07" or "\x1b\\", whichever closed the current string

	// DCS-specific: final byte and params captured before passthrough begins
	dcsFinal byte

	// pendingFinish, when non-nil, is invoked once a pending ESC is
	// confirmed as an ST ('\\'); set whenever a string-type sequence moves
	// to stateEscape expecting its terminator.
	pendingFinish func()

	// pending UTF-8 continuation bytes
	utf8Buf  [4]byte
	utf8Len  int
	utf8Want int
}

// NewDecoder creates a Decoder that dispatches recognized control functions to handler.
func NewDecoder(handler Handler) *Decoder {
	return &Decoder{handler: handler}
}

// Write feeds bytes into the parser. It always consumes the entire slice and
// never returns an error; malformed sequences are dropped, not reported as
// failures. Splitting a stream across multiple Write calls at any byte
// boundary produces the same sequence of Handler calls as one Write of the
// concatenated bytes.
func (d *Decoder) Write(data []byte) (int, error) {
	for _, b := range data {
		d.feedByte(b)
	}
	return len(data), nil
}

func (d *Decoder) feedByte(b byte) {
	// UTF-8 continuation assembly only applies in Ground state; every other
	// state operates on raw bytes (control sequences are always ASCII).
	if d.state == stateGround {
		if d.utf8Want > 0 {
			if b&0xC0 == 0x80 {
				d.utf8Buf[d.utf8Len] = b
				d.utf8Len++
				if d.utf8Len == d.utf8Want {
					r, size := utf8.DecodeRune(d.utf8Buf[:d.utf8Len])
					if r == utf8.RuneError && size < d.utf8Len {
						r = utf8.RuneError
					}
					d.handler.Input(r)
					d.utf8Len, d.utf8Want = 0, 0
				}
				return
			}
			// Invalid continuation: emit replacement, resync on this byte.
			d.handler.Input(utf8.RuneError)
			d.utf8Len, d.utf8Want = 0, 0
			// fall through to reprocess b as a fresh lead byte
		}

		if b >= 0x80 {
			if b&0xE0 == 0xC0 {
				d.utf8Buf[0] = b
				d.utf8Len, d.utf8Want = 1, 2
				return
			}
			if b&0xF0 == 0xE0 {
				d.utf8Buf[0] = b
				d.utf8Len, d.utf8Want = 1, 3
				return
			}
			if b&0xF8 == 0xF0 {
				d.utf8Buf[0] = b
				d.utf8Len, d.utf8Want = 1, 4
				return
			}
			// Stray continuation byte or invalid lead byte.
			d.handler.Input(utf8.RuneError)
			return
		}
	}

	switch d.state {
	case stateGround:
		d.ground(b)
	case stateEscape:
		d.escape(b)
	case stateEscapeIntermediate:
		d.escapeIntermediate(b)
	case stateCsiEntry:
		d.csiEntry(b)
	case stateCsiParam:
		d.csiParam(b)
	case stateCsiIntermediate:
		d.csiIntermediate(b)
	case stateCsiIgnore:
		d.csiIgnore(b)
	case stateOscString:
		d.oscString(b)
	case stateDcsEntry:
		d.dcsEntry(b)
	case stateDcsParam:
		d.dcsParam(b)
	case stateDcsIntermediate:
		d.dcsIntermediate(b)
	case stateDcsPassthrough:
		d.dcsPassthrough(b)
	case stateDcsIgnore:
		d.dcsIgnore(b)
	case stateSosPmApcString:
		d.sosPmApcString(b)
	}
}

func (d *Decoder) toGround() {
	d.state = stateGround
	d.resetParams()
	d.intermediates = d.intermediates[:0]
	d.private = 0
}

func (d *Decoder) resetParams() {
	d.params = d.params[:0]
	d.subParams = nil
	d.paramCount = 0
	d.curParam = 0
	d.paramUsed = false
	d.inSubParam = false
}

// ground handles bytes while no escape/control sequence is in progress.
func (d *Decoder) ground(b byte) {
	switch {
	case b == 0x1B:
		d.state = stateEscape
	case b == 0x07:
		d.handler.Bell()
	case b == 0x08:
		d.handler.Backspace()
	case b == 0x09:
		d.handler.Tab(1)
	case b == 0x0A, b == 0x0B, b == 0x0C:
		d.handler.LineFeed()
	case b == 0x0D:
		d.handler.CarriageReturn()
	case b == 0x0E:
		d.handler.SetActiveCharset(1)
	case b == 0x0F:
		d.handler.SetActiveCharset(0)
	case b == 0x18, b == 0x1A:
		// CAN/SUB in Ground: no string to abort, no-op.
	case b < 0x20:
		// Other C0 controls are not part of the must-implement set; ignored.
	case b == 0x7F:
		// DEL: ignored in Ground.
	default:
		d.handler.Input(rune(b))
	}
}

func (d *Decoder) escape(b byte) {
	if d.pendingFinish != nil {
		finish := d.pendingFinish
		d.pendingFinish = nil
		if b == '\\' {
			finish()
			d.toGround()
			return
		}
		// Anything other than ST aborts the pending string unfinished; the
		// byte that follows ESC is reprocessed as a fresh escape below.
	}

	switch {
	case b == '[':
		d.state = stateCsiEntry
		d.resetParams()
	case b == ']':
		d.beginString(']')
	case b == 'P':
		d.beginDcs()
	case b == 'X', b == '^', b == '_':
		d.beginString(b)
	case b == 0x18, b == 0x1A:
		d.toGround()
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
		d.state = stateEscapeIntermediate
	case b >= 0x30 && b <= 0x7E:
		d.dispatchEsc(b)
		d.toGround()
	default:
		d.toGround()
	}
}

func (d *Decoder) escapeIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
	case b >= 0x30 && b <= 0x7E:
		d.dispatchEsc(b)
		d.toGround()
	default:
		d.toGround()
	}
}

// dispatchEsc handles a completed ESC sequence (2- or 3-byte, no CSI/OSC/DCS/string).
func (d *Decoder) dispatchEsc(final byte) {
	if len(d.intermediates) == 1 {
		switch d.intermediates[0] {
		case '(':
			d.handler.ConfigureCharset(CharsetIndexG0, charsetFromDesignator(final))
			return
		case ')':
			d.handler.ConfigureCharset(CharsetIndexG1, charsetFromDesignator(final))
			return
		case '*':
			d.handler.ConfigureCharset(CharsetIndexG2, charsetFromDesignator(final))
			return
		case '+':
			d.handler.ConfigureCharset(CharsetIndexG3, charsetFromDesignator(final))
			return
		case '#':
			if final == '8' { // DECALN
				d.handler.Decaln()
			}
			return
		}
	}

	switch final {
	case 'D': // IND
		d.handler.LineFeed()
	case 'E': // NEL
		d.handler.CarriageReturn()
		d.handler.LineFeed()
	case 'H': // HTS
		d.handler.HorizontalTabSet()
	case 'M': // RI
		d.handler.ReverseIndex()
	case 'N', 'O': // SS2 / SS3 - single shifts, not tracked as separate state
	case 'Z': // DECID, legacy alias for DA1
		d.handler.IdentifyTerminal('c')
	case 'c': // RIS
		d.handler.ResetState()
	case '7': // DECSC
		d.handler.SaveCursorPosition()
	case '8': // DECRC
		d.handler.RestoreCursorPosition()
	case '=': // DECKPAM
		d.handler.SetKeypadApplicationMode()
	case '>': // DECKPNM
		d.handler.UnsetKeypadApplicationMode()
	}
}

func charsetFromDesignator(b byte) Charset {
	switch b {
	case '0':
		return CharsetLineDrawing
	case 'A':
		return CharsetUK
	default:
		return CharsetASCII
	}
}

// --- CSI ---

func (d *Decoder) csiEntry(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.csiDigit(b)
		d.state = stateCsiParam
	case b == ';':
		d.csiParamSeparator()
		d.state = stateCsiParam
	case b == ':':
		d.csiSubSeparator()
		d.state = stateCsiParam
	case b == '?' || b == '>' || b == '=' || b == '<':
		d.private = b
		d.state = stateCsiParam
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
		d.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7E:
		d.dispatchCsi(b)
		d.toGround()
	case b == 0x18 || b == 0x1A:
		d.toGround()
	default:
		d.state = stateCsiIgnore
	}
}

func (d *Decoder) csiParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.csiDigit(b)
	case b == ';':
		d.csiParamSeparator()
	case b == ':':
		d.csiSubSeparator()
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
		d.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7E:
		d.dispatchCsi(b)
		d.toGround()
	case b == 0x18 || b == 0x1A:
		d.toGround()
	default:
		d.state = stateCsiIgnore
	}
}

func (d *Decoder) csiIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
	case b >= 0x40 && b <= 0x7E:
		d.dispatchCsi(b)
		d.toGround()
	case b == 0x18 || b == 0x1A:
		d.toGround()
	default:
		d.state = stateCsiIgnore
	}
}

func (d *Decoder) csiIgnore(b byte) {
	switch {
	case b >= 0x40 && b <= 0x7E:
		d.toGround()
	case b == 0x18 || b == 0x1A:
		d.toGround()
	}
}

func (d *Decoder) csiDigit(b byte) {
	d.paramUsed = true
	d.curParam = d.curParam*10 + int64(b-'0')
	if d.curParam > paramOverflow {
		d.curParam = paramOverflow
	}
}

func (d *Decoder) csiParamSeparator() {
	d.pushParam()
}

// csiSubSeparator handles a ':' within a parameter field. The first colon
// seen for a field pushes the value accumulated so far (e.g. the 38/48/58
// color selector) as that field's top-level parameter; every further
// colon-joined value attaches as a sub-parameter of it instead of becoming
// a field of its own.
func (d *Decoder) csiSubSeparator() {
	if !d.inSubParam {
		if len(d.params) < maxParams {
			d.params = append(d.params, d.curParam)
		}
		d.paramCount++
		idx := len(d.params) - 1
		for len(d.subParams) <= idx {
			d.subParams = append(d.subParams, nil)
		}
		d.inSubParam = true
	} else {
		idx := len(d.params) - 1
		d.subParams[idx] = append(d.subParams[idx], d.curParam)
	}
	d.curParam = 0
	d.paramUsed = false
}

func (d *Decoder) pushParam() {
	if len(d.params) < maxParams {
		d.params = append(d.params, d.curParam)
	}
	d.paramCount++
	d.curParam = 0
	d.paramUsed = false
	d.inSubParam = false
}

// finishParams flushes the in-progress parameter (if any digits were seen,
// or if no parameter has been pushed yet) and returns the full list. A
// trailing sub-parameter (the field ended on a colon-joined value, with no
// further ';' or ':') is flushed into subParams rather than params.
func (d *Decoder) finishParams() []int64 {
	if d.inSubParam {
		if d.paramUsed {
			idx := len(d.params) - 1
			d.subParams[idx] = append(d.subParams[idx], d.curParam)
		}
		return d.params
	}
	if d.paramUsed || len(d.params) == 0 {
		if len(d.params) < maxParams {
			d.params = append(d.params, d.curParam)
		}
	}
	return d.params
}

// param returns the i'th parameter or def if absent or zero (ECMA-48: 0 defaults to def).
func param(params []int64, i int, def int64) int64 {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

// rawParam returns the i'th parameter or def if absent, without zero-defaulting.
func rawParam(params []int64, i int, def int64) int64 {
	if i >= len(params) {
		return def
	}
	return params[i]
}

func (d *Decoder) dispatchCsi(final byte) {
	params := d.finishParams()
	n := int(param(params, 0, 1))

	if len(d.intermediates) == 1 && d.intermediates[0] == ' ' && final == 'q' {
		d.handler.SetCursorStyle(cursorStyleFromParam(int(param(params, 0, 0))))
		return
	}

	if d.private == '?' {
		d.dispatchPrivateCsi(final, params)
		return
	}
	if d.private == '>' && final == 'c' {
		d.handler.IdentifyTerminal('>')
		return
	}
	if d.private == '>' && final == 'u' {
		d.handler.PushKeyboardMode(KeyboardMode(param(params, 0, 0)))
		return
	}
	if d.private == '<' && final == 'u' {
		d.handler.PopKeyboardMode(int(param(params, 0, 1)))
		return
	}
	if d.private == '=' && final == 'u' {
		d.handler.SetKeyboardMode(KeyboardMode(param(params, 0, 0)), keyboardBehaviorFromParam(int(param(params, 1, 1))))
		return
	}
	if d.private == '>' && final == 'm' {
		d.handler.SetModifyOtherKeys(ModifyOtherKeys(param(params, 1, 0)))
		return
	}

	switch final {
	case '@':
		d.handler.InsertBlank(n)
	case 'A':
		d.handler.MoveUp(n)
	case 'B':
		d.handler.MoveDown(n)
	case 'C', 'a':
		d.handler.MoveForward(n)
	case 'D':
		d.handler.MoveBackward(n)
	case 'E':
		d.handler.MoveDownCr(n)
	case 'F':
		d.handler.MoveUpCr(n)
	case 'G', '`':
		d.handler.GotoCol(int(param(params, 0, 1)) - 1)
	case 'H', 'f':
		d.handler.Goto(int(param(params, 0, 1))-1, int(param(params, 1, 1))-1)
	case 'I':
		d.handler.MoveForwardTabs(n)
	case 'J':
		d.handler.ClearScreen(clearModeFromParam(int(param(params, 0, 0))))
	case 'K':
		d.handler.ClearLine(lineClearModeFromParam(int(param(params, 0, 0))))
	case 'L':
		d.handler.InsertBlankLines(n)
	case 'M':
		d.handler.DeleteLines(n)
	case 'P':
		d.handler.DeleteChars(n)
	case 'S':
		d.handler.ScrollUp(n)
	case 'T':
		d.handler.ScrollDown(n)
	case 'X':
		d.handler.EraseChars(n)
	case 'Z':
		d.handler.MoveBackwardTabs(n)
	case 'c':
		d.handler.IdentifyTerminal('c')
	case 'd':
		d.handler.GotoLine(int(param(params, 0, 1)) - 1)
	case 'e':
		d.handler.MoveDown(n)
	case 'g':
		d.handler.ClearTabs(tabClearModeFromParam(int(param(params, 0, 0))))
	case 'h':
		d.setAnsiModes(params, true)
	case 'l':
		d.setAnsiModes(params, false)
	case 'm':
		d.dispatchSgr(params)
	case 'n':
		d.handler.DeviceStatus(int(param(params, 0, 0)))
	case 'r':
		top := int(param(params, 0, 1))
		bottom := int(rawParam(params, 1, 0))
		d.handler.SetScrollingRegion(top-1, bottom-1)
	case 's':
		d.handler.SaveCursorPosition()
	case 't':
		d.dispatchWindowManipulation(params)
	case 'u':
		d.handler.RestoreCursorPosition()
	}
}

func (d *Decoder) setAnsiModes(params []int64, set bool) {
	for _, p := range params {
		switch p {
		case 4:
			if set {
				d.handler.SetMode(TerminalModeInsert)
			} else {
				d.handler.UnsetMode(TerminalModeInsert)
			}
		case 20:
			if set {
				d.handler.SetMode(TerminalModeLineFeedNewLine)
			} else {
				d.handler.UnsetMode(TerminalModeLineFeedNewLine)
			}
		}
	}
}

func (d *Decoder) dispatchPrivateCsi(final byte, params []int64) {
	switch final {
	case 'h':
		for _, p := range params {
			if m, ok := decModeFromParam(int(p)); ok {
				d.handler.SetMode(m)
			}
		}
	case 'l':
		for _, p := range params {
			if m, ok := decModeFromParam(int(p)); ok {
				d.handler.UnsetMode(m)
			}
		}
	case 'u':
		d.handler.ReportKeyboardMode()
	case 's':
		for _, p := range params {
			if m, ok := decModeFromParam(int(p)); ok {
				d.handler.SaveMode(m)
			}
		}
	case 'r':
		for _, p := range params {
			if m, ok := decModeFromParam(int(p)); ok {
				d.handler.RestoreMode(m)
			}
		}
	case 'n':
		d.handler.DeviceStatus(int(param(params, 0, 0)))
	}
}

func decModeFromParam(p int) (TerminalMode, bool) {
	switch p {
	case 1:
		return TerminalModeCursorKeys, true
	case 3:
		return TerminalModeColumnMode, true
	case 6:
		return TerminalModeOrigin, true
	case 7:
		return TerminalModeLineWrap, true
	case 12:
		return TerminalModeBlinkingCursor, true
	case 25:
		return TerminalModeShowCursor, true
	case 1000:
		return TerminalModeReportMouseClicks, true
	case 1002:
		return TerminalModeReportCellMouseMotion, true
	case 1003:
		return TerminalModeReportAllMouseMotion, true
	case 1004:
		return TerminalModeReportFocusInOut, true
	case 1005:
		return TerminalModeUTF8Mouse, true
	case 1006:
		return TerminalModeSGRMouse, true
	case 1007:
		return TerminalModeAlternateScroll, true
	case 1042:
		return TerminalModeUrgencyHints, true
	case 47, 1047, 1049:
		return TerminalModeSwapScreenAndSetRestoreCursor, true
	case 2004:
		return TerminalModeBracketedPaste, true
	default:
		return 0, false
	}
}

func clearModeFromParam(p int) ClearMode {
	switch p {
	case 1:
		return ClearModeAbove
	case 2:
		return ClearModeAll
	case 3:
		return ClearModeSaved
	default:
		return ClearModeBelow
	}
}

func lineClearModeFromParam(p int) LineClearMode {
	switch p {
	case 1:
		return LineClearModeLeft
	case 2:
		return LineClearModeAll
	default:
		return LineClearModeRight
	}
}

func tabClearModeFromParam(p int) TabulationClearMode {
	if p == 3 {
		return TabulationClearModeAll
	}
	return TabulationClearModeCurrent
}

func cursorStyleFromParam(p int) CursorStyle {
	switch p {
	case 0, 1:
		return CursorStyleBlinkingBlock
	case 2:
		return CursorStyleSteadyBlock
	case 3:
		return CursorStyleBlinkingUnderline
	case 4:
		return CursorStyleSteadyUnderline
	case 5:
		return CursorStyleBlinkingBar
	case 6:
		return CursorStyleSteadyBar
	default:
		return CursorStyleBlinkingBlock
	}
}

func keyboardBehaviorFromParam(p int) KeyboardModeBehavior {
	switch p {
	case 2:
		return KeyboardModeBehaviorDifference
	case 3:
		return KeyboardModeBehaviorUnion
	default:
		return KeyboardModeBehaviorReplace
	}
}

func (d *Decoder) dispatchWindowManipulation(params []int64) {
	switch int(param(params, 0, 0)) {
	case 14:
		d.handler.TextAreaSizePixels()
	case 18:
		d.handler.TextAreaSizeChars()
	case 22:
		d.handler.PushTitle()
	case 23:
		d.handler.PopTitle()
	}
}

// dispatchSgr applies each SGR parameter (or colon-delimited sub-parameter
// group) left to right, matching xterm's accepted `;` and `:` color forms.
func (d *Decoder) dispatchSgr(params []int64) {
	if len(params) == 0 {
		d.handler.SetTerminalCharAttribute(TerminalCharAttribute{Attr: CharAttributeReset})
		return
	}

	for i := 0; i < len(params); i++ {
		p := params[i]
		var sub []int64
		if i < len(d.subParams) {
			sub = d.subParams[i]
		}

		switch {
		case p == 38 || p == 48 || p == 58:
			attr := CharAttributeForeground
			if p == 48 {
				attr = CharAttributeBackground
			} else if p == 58 {
				attr = CharAttributeUnderlineColor
			}
			consumed := d.dispatchExtendedColor(attr, params, sub, i)
			i += consumed
		default:
			if a, ok := sgrAttribute(p); ok {
				d.handler.SetTerminalCharAttribute(a)
			}
		}
	}
}

// dispatchExtendedColor decodes a 38/48/58 color selector starting at index
// i in params, using sub (colon sub-params of params[i]) when present. It
// returns the number of additional top-level params consumed (0 for the
// colon form, 2 or 4 for the semicolon form).
func (d *Decoder) dispatchExtendedColor(attr CharAttribute, params []int64, sub []int64, i int) int {
	if len(sub) > 0 {
		switch sub[0] {
		case 5:
			if len(sub) >= 2 {
				idx := uint8(sub[1])
				d.handler.SetTerminalCharAttribute(TerminalCharAttribute{Attr: attr, IndexedColor: &IndexedColor{Index: idx}})
			}
		case 2:
			// 38:2::R:G:B or 38:2:R:G:B (color-space id optional)
			vals := sub[1:]
			if len(vals) >= 4 {
				vals = vals[1:]
			}
			if len(vals) >= 3 {
				rgb := &RGBColor{R: uint8(vals[0]), G: uint8(vals[1]), B: uint8(vals[2])}
				d.handler.SetTerminalCharAttribute(TerminalCharAttribute{Attr: attr, RGBColor: rgb})
			}
		}
		return 0
	}

	if i+1 >= len(params) {
		return 0
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			idx := uint8(params[i+2])
			d.handler.SetTerminalCharAttribute(TerminalCharAttribute{Attr: attr, IndexedColor: &IndexedColor{Index: idx}})
			return 2
		}
		return 1
	case 2:
		if i+4 < len(params) {
			rgb := &RGBColor{R: uint8(params[i+2]), G: uint8(params[i+3]), B: uint8(params[i+4])}
			d.handler.SetTerminalCharAttribute(TerminalCharAttribute{Attr: attr, RGBColor: rgb})
			return 4
		}
		return 1
	}
	return 0
}

func sgrAttribute(p int64) (TerminalCharAttribute, bool) {
	switch p {
	case 0:
		return TerminalCharAttribute{Attr: CharAttributeReset}, true
	case 1:
		return TerminalCharAttribute{Attr: CharAttributeBold}, true
	case 2:
		return TerminalCharAttribute{Attr: CharAttributeDim}, true
	case 3:
		return TerminalCharAttribute{Attr: CharAttributeItalic}, true
	case 4:
		return TerminalCharAttribute{Attr: CharAttributeUnderline}, true
	case 5:
		return TerminalCharAttribute{Attr: CharAttributeBlinkSlow}, true
	case 6:
		return TerminalCharAttribute{Attr: CharAttributeBlinkFast}, true
	case 7:
		return TerminalCharAttribute{Attr: CharAttributeReverse}, true
	case 8:
		return TerminalCharAttribute{Attr: CharAttributeHidden}, true
	case 9:
		return TerminalCharAttribute{Attr: CharAttributeStrike}, true
	case 21:
		return TerminalCharAttribute{Attr: CharAttributeDoubleUnderline}, true
	case 22:
		return TerminalCharAttribute{Attr: CharAttributeCancelBoldDim}, true
	case 23:
		return TerminalCharAttribute{Attr: CharAttributeCancelItalic}, true
	case 24:
		return TerminalCharAttribute{Attr: CharAttributeCancelUnderline}, true
	case 25:
		return TerminalCharAttribute{Attr: CharAttributeCancelBlink}, true
	case 27:
		return TerminalCharAttribute{Attr: CharAttributeCancelReverse}, true
	case 28:
		return TerminalCharAttribute{Attr: CharAttributeCancelHidden}, true
	case 29:
		return TerminalCharAttribute{Attr: CharAttributeCancelStrike}, true
	case 39:
		return TerminalCharAttribute{Attr: CharAttributeForeground}, true
	case 49:
		return TerminalCharAttribute{Attr: CharAttributeBackground}, true
	case 59:
		return TerminalCharAttribute{Attr: CharAttributeUnderlineColor}, true
	}
	if p >= 30 && p <= 37 {
		n := uint8(p - 30)
		return TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &n}, true
	}
	if p >= 40 && p <= 47 {
		n := uint8(p - 40)
		return TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &n}, true
	}
	if p >= 90 && p <= 97 {
		n := uint8(p-90) + 8
		return TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &n}, true
	}
	if p >= 100 && p <= 107 {
		n := uint8(p-100) + 8
		return TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &n}, true
	}
	return TerminalCharAttribute{}, false
}

// --- OSC / SOS / PM / APC string sequences ---

func (d *Decoder) beginString(kind byte) {
	d.state = stateOscString
	d.stringKind = kind
	d.strBuf = d.strBuf[:0]
	d.strOverflow = false
	if kind != ']' {
		d.state = stateSosPmApcString
	}
}

func (d *Decoder) appendStrByte(b byte) bool {
	if d.strOverflow {
		return false
	}
	if len(d.strBuf) >= maxStringPayload {
		d.strOverflow = true
		d.strBuf = d.strBuf[:0]
		return false
	}
	d.strBuf = append(d.strBuf, b)
	return true
}

func (d *Decoder) oscString(b byte) {
	switch b {
	case 0x07: // BEL terminator
		d.terminator = "\x07"
		d.finishOsc()
		d.toGround()
	case 0x1B:
		d.terminator = "\x1b\\"
		d.pendingFinish = d.finishOsc
		d.state = stateEscape
	case 0x18, 0x1A:
		d.toGround()
	default:
		d.appendStrByte(b)
	}
}

func (d *Decoder) sosPmApcString(b byte) {
	switch b {
	case 0x1B:
		d.pendingFinish = d.finishSosPmApc
		d.state = stateEscape
	case 0x18, 0x1A:
		d.toGround()
	default:
		d.appendStrByte(b)
	}
}

// finishSosPmApc dispatches a completed SOS/PM/APC string to the handler
// method matching the introducer byte that opened it.
func (d *Decoder) finishSosPmApc() {
	if d.strOverflow {
		return
	}
	data := append([]byte(nil), d.strBuf...)
	switch d.stringKind {
	case 'X':
		d.handler.StartOfStringReceived(data)
	case '^':
		d.handler.PrivacyMessageReceived(data)
	case '_':
		d.handler.ApplicationCommandReceived(data)
	}
}

// --- DCS ---

func (d *Decoder) beginDcs() {
	d.state = stateDcsEntry
	d.resetParams()
	d.stringKind = 'P'
	d.strBuf = d.strBuf[:0]
	d.strOverflow = false
	d.dcsFinal = 0
}

func (d *Decoder) dcsEntry(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.csiDigit(b)
		d.state = stateDcsParam
	case b == ';':
		d.csiParamSeparator()
		d.state = stateDcsParam
	case b == ':':
		d.csiSubSeparator()
		d.state = stateDcsParam
	case b == '?' || b == '>' || b == '=' || b == '<':
		d.private = b
		d.state = stateDcsParam
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
		d.state = stateDcsIntermediate
	case b >= 0x40 && b <= 0x7E:
		d.dcsFinal = b
		d.state = stateDcsPassthrough
	case b == 0x18 || b == 0x1A:
		d.toGround()
	default:
		d.state = stateDcsIgnore
	}
}

func (d *Decoder) dcsParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.csiDigit(b)
	case b == ';':
		d.csiParamSeparator()
	case b == ':':
		d.csiSubSeparator()
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
		d.state = stateDcsIntermediate
	case b >= 0x40 && b <= 0x7E:
		d.dcsFinal = b
		d.state = stateDcsPassthrough
	case b == 0x18 || b == 0x1A:
		d.toGround()
	default:
		d.state = stateDcsIgnore
	}
}

func (d *Decoder) dcsIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		d.intermediates = append(d.intermediates, b)
	case b >= 0x40 && b <= 0x7E:
		d.dcsFinal = b
		d.state = stateDcsPassthrough
	case b == 0x18 || b == 0x1A:
		d.toGround()
	default:
		d.state = stateDcsIgnore
	}
}

func (d *Decoder) dcsPassthrough(b byte) {
	switch b {
	case 0x1B:
		d.pendingFinish = d.finishDcs
		d.state = stateEscape
	case 0x18, 0x1A:
		d.toGround()
	default:
		d.appendStrByte(b)
	}
}

func (d *Decoder) dcsIgnore(b byte) {
	switch b {
	case 0x1B:
		d.pendingFinish = func() {}
		d.state = stateEscape
	case 0x18, 0x1A:
		d.toGround()
	}
}

// finishDcs dispatches a completed DCS passthrough sequence. Only the
// recognized final bytes (Sixel 'q' and DECRQSS '$q') do anything; others
// are dropped along with their payload.
func (d *Decoder) finishDcs() {
	if d.strOverflow {
		return
	}
	params := d.finishParams()

	switch d.dcsFinal {
	case 'q':
		if len(d.intermediates) == 1 && d.intermediates[0] == '$' {
			data := append([]byte(nil), d.strBuf...)
			d.handler.ReportSetting(data)
			return
		}
		p16 := make([][]uint16, len(params))
		for i, v := range params {
			p16[i] = []uint16{uint16(v)}
		}
		data := append([]byte(nil), d.strBuf...)
		d.handler.SixelReceived(p16, data)
	}
}

// finishOsc splits the accumulated OSC body on its first ';' into a command
// number and payload, and dispatches to the handler method for known
// commands. Unknown OSC numbers are dropped silently (failure semantics:
// recorded but not fatal; this package does not keep a trace log).
func (d *Decoder) finishOsc() {
	if d.strOverflow {
		return
	}
	body := d.strBuf
	sep := -1
	for i, c := range body {
		if c == ';' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return
	}
	cmd := parseDecimal(body[:sep])
	payload := body[sep+1:]

	switch cmd {
	case 0, 2:
		d.handler.SetTitle(string(payload))
	case 1:
		// Icon name only: no dedicated handler method, title covers both in practice.
	case 7:
		d.handler.SetWorkingDirectory(string(payload))
	case 8:
		d.dispatchHyperlink(payload)
	case 4, 10, 11, 12, 104, 110, 111, 112:
		d.dispatchDynamicColor(cmd, payload)
	case 52:
		d.dispatchClipboard(payload)
	case 99:
		d.dispatchNotification(payload)
	case 133:
		d.dispatchShellIntegration(payload)
	case 1337:
		d.dispatchUserVar(payload)
	}
}

func (d *Decoder) dispatchHyperlink(payload []byte) {
	// params;URI -- params is a comma-separated key=value list, id=... is the only one used.
	sep := -1
	for i, c := range payload {
		if c == ';' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return
	}
	params := string(payload[:sep])
	uri := string(payload[sep+1:])
	if uri == "" {
		d.handler.SetHyperlink(nil)
		return
	}
	id := ""
	for _, kv := range splitComma(params) {
		if len(kv) > 3 && kv[:3] == "id=" {
			id = kv[3:]
		}
	}
	d.handler.SetHyperlink(&Hyperlink{ID: id, URI: uri})
}

// dynamicColorIndex maps the OSC 10/11/12 (and 110/111/112 reset) dynamic
// color selectors onto the indices used in the custom color map, reserved
// above the 0-255 palette range.
func dynamicColorIndex(cmd int64) int {
	switch cmd {
	case 10:
		return 256
	case 11:
		return 257
	case 12:
		return 258
	}
	return -1
}

// dispatchDynamicColor handles OSC 4 (set/query one or more palette colors),
// OSC 10/11/12 (set/query foreground/background/cursor color), and their
// reset counterparts 104/110/111/112.
func (d *Decoder) dispatchDynamicColor(cmd int64, payload []byte) {
	switch cmd {
	case 4:
		fields := splitByte(string(payload), ';')
		for i := 0; i+1 < len(fields); i += 2 {
			idx := int(parseDecimal([]byte(fields[i])))
			spec := fields[i+1]
			if spec == "?" {
				d.handler.SetDynamicColor(itoa(cmd)+";"+fields[i], idx, d.terminator)
				continue
			}
			if c, ok := parseColorSpec(spec); ok {
				d.handler.SetColor(idx, c)
			}
		}
	case 10, 11, 12:
		spec := string(payload)
		if spec == "?" {
			d.handler.SetDynamicColor(itoa(cmd), dynamicColorIndex(cmd), d.terminator)
			return
		}
		if c, ok := parseColorSpec(spec); ok {
			d.handler.SetColor(dynamicColorIndex(cmd), c)
		}
	case 104:
		if len(payload) == 0 {
			for i := 0; i < 256; i++ {
				d.handler.ResetColor(i)
			}
			return
		}
		for _, f := range splitComma(string(payload)) {
			d.handler.ResetColor(int(parseDecimal([]byte(f))))
		}
	case 110, 111, 112:
		d.handler.ResetColor(dynamicColorIndex(cmd - 100))
	}
}

// parseColorSpec parses an XParseColor-style "rgb:R/G/B" spec (1-4 hex
// digits per channel, scaled to 8 bits) or a "#RRGGBB" shorthand.
func parseColorSpec(spec string) (color.Color, bool) {
	if strings.HasPrefix(spec, "rgb:") {
		parts := splitByte(spec[4:], '/')
		if len(parts) != 3 {
			return nil, false
		}
		r, ok1 := scaleHexChannel(parts[0])
		g, ok2 := scaleHexChannel(parts[1])
		b, ok3 := scaleHexChannel(parts[2])
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		return color.RGBA{R: r, G: g, B: b, A: 255}, true
	}
	if strings.HasPrefix(spec, "#") && len(spec) == 7 {
		v, err := strconv.ParseUint(spec[1:], 16, 32)
		if err != nil {
			return nil, false
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
	}
	return nil, false
}

// scaleHexChannel parses 1-4 hex digits and scales the result to 0-255,
// matching X11's convention of using the most significant bits of the value.
func scaleHexChannel(s string) (uint8, bool) {
	if len(s) == 0 || len(s) > 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	bits := len(s) * 4
	return uint8(v >> (bits - 8)), true
}

func (d *Decoder) dispatchClipboard(payload []byte) {
	sep := -1
	for i, c := range payload {
		if c == ';' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return
	}
	selector := payload[:sep]
	data := payload[sep+1:]
	clip := byte('c')
	if len(selector) > 0 {
		clip = selector[0]
	}
	if len(data) == 1 && data[0] == '?' {
		d.handler.ClipboardLoad(clip, d.terminator)
		return
	}
	d.handler.ClipboardStore(clip, data)
}

func (d *Decoder) dispatchShellIntegration(payload []byte) {
	if len(payload) == 0 {
		return
	}
	exitCode := -1
	var mark ShellIntegrationMark
	switch payload[0] {
	case 'A':
		mark = PromptStart
	case 'B':
		mark = CommandStart
	case 'C':
		mark = CommandExecuted
	case 'D':
		mark = CommandFinished
		if len(payload) > 2 && payload[1] == ';' {
			exitCode = int(parseDecimal(payload[2:]))
		}
	default:
		return
	}
	d.handler.ShellIntegrationMark(mark, exitCode)
}

func (d *Decoder) dispatchUserVar(payload []byte) {
	const prefix = "SetUserVar="
	if len(payload) <= len(prefix) || string(payload[:len(prefix)]) != prefix {
		return
	}
	rest := payload[len(prefix):]
	eq := -1
	for i, c := range rest {
		if c == '=' {
			eq = i
			break
		}
	}
	if eq < 0 {
		return
	}
	name := string(rest[:eq])
	value := decodeBase64(rest[eq+1:])
	d.handler.SetUserVar(name, value)
}

func (d *Decoder) dispatchNotification(payload []byte) {
	// i=<id>[:p=<part>][;metadata...]=<data>  (simplified OSC 99 framing)
	eq := -1
	for i, c := range payload {
		if c == ';' {
			eq = i
			break
		}
	}
	np := &NotificationPayload{Done: true}
	var meta []byte
	if eq >= 0 {
		meta = payload[:eq]
		np.Data = payload[eq+1:]
	} else {
		meta = payload
	}
	for _, kv := range splitColon(string(meta)) {
		k, v, ok := splitEqual(kv)
		if !ok {
			continue
		}
		switch k {
		case "i":
			np.ID = v
		case "d":
			np.Done = v != "0"
		case "p":
			np.PayloadType = v
		case "a":
			np.Actions = append(np.Actions, v)
		case "o":
			np.Occasion = v
		}
	}
	d.handler.DesktopNotification(np)
}

func parseDecimal(b []byte) int64 {
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
	}
	return n
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func splitComma(s string) []string { return splitByte(s, ',') }
func splitColon(s string) []string { return splitByte(s, ':') }

func splitByte(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func splitEqual(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// decodeBase64 decodes an OSC 1337 user-var value, which xterm and iTerm2
// both transmit as standard base64, tolerating a missing '=' padding suffix.
func decodeBase64(b []byte) string {
	s := string(b)
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(out)
}
