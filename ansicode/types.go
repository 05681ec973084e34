package ansicode

// LineClearMode selects which part of the current line EL (CSI K) erases.
type LineClearMode int

const (
	// LineClearModeRight erases from the cursor to the end of the line (EL 0).
	LineClearModeRight LineClearMode = iota
	// LineClearModeLeft erases from the start of the line to the cursor (EL 1).
	LineClearModeLeft
	// LineClearModeAll erases the entire line (EL 2).
	LineClearModeAll
)

// ClearMode selects which part of the screen ED (CSI J) erases.
type ClearMode int

const (
	// ClearModeBelow erases from the cursor to the end of the screen (ED 0).
	ClearModeBelow ClearMode = iota
	// ClearModeAbove erases from the start of the screen to the cursor (ED 1).
	ClearModeAbove
	// ClearModeAll erases the entire visible screen (ED 2).
	ClearModeAll
	// ClearModeSaved erases the scrollback history (ED 3).
	ClearModeSaved
)

// TabulationClearMode selects which tab stops TBC (CSI g) clears.
type TabulationClearMode int

const (
	// TabulationClearModeCurrent clears the tab stop at the cursor column (TBC 0).
	TabulationClearModeCurrent TabulationClearMode = iota
	// TabulationClearModeAll clears every tab stop (TBC 3).
	TabulationClearModeAll
)

// CharsetIndex identifies one of the four character set slots (G0-G3).
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

// Charset identifies a designated character set, selected by ESC ( / ) / * / + <designator>.
type Charset int

const (
	// CharsetASCII is the standard US-ASCII character set (designator 'B').
	CharsetASCII Charset = iota
	// CharsetLineDrawing is the DEC Special Graphics line-drawing set (designator '0').
	CharsetLineDrawing
	// CharsetUK is the United Kingdom national character set (designator 'A').
	CharsetUK
)

// CursorStyle is the cursor shape/blink combination selected by DECSCUSR.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// TerminalMode identifies a single DEC private mode or ANSI mode recognized
// by SetMode/UnsetMode (CSI ?h / CSI ?l and their ANSI-mode counterparts).
type TerminalMode int

const (
	TerminalModeCursorKeys TerminalMode = iota
	TerminalModeColumnMode
	TerminalModeInsert
	TerminalModeOrigin
	TerminalModeLineWrap
	TerminalModeBlinkingCursor
	TerminalModeLineFeedNewLine
	TerminalModeShowCursor
	TerminalModeReportMouseClicks
	TerminalModeReportCellMouseMotion
	TerminalModeReportAllMouseMotion
	TerminalModeReportFocusInOut
	TerminalModeUTF8Mouse
	TerminalModeSGRMouse
	TerminalModeAlternateScroll
	TerminalModeUrgencyHints
	TerminalModeSwapScreenAndSetRestoreCursor
	TerminalModeBracketedPaste
)

// KeyboardMode is a bitset of Kitty keyboard protocol enhancement flags
// pushed/popped/queried via CSI > / CSI < / CSI = / CSI ?u.
type KeyboardMode uint8

const KeyboardModeNoMode KeyboardMode = 0

const (
	KeyboardModeDisambiguateEscapeCodes KeyboardMode = 1 << iota
	KeyboardModeReportEventTypes
	KeyboardModeReportAlternateKeys
	KeyboardModeReportAllKeysAsEscapeCodes
	KeyboardModeReportAssociatedText
)

// KeyboardModeBehavior selects how SetKeyboardMode combines a new value with
// the mode currently on top of the stack (CSI = n ; m u).
type KeyboardModeBehavior int

const (
	// KeyboardModeBehaviorReplace replaces the top of the stack outright.
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	// KeyboardModeBehaviorUnion ORs the new flags into the current mode.
	KeyboardModeBehaviorUnion
	// KeyboardModeBehaviorDifference clears the new flags from the current mode.
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys is the xterm modifyOtherKeys setting (CSI > 4 ; Pv m).
type ModifyOtherKeys int

const (
	ModifyOtherKeysDisabled ModifyOtherKeys = iota
	ModifyOtherKeysEnabled
	ModifyOtherKeysEnabledAll
)

// ShellIntegrationMark identifies an OSC 133 shell-integration mark kind.
type ShellIntegrationMark int

const (
	// PromptStart marks the beginning of a shell prompt (OSC 133;A).
	PromptStart ShellIntegrationMark = iota
	// CommandStart marks the end of the prompt / start of user input (OSC 133;B).
	CommandStart
	// CommandExecuted marks the point the command began executing (OSC 133;C).
	CommandExecuted
	// CommandFinished marks command completion, carrying an optional exit code (OSC 133;D).
	CommandFinished
)

// CharAttribute identifies one SGR (Select Graphic Rendition) parameter.
type CharAttribute int

const (
	CharAttributeReset CharAttribute = iota
	CharAttributeBold
	CharAttributeDim
	CharAttributeItalic
	CharAttributeUnderline
	CharAttributeDoubleUnderline
	CharAttributeCurlyUnderline
	CharAttributeDottedUnderline
	CharAttributeDashedUnderline
	CharAttributeBlinkSlow
	CharAttributeBlinkFast
	CharAttributeReverse
	CharAttributeHidden
	CharAttributeStrike
	CharAttributeCancelBold
	CharAttributeCancelBoldDim
	CharAttributeCancelItalic
	CharAttributeCancelUnderline
	CharAttributeCancelBlink
	CharAttributeCancelReverse
	CharAttributeCancelHidden
	CharAttributeCancelStrike
	CharAttributeForeground
	CharAttributeBackground
	CharAttributeUnderlineColor
)

// RGBColor carries an RGB color resolved from a 38/48/58;2;R;G;B SGR sequence.
type RGBColor struct {
	R, G, B uint8
}

// IndexedColor carries a 256-color palette index resolved from a 38/48/58;5;N SGR sequence.
type IndexedColor struct {
	Index uint8
}

// TerminalCharAttribute carries one decoded SGR parameter and, for the color
// attributes, the specific color it selects (at most one of RGBColor,
// IndexedColor, NamedColor is non-nil; all nil means "default color").
type TerminalCharAttribute struct {
	Attr         CharAttribute
	RGBColor     *RGBColor
	IndexedColor *IndexedColor
	NamedColor   *uint8
}

// Hyperlink carries the id and target URI of an OSC 8 hyperlink.
type Hyperlink struct {
	ID  string
	URI string
}
