package ansicode

import "image/color"

// Handler receives one call per control function recognized by a Decoder.
// Implementations perform the actual screen-state mutation; the Decoder
// itself is stateless with respect to terminal semantics.
//
// Methods are grouped roughly the way the parser recognizes them: plain
// text and C0 controls, cursor motion, editing, modes and attributes,
// string-type sequences (OSC/DCS/APC/PM/SOS), and Kitty/shell-integration
// extensions.
type Handler interface {
	// Input is called once per printable rune decoded in Ground state.
	Input(r rune)

	Bell()
	Backspace()
	CarriageReturn()
	LineFeed()
	Tab(n int)
	HorizontalTabSet()

	ClearLine(mode LineClearMode)
	ClearScreen(mode ClearMode)
	ClearTabs(mode TabulationClearMode)

	Goto(row, col int)
	GotoLine(row int)
	GotoCol(col int)
	MoveUp(n int)
	MoveDown(n int)
	MoveForward(n int)
	MoveBackward(n int)
	MoveUpCr(n int)
	MoveDownCr(n int)
	MoveForwardTabs(n int)
	MoveBackwardTabs(n int)

	InsertBlank(n int)
	InsertBlankLines(n int)
	DeleteChars(n int)
	DeleteLines(n int)
	EraseChars(n int)
	ScrollUp(n int)
	ScrollDown(n int)
	SetScrollingRegion(top, bottom int)

	SetMode(mode TerminalMode)
	UnsetMode(mode TerminalMode)
	SaveMode(mode TerminalMode)
	RestoreMode(mode TerminalMode)
	SetTerminalCharAttribute(attr TerminalCharAttribute)

	SetTitle(title string)
	PushTitle()
	PopTitle()

	SetCursorStyle(style CursorStyle)
	SaveCursorPosition()
	RestoreCursorPosition()
	ReverseIndex()
	ResetState()
	Substitute()
	Decaln()

	DeviceStatus(n int)
	IdentifyTerminal(b byte)

	ConfigureCharset(index CharsetIndex, charset Charset)
	SetActiveCharset(n int)
	SetKeypadApplicationMode()
	UnsetKeypadApplicationMode()

	SetColor(index int, c color.Color)
	ResetColor(i int)
	SetDynamicColor(prefix string, index int, terminator string)

	ClipboardLoad(clipboard byte, terminator string)
	ClipboardStore(clipboard byte, data []byte)

	SetHyperlink(hyperlink *Hyperlink)

	TextAreaSizeChars()
	TextAreaSizePixels()

	SetKeyboardMode(mode KeyboardMode, behavior KeyboardModeBehavior)
	PushKeyboardMode(mode KeyboardMode)
	PopKeyboardMode(n int)
	ReportKeyboardMode()
	SetModifyOtherKeys(modify ModifyOtherKeys)
	ReportModifyOtherKeys()

	ApplicationCommandReceived(data []byte)
	PrivacyMessageReceived(data []byte)
	StartOfStringReceived(data []byte)

	ShellIntegrationMark(mark ShellIntegrationMark, exitCode int)
	SetWorkingDirectory(uri string)

	SixelReceived(params [][]uint16, data []byte)

	// ReportSetting answers a DECRQSS request (DCS $ q <setting> ST) with the
	// current value of the named setting ("m" for SGR, "r" for DECSTBM,
	// " q" for DECSCUSR), or an invalid-request reply for anything else.
	ReportSetting(setting []byte)

	DesktopNotification(payload *NotificationPayload)
	SetUserVar(name, value string)
}

// NotificationPayload carries the decoded fields of an OSC 99 desktop notification
// sequence (iTerm2/Kitty style). The decoder does not reassemble multi-part
// notifications: DesktopNotification is invoked once per OSC 99 sequence, with
// Done taken from that sequence's d= key (true when absent).
type NotificationPayload struct {
	// ID identifies this notification, used to correlate close/query events.
	ID string
	// Done is true when this is the final (or only) chunk of the notification.
	Done bool
	// PayloadType describes what Data holds: "title", "body", "?" for a
	// capability query, or a close/action request.
	PayloadType string
	// Encoding is the metadata encoding, typically "" (raw) or "1" (base64).
	Encoding string
	// Actions lists the button/action labels offered with the notification.
	Actions []string
	// TrackClose requests a response when the notification is dismissed.
	TrackClose bool
	// Timeout is the requested auto-dismiss time in milliseconds, 0 for none.
	Timeout int
	// AppName is the reported originating application name.
	AppName string
	// Type is the notification category (e.g. "alert").
	Type string
	// IconName names a themed icon to display.
	IconName string
	// IconCacheID references a previously transmitted icon image.
	IconCacheID string
	// Sound names a sound to play, "" for none.
	Sound string
	// Urgency is 0 (low), 1 (normal), or 2 (critical).
	Urgency int
	// Occasion constrains when the notification should be shown (e.g. "always", "unfocused").
	Occasion string
	// Data is the raw payload bytes for this chunk (title or body text).
	Data []byte
}
