package vtengine

import (
	"fmt"
	"strings"
)

// ReportSetting answers a DECRQSS request (DCS $ q <setting> ST) with the
// current value of the named setting, replying with "1$r" (valid request)
// or "0$r" (invalid request) per the DECRPSS format.
func (t *Terminal) ReportSetting(setting []byte) {
	if t.middleware != nil && t.middleware.ReportSetting != nil {
		t.middleware.ReportSetting(setting, t.reportSettingInternal)
		return
	}
	t.reportSettingInternal(setting)
}

func (t *Terminal) reportSettingInternal(setting []byte) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var payload string
	switch string(setting) {
	case "m":
		payload = "m" + t.currentSgrLocked()
	case "r":
		payload = fmt.Sprintf("%d;%dr", t.scrollTop+1, t.scrollBottom)
	case " q":
		payload = fmt.Sprintf("%d q", int(t.cursor.Style)+1)
	default:
		t.writeResponseString("\x1bP0$r\x1b\\")
		return
	}
	t.writeResponseString("\x1bP1$r" + payload + "\x1b\\")
}

// currentSgrLocked builds the semicolon-joined SGR parameter string (without
// the leading CSI or trailing 'm') from the boolean attribute flags of the
// cursor's current cell template (parameters 1-9, "0" when none is set).
// Colors are not included, and every underline style is reported as plain 4.
// Caller must hold t.mu for reading.
func (t *Terminal) currentSgrLocked() string {
	cell := t.template.Cell
	var parts []string

	if cell.HasFlag(CellFlagBold) {
		parts = append(parts, "1")
	}
	if cell.HasFlag(CellFlagDim) {
		parts = append(parts, "2")
	}
	if cell.HasFlag(CellFlagItalic) {
		parts = append(parts, "3")
	}
	if cell.HasFlag(CellFlagUnderline) {
		parts = append(parts, "4")
	}
	if cell.HasFlag(CellFlagBlinkSlow) {
		parts = append(parts, "5")
	}
	if cell.HasFlag(CellFlagBlinkFast) {
		parts = append(parts, "6")
	}
	if cell.HasFlag(CellFlagReverse) {
		parts = append(parts, "7")
	}
	if cell.HasFlag(CellFlagHidden) {
		parts = append(parts, "8")
	}
	if cell.HasFlag(CellFlagStrike) {
		parts = append(parts, "9")
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, ";")
}
