package vtengine

import (
	"bytes"
	"testing"
)

func TestReportSettingSGR(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(5, 10), WithResponse(&buf))
	term.WriteString("\x1b[1;4m")
	buf.Reset()

	term.ReportSetting([]byte("m"))

	want := "\x1bP1$rm1;4\x1b\\"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestReportSettingSGRDefault(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(5, 10), WithResponse(&buf))

	term.ReportSetting([]byte("m"))

	want := "\x1bP1$rm0\x1b\\"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestReportSettingScrollRegion(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(24, 80), WithResponse(&buf))
	term.WriteString("\x1b[5;20r")
	buf.Reset()

	term.ReportSetting([]byte("r"))

	want := "\x1bP1$r5;20r\x1b\\"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestReportSettingCursorStyle(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(5, 10), WithResponse(&buf))

	term.ReportSetting([]byte(" q"))

	if !bytes.HasPrefix(buf.Bytes(), []byte("\x1bP1$r")) || !bytes.HasSuffix(buf.Bytes(), []byte(" q\x1b\\")) {
		t.Errorf("expected cursor style reply, got %q", buf.String())
	}
}

func TestReportSettingUnknown(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithSize(5, 10), WithResponse(&buf))

	term.ReportSetting([]byte("x"))

	want := "\x1bP0$r\x1b\\"
	if buf.String() != want {
		t.Errorf("expected invalid-request reply, got %q", buf.String())
	}
}
