package vtengine

import "testing"

type testSizeProvider struct {
	width, height int
}

func (p *testSizeProvider) CellSizePixels() (int, int) {
	return p.width, p.height
}

func TestNoopSizeReturnsZero(t *testing.T) {
	var p SizeProvider = NoopSize{}
	w, h := p.CellSizePixels()
	if w != 0 || h != 0 {
		t.Errorf("expected 0x0, got %dx%d", w, h)
	}
}

func TestWithSizeProviderOverridesDefaultCellSize(t *testing.T) {
	term := New(WithSizeProvider(&testSizeProvider{width: 9, height: 18}))

	var response []byte
	buf := &testResponseWriter{}
	term.SetResponseProvider(buf)

	term.CellSizePixels()
	response = buf.data

	expected := "\x1b[6;18;9t"
	if string(response) != expected {
		t.Errorf("expected %q, got %q", expected, string(response))
	}
}

func TestNoSizeProviderUsesDefaultCellSize(t *testing.T) {
	term := New()

	buf := &testResponseWriter{}
	term.SetResponseProvider(buf)

	term.CellSizePixels()

	expected := "\x1b[6;20;10t"
	if string(buf.data) != expected {
		t.Errorf("expected default cell size response %q, got %q", expected, string(buf.data))
	}
}

type testResponseWriter struct {
	data []byte
}

func (w *testResponseWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}
