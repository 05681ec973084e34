package vtengine

// ResizeMode selects how Resize handles a column-width change against
// existing rows: truncate (the default, matching classic terminal
// behavior) discards content past the new width, while reflow rewraps
// each logical line at the new width.
type ResizeMode int

const (
	// ResizeTruncate crops rows to the new column count, same as Resize's
	// original behavior: no attempt to preserve text past the new width.
	ResizeTruncate ResizeMode = iota
	// ResizeReflow rewraps each logical line (a run of rows joined by the
	// wrapped-line flag) to the new column count before resizing.
	ResizeReflow
)

// SetResizeMode changes how future Resize calls treat column-width changes.
func (t *Terminal) SetResizeMode(mode ResizeMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resizeMode = mode
}

// ResizeWithReflow resizes the terminal using the current ResizeMode. Plain
// Resize always truncates, for compatibility with callers that never opted
// into reflow.
func (t *Terminal) ResizeWithReflow(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}

	t.mu.Lock()
	mode := t.resizeMode
	oldCols := t.cols
	t.mu.Unlock()

	if mode == ResizeReflow && cols != oldCols && t.activeBuffer == t.primaryBuffer {
		t.reflowPrimaryBuffer(cols)
	}

	t.Resize(rows, cols)
}

// logicalLine is one run of cells spanning however many rows were joined by
// automatic line wrap, flattened for rewrapping at a new column width.
type logicalLine struct {
	cells []Cell
}

// reflowPrimaryBuffer rewraps every logical line in the primary buffer to
// newCols, replacing its rows in place. Rows beyond what fits are dropped,
// matching Resize's own truncation of excess rows; reflow only concerns
// column width.
func (t *Terminal) reflowPrimaryBuffer(newCols int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf := t.primaryBuffer
	oldRows := buf.Rows()
	oldCols := buf.Cols()

	lines := make([]logicalLine, 0, oldRows)
	for row := 0; row < oldRows; row++ {
		if row > 0 && buf.IsWrapped(row-1) {
			li := len(lines) - 1
			lines[li].cells = appendRowCells(lines[li].cells, buf, row, oldCols)
			continue
		}
		lines = append(lines, logicalLine{cells: appendRowCells(nil, buf, row, oldCols)})
	}

	var newRows [][]Cell
	var newWrapped []bool
	for _, line := range lines {
		trimmed := trimTrailingBlank(line.cells)
		if len(trimmed) == 0 {
			newRows = append(newRows, nil)
			newWrapped = append(newWrapped, false)
			continue
		}
		for start := 0; start < len(trimmed); start += newCols {
			end := start + newCols
			if end > len(trimmed) {
				end = len(trimmed)
			}
			newRows = append(newRows, trimmed[start:end])
			newWrapped = append(newWrapped, end < len(trimmed))
		}
	}

	for row := 0; row < oldRows; row++ {
		buf.ClearRow(row)
	}
	buf.Resize(len(newRows), newCols)
	for row, cells := range newRows {
		for col, c := range cells {
			buf.SetCell(row, col, c)
		}
		buf.SetWrapped(row, newWrapped[row])
	}
}

func appendRowCells(dst []Cell, buf *Buffer, row, cols int) []Cell {
	for col := 0; col < cols; col++ {
		if c := buf.Cell(row, col); c != nil {
			dst = append(dst, *c)
		} else {
			dst = append(dst, NewCell())
		}
	}
	return dst
}

func trimTrailingBlank(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 && cells[end-1].Char == ' ' && cells[end-1].Flags == 0 {
		end--
	}
	return cells[:end]
}
