package vtengine

// SixelImage represents a Sixel placement tracked as an opaque region: its
// pixel geometry and raw payload, without resolving palette colors or pixels.
type SixelImage struct {
	Width       uint32
	Height      uint32
	Data        []byte // Raw Sixel payload bytes, as received
	Transparent bool   // Whether background is transparent
}

// sixelGeometryScanner walks a Sixel byte stream to compute its bounding box
// without resolving colors or building a pixel buffer.
type sixelGeometryScanner struct {
	x, y       int
	maxX, maxY int
	sawPixel   bool
}

// ParseSixel scans Sixel data and returns its declared geometry and raw payload.
// params contains the DCS parameters (P1;P2;P3).
// data contains the raw Sixel bytes after 'q'.
func ParseSixel(params []int64, data []byte) (*SixelImage, error) {
	s := &sixelGeometryScanner{}

	transparent := len(params) >= 2 && params[1] == 1

	s.scan(data)

	if !s.sawPixel {
		return &SixelImage{Width: 0, Height: 0, Data: data, Transparent: transparent}, nil
	}

	return &SixelImage{
		Width:       uint32(s.maxX + 1),
		Height:      uint32(s.maxY + 1),
		Data:        data,
		Transparent: transparent,
	}, nil
}

// scan processes the sixel byte stream, tracking the drawn bounding box only.
func (s *sixelGeometryScanner) scan(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		i++

		switch {
		case b == '$':
			// Carriage return - back to beginning of current sixel line
			s.x = 0

		case b == '-':
			// New line - move down 6 pixels and go to beginning
			s.x = 0
			s.y += 6

		case b == '!':
			// Repeat introducer: !<count><sixel>
			count, newI := parseSixelNumber(data, i)
			i = newI
			if i < len(data) {
				sixel := data[i]
				i++
				if sixel >= '?' && sixel <= '~' {
					s.markSixel(sixel, int(count))
				}
			}

		case b == '#':
			// Color introducer: #<index> or #<index>;<type>;<v1>;<v2>;<v3>
			// Colors are not resolved; skip past the parameter list.
			_, newI := parseSixelNumber(data, i)
			i = newI
			for i < len(data) && data[i] == ';' {
				i++
				_, newI := parseSixelNumber(data, i)
				i = newI
			}

		case b >= '?' && b <= '~':
			s.markSixel(b, 1)

		case b == '"':
			// Raster attributes: "<Pan>;<Pad>;<Ph>;<Pv> - parsed elsewhere, skip here.
			for i < len(data) && data[i] != '$' && data[i] != '-' &&
				data[i] != '#' && data[i] != '!' &&
				!(data[i] >= '?' && data[i] <= '~') {
				i++
			}
		}
	}
}

// parseSixelNumber parses a decimal number from data starting at index i.
func parseSixelNumber(data []byte, i int) (int64, int) {
	var n int64
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		n = n*10 + int64(data[i]-'0')
		i++
	}
	return n, i
}

// markSixel advances the bounding box for a sixel character at the current position.
// A sixel represents 6 vertical pixels encoded in 6 bits.
func (s *sixelGeometryScanner) markSixel(b byte, count int) {
	if count <= 0 {
		count = 1
	}

	bits := b - '?'

	for r := 0; r < count; r++ {
		for bit := 0; bit < 6; bit++ {
			if bits&(1<<bit) != 0 {
				py := s.y + bit
				px := s.x
				s.sawPixel = true
				if px > s.maxX {
					s.maxX = px
				}
				if py > s.maxY {
					s.maxY = py
				}
			}
		}
		s.x++
	}
}
