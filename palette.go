package vtengine

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Palette is a loadable color theme: the 16 ANSI colors plus the semantic
// foreground/background/cursor colors, expressed as "#RRGGBB" hex strings
// so the file is hand-editable.
type Palette struct {
	Name       string   `yaml:"name"`
	Colors     []string `yaml:"colors"` // empty, or exactly 16 (indices 0-15)
	Foreground string   `yaml:"foreground"`
	Background string   `yaml:"background"`
	Cursor     string   `yaml:"cursor"`
}

// LoadPaletteYAML reads and parses a palette/theme file from disk.
func LoadPaletteYAML(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette file: %w", err)
	}
	return ParsePaletteYAML(data)
}

// ParsePaletteYAML parses palette/theme YAML already in memory.
func ParsePaletteYAML(data []byte) (*Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse palette yaml: %w", err)
	}
	if len(p.Colors) != 0 && len(p.Colors) != 16 {
		return nil, fmt.Errorf("palette %q: expected 16 colors, got %d", p.Name, len(p.Colors))
	}
	return &p, nil
}

// parseHexColor parses a "#RRGGBB" string into an opaque RGBA color.
func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Apply overwrites the process-wide 256-color palette and semantic defaults
// (foreground/background/cursor) with this theme's colors. Indices 16-255
// (the color cube and grayscale ramp) are left at their generated defaults;
// only the 16 ANSI slots and the three semantic colors are themeable. Like
// DefaultPalette itself, this is process-wide state meant to be set once at
// startup, not per-Terminal.
func (p *Palette) Apply() error {
	var ansi [16]color.RGBA
	for i, hex := range p.Colors {
		c, err := parseHexColor(hex)
		if err != nil {
			return fmt.Errorf("palette %q color %d: %w", p.Name, i, err)
		}
		ansi[i] = c
	}

	var fg, bg, cursor *color.RGBA
	if p.Foreground != "" {
		c, err := parseHexColor(p.Foreground)
		if err != nil {
			return fmt.Errorf("palette %q foreground: %w", p.Name, err)
		}
		fg = &c
	}
	if p.Background != "" {
		c, err := parseHexColor(p.Background)
		if err != nil {
			return fmt.Errorf("palette %q background: %w", p.Name, err)
		}
		bg = &c
	}
	if p.Cursor != "" {
		c, err := parseHexColor(p.Cursor)
		if err != nil {
			return fmt.Errorf("palette %q cursor: %w", p.Name, err)
		}
		cursor = &c
	}

	if len(p.Colors) == 16 {
		for i, c := range ansi {
			DefaultPalette[i] = c
		}
	}
	if fg != nil {
		DefaultForeground = *fg
	}
	if bg != nil {
		DefaultBackground = *bg
	}
	if cursor != nil {
		DefaultCursorColor = *cursor
	}
	return nil
}
