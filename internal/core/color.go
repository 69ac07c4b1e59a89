package core

import "github.com/vovakirdan/bottle-sort/internal/engine"

// Color represents a foreground color for a screen cell.
// The platform maps it to ANSI 256-color codes.
type Color uint8

// Predefined colors.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
	ColorBrightWhite
)

// blockColors maps block colors 1..MaxPatterns to screen colors.
var blockColors = [engine.MaxPatterns + 1]Color{
	ColorDefault,
	ColorRed,
	ColorBlue,
	ColorGreen,
	ColorYellow,
	ColorMagenta,
	ColorCyan,
	ColorOrange,
}

// BlockColor returns the screen color used for a block.
func BlockColor(c engine.Color) Color {
	if !c.Valid() {
		return ColorGray
	}
	return blockColors[c]
}

// BlockGlyph returns the character used for a block in plain-text output.
func BlockGlyph(c engine.Color) rune {
	if !c.Valid() {
		return '?'
	}
	return rune('0' + int(c))
}
