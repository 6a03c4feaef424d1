package core

// Color represents a foreground color for a screen cell.
// The platform maps these to ANSI 256-color codes.
type Color uint8

// Colors used by the simulator views.
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
)

// agentPalette cycles through distinguishable colors for population members.
var agentPalette = [...]Color{
	ColorYellow, ColorCyan, ColorMagenta, ColorGreen, ColorBlue, ColorWhite,
}

// PaletteColor returns a stable color for the i-th member of a population.
func PaletteColor(i int) Color {
	if i < 0 {
		i = -i
	}
	return agentPalette[i%len(agentPalette)]
}
