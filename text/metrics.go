package text

// Metrics holds font metrics scaled to a size in pixels.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of the font (positive).
	Ascent float64

	// Descent is the distance from the baseline to the bottom of the font,
	// stored as a positive value.
	Descent float64

	// LineGap is the recommended gap between lines.
	LineGap float64

	// XHeight is the height of lowercase letters above the baseline.
	XHeight float64
}

// LineHeight returns the total line height (ascent + descent + line gap).
func (m Metrics) LineHeight() float64 {
	return m.Ascent + m.Descent + m.LineGap
}

// fallbackMetrics approximates metrics when no font is available at all.
func fallbackMetrics(size float64) Metrics {
	return Metrics{Ascent: 0.8 * size, Descent: 0.2 * size, XHeight: 0.5 * size}
}
