package engine

import "tradeup-scout/internal/catalog"

// ScaleFloat maps an input wear value into a candidate output's own float
// range and derives the resulting wear bucket. The relative position of the
// input inside its range is preserved; a degenerate input range pins the
// output to its minimum.
func ScaleFloat(inputFloat float64, in, out catalog.FloatRange) (float64, catalog.Wear) {
	relative := 0.0
	if in.Width() > 0 {
		relative = (inputFloat - in.Min) / in.Width()
		if relative < 0 {
			relative = 0
		} else if relative > 1 {
			relative = 1
		}
	}
	f := out.Min + relative*out.Width()
	if f < out.Min {
		f = out.Min
	} else if f > out.Max {
		f = out.Max
	}
	return f, catalog.WearFromFloat(f)
}
