package color

import "math"

// MaxLevel is the full-scale brightness level of a gamma ramp entry.
const MaxLevel = math.MaxUint16

// FillRamp writes three per-channel lookup tables into table, which must
// hold at least 3*rampSize entries laid out as consecutive R, G and B
// planes. Each entry is round(MaxLevel * (value * weight)^(1/gamma)) with
// value = i/(rampSize-1); rounding is half away from zero. A single-entry
// ramp uses value 0, so the whole table is zero.
//
// Per channel the table is monotonically non-decreasing and entry 0 is
// always 0, since value*weight stays in [0,1].
func FillRamp(table []uint16, rampSize int, wr, wg, wb, gamma float64) {
	if rampSize < 1 || len(table) < 3*rampSize {
		return
	}

	r := table[:rampSize]
	g := table[rampSize : 2*rampSize]
	b := table[2*rampSize : 3*rampSize]

	inverse := 1.0 / gamma
	for i := 0; i < rampSize; i++ {
		var value float64
		if rampSize > 1 {
			value = float64(i) / float64(rampSize-1)
		}
		r[i] = level(value*wr, inverse)
		g[i] = level(value*wg, inverse)
		b[i] = level(value*wb, inverse)
	}
}

func level(v, inverseGamma float64) uint16 {
	return uint16(math.Round(MaxLevel * math.Pow(v, inverseGamma)))
}
