package color

import "math"

// Supported color temperature domain in Kelvin. Inputs outside the domain
// are clamped, never extrapolated.
const (
	MinKelvin = 1000
	MaxKelvin = 25000
)

// ClampKelvin clamps a color temperature to the supported domain
func ClampKelvin(kelvin int) int {
	if kelvin < MinKelvin {
		return MinKelvin
	}
	if kelvin > MaxKelvin {
		return MaxKelvin
	}
	return kelvin
}

// The published green and blue curves land slightly short of full scale at
// the 6600 K formula switch (251.7 and 252.5 of 255), which would step the
// white point whenever a ramp crosses it. Both are rescaled to meet 255
// exactly at the switch.
var (
	greenScale = 255 / (288.1221695283 * math.Pow(6, -0.0755148492))
	blueScale  = 255 / (138.5177312231*math.Log(56) - 305.0447927307)
)

// Whitepoint maps a color temperature in Kelvin to normalized RGB channel
// weights in [0,1]. Uses the piecewise Planckian-locus approximation by
// Tanner Helland; the channel curves are clamped at full scale so the
// weights meet (1,1,1) around 6600 K, and every channel is continuous
// across the formula switches.
// ref: https://tannerhelland.com/2012/09/18/convert-temperature-rgb-algorithm-code.html
func Whitepoint(kelvin int) (r, g, b float64) {
	k := float64(ClampKelvin(kelvin)) / 100.0

	// Red
	if k <= 66 {
		r = 255
	} else {
		r = 329.698727446 * math.Pow(k-60, -0.1332047592)
	}

	// Green
	if k <= 66 {
		g = 99.4708025861*math.Log(k) - 161.1195681661
	} else {
		g = greenScale * 288.1221695283 * math.Pow(k-60, -0.0755148492)
	}

	// Blue
	if k >= 66 {
		b = 255
	} else if k <= 19 {
		b = 0
	} else {
		b = blueScale * (138.5177312231*math.Log(k-10) - 305.0447927307)
	}

	return clampChannel(r) / 255, clampChannel(g) / 255, clampChannel(b) / 255
}

func clampChannel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
