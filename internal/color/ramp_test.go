package color

import "testing"

func fillFor(kelvin, rampSize int, gamma float64) []uint16 {
	table := make([]uint16, 3*rampSize)
	wr, wg, wb := Whitepoint(kelvin)
	FillRamp(table, rampSize, wr, wg, wb, gamma)
	return table
}

func TestFillRamp_MonotoneAndZeroBased(t *testing.T) {
	kelvins := []int{1000, 2400, 4000, 5250, 6500, 6600, 10000, 25000}
	gammas := []float64{0.5, 0.8, 1.0, 1.8, 2.2, 3.0}

	for _, kelvin := range kelvins {
		for _, gamma := range gammas {
			const rampSize = 256
			table := fillFor(kelvin, rampSize, gamma)

			for c := 0; c < 3; c++ {
				channel := table[c*rampSize : (c+1)*rampSize]
				if channel[0] != 0 {
					t.Errorf("kelvin=%d gamma=%v channel=%d: first entry is %d, want 0",
						kelvin, gamma, c, channel[0])
				}
				for i := 1; i < rampSize; i++ {
					if channel[i] < channel[i-1] {
						t.Fatalf("kelvin=%d gamma=%v channel=%d: entry %d (%d) below entry %d (%d)",
							kelvin, gamma, c, i, channel[i], i-1, channel[i-1])
					}
				}
			}
		}
	}
}

func TestFillRamp_IdentityRamp(t *testing.T) {
	// 6600 K maps to a (1,1,1) white point, so with gamma 1 and three
	// entries the table is the identity ramp with the midpoint rounded
	// half away from zero.
	table := fillFor(6600, 3, 1.0)

	want := []uint16{0, 32768, 65535}
	for c := 0; c < 3; c++ {
		for i, w := range want {
			if got := table[c*3+i]; got != w {
				t.Errorf("channel %d entry %d = %d, want %d", c, i, got, w)
			}
		}
	}
}

func TestFillRamp_SingleEntry(t *testing.T) {
	// A one-entry ramp has no usable index range; the documented policy is
	// value 0, so the whole table is zero.
	table := fillFor(6600, 1, 1.0)
	for i, v := range table {
		if v != 0 {
			t.Errorf("entry %d = %d, want 0", i, v)
		}
	}
}

func TestFillRamp_FullScaleTop(t *testing.T) {
	table := fillFor(6600, 16, 2.2)
	for c := 0; c < 3; c++ {
		if got := table[c*16+15]; got != MaxLevel {
			t.Errorf("channel %d top entry = %d, want %d", c, got, MaxLevel)
		}
	}
}

func TestFillRamp_ShortTableIgnored(t *testing.T) {
	table := make([]uint16, 5) // too short for rampSize 16
	FillRamp(table, 16, 1, 1, 1, 1.0)
	for i, v := range table {
		if v != 0 {
			t.Errorf("entry %d = %d, want untouched 0", i, v)
		}
	}
}
