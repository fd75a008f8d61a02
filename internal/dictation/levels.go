package dictation

import "math"

// Band probe frequencies in Hz: voice fundamentals, vowels and formants,
// then sibilants.
var bands = [3][]float64{
	{100, 150, 200, 250, 300},
	{500, 800, 1200, 1600, 2000},
	{2500, 3200, 4000, 5000, 6000},
}

// floorDB maps to level 0; 0 dBFS maps to level 1.
const floorDB = -60.0

// Levels returns the normalised energy of three frequency bands for one
// frame of samples.
func Levels(samples []int16, rate int) [3]float64 {
	var out [3]float64
	if len(samples) == 0 || rate <= 0 {
		return out
	}
	for i, freqs := range bands {
		var power float64
		for _, f := range freqs {
			power += goertzel(samples, f, float64(rate))
		}
		mag := math.Sqrt(power/float64(len(freqs))) / (float64(len(samples)) / 2)
		out[i] = normalise(mag)
	}
	return out
}

// goertzel returns the power of frequency f in samples.
func goertzel(samples []int16, f, rate float64) float64 {
	coeff := 2 * math.Cos(2*math.Pi*f/rate)
	var s1, s2 float64
	for _, v := range samples {
		s0 := float64(v)/math.MaxInt16 + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	return s1*s1 + s2*s2 - coeff*s1*s2
}

func normalise(mag float64) float64 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	return math.Max(0, math.Min(1, (db-floorDB)/-floorDB))
}
