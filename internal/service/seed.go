package service

import mrand "math/rand/v2"

// seedSpan matches Math.random() * 4503599627370496 used by the browser
// solver, so attempts look like the ones a real visitor submits.
const seedSpan = 1 << 52

// seedHeadroom keeps lane values below 2^52, where every step of a
// half-integer seed is still exact and no two lanes can round onto the same
// value.
const seedHeadroom = 1 << 40

// RandomSeed returns a starting attempt in [0, 2^52 - 2^40).
func RandomSeed() float64 {
	return mrand.Float64() * (seedSpan - seedHeadroom)
}
