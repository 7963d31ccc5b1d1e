package util

// Lerp realiza interpolação linear entre dois floats.
func Lerp(start, end, amount float32) float32 {
	return start + amount*(end-start)
}

// Clamp limita um float64 ao intervalo [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampF limita um float32 ao intervalo [lo, hi].
func ClampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
