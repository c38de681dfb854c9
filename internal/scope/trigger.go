package scope

// TriggerIndex returns the first index in the first half of window where the
// signal rises through level, or 0 if it never does. Starting the display
// there keeps a periodic waveform from drifting across the screen.
func TriggerIndex(window []float32, level float32) int {
	half := len(window) / 2
	for i := 1; i <= half && i < len(window); i++ {
		if window[i-1] < level && window[i] >= level {
			return i
		}
	}
	return 0
}

// Peak returns the largest absolute sample in window.
func Peak(window []float32) float32 {
	var p float32
	for _, s := range window {
		if s < 0 {
			s = -s
		}
		if s > p {
			p = s
		}
	}
	return p
}
