package synth

// Controls carries one block of smoothed parameter values, one entry per
// sample. Index i applies to output sample i of the block.
type Controls struct {
	Shape     []Shape
	Cutoff    []float64
	Resonance []float64
	Attack    []float64
	Decay     []float64
	Sustain   []float64
	Release   []float64
}

// NewControls allocates controls for blocks of up to n samples.
func NewControls(n int) *Controls {
	return &Controls{
		Shape:     make([]Shape, n),
		Cutoff:    make([]float64, n),
		Resonance: make([]float64, n),
		Attack:    make([]float64, n),
		Decay:     make([]float64, n),
		Sustain:   make([]float64, n),
		Release:   make([]float64, n),
	}
}

// Len is the block capacity.
func (c *Controls) Len() int { return len(c.Cutoff) }

// Fill sets every sample to the same values. Used by tests and offline tools
// that do not need smoothing.
func (c *Controls) Fill(shape Shape, cutoff, resonance, attack, decay, sustain, release float64) {
	for i := range c.Cutoff {
		c.Shape[i] = shape
		c.Cutoff[i] = cutoff
		c.Resonance[i] = resonance
		c.Attack[i] = attack
		c.Decay[i] = decay
		c.Sustain[i] = sustain
		c.Release[i] = release
	}
}
