package overlay

// Rotation cycles through a fixed sequence of phases. The accumulator grows by a fixed
// increment per tick and wraps modulo the total cycle length, so it always lies in
// [0, total) and no tick is lost on wraparound.
type Rotation struct {
	increment float64
	lengths   []float64
	total     float64
	elapsed   float64
}

// NewRotation creates a rotation with one phase per length
func NewRotation(increment float64, lengths ...float64) *Rotation {
	total := 0.0
	for _, l := range lengths {
		total += l
	}
	return &Rotation{
		increment: increment,
		lengths:   lengths,
		total:     total,
	}
}

// NewUniformRotation creates a rotation of equal-length phases
func NewUniformRotation(increment, cycleLength float64, phases int) *Rotation {
	lengths := make([]float64, phases)
	for i := range lengths {
		lengths[i] = cycleLength
	}
	return NewRotation(increment, lengths...)
}

// Phase returns the index of the phase holding the accumulator
func (r *Rotation) Phase() int {
	acc := 0.0
	for i, l := range r.lengths {
		acc += l
		if r.elapsed < acc {
			return i
		}
	}
	return len(r.lengths) - 1
}

// Advance adds one increment and reports whether the cycle wrapped
func (r *Rotation) Advance() bool {
	if r.total <= 0 {
		return false
	}
	r.elapsed += r.increment
	if r.elapsed >= r.total {
		for r.elapsed >= r.total {
			r.elapsed -= r.total
		}
		return true
	}
	return false
}

// Reset puts the accumulator back at the start of the first phase
func (r *Rotation) Reset() {
	r.elapsed = 0
}

// Elapsed returns the accumulator
func (r *Rotation) Elapsed() float64 {
	return r.elapsed
}

// Phases returns the number of phases
func (r *Rotation) Phases() int {
	return len(r.lengths)
}
