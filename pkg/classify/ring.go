package classify

// ring is a fixed-size ring buffer of floats with a running mean. Size is
// clamped to at least 1.
type ring struct {
	vals []float64
	idx  int
	n    int
}

func newRing(size int) *ring {
	if size < 1 {
		size = 1
	}
	return &ring{vals: make([]float64, size)}
}

func (r *ring) push(v float64) {
	r.vals[r.idx] = v
	r.idx = (r.idx + 1) % len(r.vals)
	if r.n < len(r.vals) {
		r.n++
	}
}

func (r *ring) mean() float64 {
	if r.n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < r.n; i++ {
		sum += r.vals[i]
	}
	return sum / float64(r.n)
}

// ringVec is a ring buffer of 2D vectors, used for gaze smoothing.
type ringVec struct {
	xs, ys *ring
}

func newRingVec(size int) *ringVec {
	return &ringVec{xs: newRing(size), ys: newRing(size)}
}

func (r *ringVec) push(x, y float64) {
	r.xs.push(x)
	r.ys.push(y)
}

func (r *ringVec) mean() (x, y float64) {
	return r.xs.mean(), r.ys.mean()
}
