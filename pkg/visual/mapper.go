package visual

import (
	"math"

	"github.com/oculab/go-ocular/pkg/classify"
)

// Input is everything the mapper needs for one frame. The mapper is
// deterministic given an Input and its carried state, so recorded sessions
// replay identically.
type Input struct {
	FaceFound bool

	LeftState  classify.EyeState
	RightState classify.EyeState

	// Smoothed EARs from the classifier.
	LeftEAR  float64
	RightEAR float64

	// Smoothed gaze offset, [-1,1] per axis.
	GazeDX float64
	GazeDY float64

	// Mean eyebrow height (eye-width normalized).
	Brow float64
}

// Mapper turns classifier state into draw instructions. One instance per
// session; the AM sub-state and the idle-noise generator live here, never in
// package globals.
type Mapper struct {
	cfg  Config
	mode Mode
	wave WaveState
	rng  lcg
}

// NewMapper creates a mapper starting in the given mode.
func NewMapper(cfg Config, mode Mode) *Mapper {
	if !mode.Valid() {
		mode = Rectangles
	}
	return &Mapper{cfg: cfg, mode: mode, rng: newLCG(1)}
}

// Mode returns the current visualization mode.
func (m *Mapper) Mode() Mode { return m.mode }

// SetMode switches modes. Unknown modes are ignored.
func (m *Mapper) SetMode(mode Mode) {
	if mode.Valid() {
		m.mode = mode
	}
}

// Cycle advances to the next mode and returns it.
func (m *Mapper) Cycle() Mode {
	m.mode = m.mode.Next()
	return m.mode
}

// Wave returns a copy of the AM sub-state, mainly for inspection and tests.
func (m *Mapper) Wave() WaveState { return m.wave }

// Map produces the draw instruction for one frame and advances the AM
// sub-state when in wave mode.
func (m *Mapper) Map(in Input) Instruction {
	if m.mode == AmplitudeWave {
		return m.mapWave(in)
	}
	return m.mapShapes(in)
}

// openness maps a smoothed EAR to the open fraction driving eye height.
func (m *Mapper) openness(ear float64) float64 {
	return clamp(ear/m.cfg.OpenEAR, m.cfg.MinOpenness, 1)
}

// browCut maps eyebrow height onto the [0,1] diagonal cut fraction.
func (m *Mapper) browCut(brow float64) float64 {
	span := m.cfg.BrowHigh - m.cfg.BrowLow
	if span <= 0 {
		return 0
	}
	return clamp((brow-m.cfg.BrowLow)/span, 0, 1)
}

func (m *Mapper) mapShapes(in Input) Instruction {
	cfg := m.cfg

	dx := in.GazeDX * cfg.GazeRangeX
	dy := in.GazeDY * cfg.GazeRangeY
	cut := m.browCut(in.Brow)

	shape := func(baseX float64, state classify.EyeState, ear float64) *EyeShape {
		open := m.openness(ear)
		height := open * cfg.MaxEyeHeight
		if state == classify.Closed {
			// Closed and winking eyes draw at half height so the
			// display visibly distinguishes a squint from a shut lid.
			height /= 2
		}
		return &EyeShape{
			CenterX:  baseX + dx,
			CenterY:  cfg.BaseY + dy,
			Width:    cfg.EyeWidth,
			Height:   height,
			Openness: open,
			BrowCut:  cut,
			PupilDX:  in.GazeDX,
			PupilDY:  in.GazeDY,
			Rounded:  m.mode == Rounded,
		}
	}

	return Instruction{
		Mode:  m.mode,
		Left:  shape(cfg.BaseLeftX, in.LeftState, in.LeftEAR),
		Right: shape(cfg.BaseRightX, in.RightState, in.RightEAR),
	}
}

func (m *Mapper) mapWave(in Input) Instruction {
	cfg := m.cfg

	if !in.FaceFound {
		// Idle noise line, the display's "sleeping" texture. The
		// generator state is part of the mapper, so a given mapper
		// history always produces the same samples.
		samples := make([]float64, cfg.WaveSamples)
		for i := range samples {
			samples[i] = cfg.WaveNoiseAmp * m.rng.symmetric()
		}
		m.wave.Openness = [2]float64{0, 0}
		return Instruction{
			Mode: m.mode,
			Wave: &Waveform{Phase: m.wave.Phase, Samples: samples, Noise: true},
		}
	}

	// Phase advances by a fixed per-frame step; gaze shifts it sideways.
	m.wave.Phase += cfg.WavePhaseStep
	if m.wave.Phase > 2*math.Pi {
		m.wave.Phase -= 2 * math.Pi
	}

	var gazeShift float64
	switch {
	case in.GazeDX < -0.33:
		gazeShift = -cfg.WaveGazeShift
	case in.GazeDX > 0.33:
		gazeShift = cfg.WaveGazeShift
	}

	// Smooth each half's openness toward the instantaneous fraction. This
	// intentionally trades fidelity for a continuous analog feel.
	target := [2]float64{m.openness(in.LeftEAR), m.openness(in.RightEAR)}
	for i := range m.wave.Openness {
		m.wave.Openness[i] += cfg.WaveSmoothing * (target[i] - m.wave.Openness[i])
	}

	samples := waveSamples(cfg, m.wave, gazeShift)

	return Instruction{
		Mode: m.mode,
		Wave: &Waveform{
			Phase:    m.wave.Phase + gazeShift,
			Openness: m.wave.Openness,
			Samples:  samples,
		},
	}
}

// waveSamples renders the AM waveform: a cosine envelope (one lobe per half,
// amplitude from that half's openness) modulating a sine carrier.
func waveSamples(cfg Config, ws WaveState, gazeShift float64) []float64 {
	n := cfg.WaveSamples
	samples := make([]float64, n)
	half := n / 2

	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)

		extra := cfg.WaveMaxExtraAmp * ws.Openness[0]
		if i >= half {
			extra = cfg.WaveMaxExtraAmp * ws.Openness[1]
		}

		env := cfg.WaveBaseAmp + extra*0.5*(1+math.Cos(4*math.Pi*t+math.Pi))
		samples[i] = clamp(env*math.Sin(cfg.WaveCarrier*float64(i)+ws.Phase+gazeShift), -1, 1)
	}
	return samples
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// lcg is a tiny deterministic generator for the idle noise. Its state is
// carried per mapper so replays and concurrent sessions stay independent.
type lcg struct {
	state uint64
}

func newLCG(seed uint64) lcg {
	if seed == 0 {
		seed = 1
	}
	return lcg{state: seed}
}

// next returns the next raw state.
func (l *lcg) next() uint64 {
	l.state = l.state*6364136223846793005 + 1442695040888963407
	return l.state
}

// symmetric returns a value in [-1,1).
func (l *lcg) symmetric() float64 {
	return float64(int64(l.next()>>11))/float64(1<<52) - 1
}
