//go:build !darwin

package keysynth

// System returns a synthesizer that refuses every keystroke.
func System() Synthesizer {
	return stubSynthesizer{}
}

type stubSynthesizer struct{}

func (stubSynthesizer) Copy() error  { return ErrUnsupported }
func (stubSynthesizer) Paste() error { return ErrUnsupported }
