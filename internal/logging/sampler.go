package logging

// ProgressSampler thins per-subject progress lines: it fires on every phase
// change and whenever the percentage reaches the next multiple of step.
type ProgressSampler struct {
	step  int
	phase string
	next  int
}

// NewProgressSampler returns a sampler firing every step percent; step <= 0
// means 10.
func NewProgressSampler(step int) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step}
}

// ShouldLog reports whether the event at percent in phase deserves a line.
// A nil sampler logs everything; a negative percent only counts for the
// phase change.
func (s *ProgressSampler) ShouldLog(percent int, phase string) bool {
	if s == nil {
		return true
	}
	fire := false
	if phase != s.phase {
		s.phase = phase
		s.next = 0
		fire = true
	}
	if percent < 0 {
		return fire
	}
	percent = min(percent, 100)
	if percent >= s.next {
		s.next = (percent/s.step + 1) * s.step
		fire = true
	}
	return fire
}
