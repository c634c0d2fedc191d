package operations

// Frame records one step accessor read during a call.
// Err is the step's error override resolved from the registry; Done is set once the outcome
// read right after the accessor has been successfully unwrapped.
type Frame struct {
	Step string
	Err  error
	Done bool
}

// frameStack is append-only except for the Done flag of the most recent frame.
type frameStack struct {
	frames []Frame
}

func (s *frameStack) push(step string, errOverride error) {
	s.frames = append(s.frames, Frame{Step: step, Err: errOverride})
}

// pending returns the top frame if it has not been unwrapped yet.
func (s *frameStack) pending() *Frame {
	if len(s.frames) == 0 {
		return nil
	}

	top := &s.frames[len(s.frames)-1]
	if top.Done {
		return nil
	}

	return top
}

func (s *frameStack) markDone() {
	if top := s.pending(); top != nil {
		top.Done = true
	}
}

// pendingErr returns the error override of the pending top frame, or nil.
func (s *frameStack) pendingErr() error {
	if top := s.pending(); top != nil {
		return top.Err
	}

	return nil
}

func (s *frameStack) snapshot() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)

	return out
}
