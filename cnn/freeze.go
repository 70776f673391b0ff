package cnn

// EmbState is the trainability state of the embedding matrix.
type EmbState int

const (
	Frozen EmbState = iota
	Unfrozen
)

func (s EmbState) String() string {
	if s == Frozen {
		return "frozen"
	}
	return "unfrozen"
}

// FreezeSchedule is a one-way switch: the embedding matrix starts Frozen and
// becomes Unfrozen when the epoch counter reaches FreezeFor. There is no
// transition back.
type FreezeSchedule struct {
	FreezeFor int
	state     EmbState
}

func NewFreezeSchedule(freezeFor int) *FreezeSchedule {
	f := &FreezeSchedule{FreezeFor: freezeFor}
	if freezeFor <= 0 {
		f.state = Unfrozen
	}
	return f
}

func (f *FreezeSchedule) State() EmbState {
	return f.state
}

// Advance is called with the zero-based epoch counter before each epoch.
// It reports whether the Frozen -> Unfrozen transition fired on this call.
func (f *FreezeSchedule) Advance(epoch int) bool {
	if f.state == Unfrozen {
		return false
	}
	if epoch >= f.FreezeFor {
		f.state = Unfrozen
		return true
	}
	return false
}
