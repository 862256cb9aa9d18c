package trace

// CycleSet collects the distinct cycles of a census. Add reports whether the
// cycle was new.
type CycleSet interface {
	Add(cycle string) (bool, error)
	Len() int
}

// MemCycleSet is a CycleSet held in memory.
type MemCycleSet map[string]struct{}

func NewMemCycleSet() MemCycleSet {
	return make(MemCycleSet)
}

func (s MemCycleSet) Add(cycle string) (bool, error) {
	if _, ok := s[cycle]; ok {
		return false, nil
	}
	s[cycle] = struct{}{}
	return true, nil
}

func (s MemCycleSet) Len() int {
	return len(s)
}
