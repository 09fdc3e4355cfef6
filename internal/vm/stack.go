package vm

// thread is a suspended execution state.
type thread struct {
	pc     int
	cursor int
}

// threadStack is the LIFO backtrack stack. The most recently forked thread
// is resumed first.
type threadStack struct {
	threads []thread
	peak    int
}

func newThreadStack() *threadStack {
	return &threadStack{threads: make([]thread, 0, 16)}
}

func (s *threadStack) push(t thread) {
	s.threads = append(s.threads, t)
	if len(s.threads) > s.peak {
		s.peak = len(s.threads)
	}
}

// pop removes the top thread. The boolean is false when the stack is empty.
func (s *threadStack) pop() (thread, bool) {
	n := len(s.threads)
	if n == 0 {
		return thread{}, false
	}
	t := s.threads[n-1]
	s.threads = s.threads[:n-1]
	return t, true
}

func (s *threadStack) len() int {
	return len(s.threads)
}
