package regset

// Finalize computes the class geometry. For every ordered class pair (b, c)
// it stores q(b, c), the maximum over registers rc in c of the number of
// registers conflicting with rc that belong to b.
//
// Finalize must be called exactly once, after every register, class and
// conflict has been declared. It runs in O(K² · R · D) for K classes,
// R registers and average conflict degree D.
func (s *Set) Finalize() {
	s.mustBuild("Finalize")

	k := len(s.classes)
	s.q = make([][]int, k)
	for b := range s.q {
		s.q[b] = make([]int, k)
		for c := range s.q[b] {
			s.q[b][c] = s.maxConflicts(Class(b), Class(c))
		}
	}
	s.finalized = true
}

// maxConflicts returns the worst-case number of b registers a single c
// register rules out.
func (s *Set) maxConflicts(b, c Class) int {
	inB := s.classes[b].members
	most := 0
	for rc := range s.Regs(c) {
		n := 0
		for _, rb := range s.regs[rc].conflictList {
			if inB.Test(uint(rb)) {
				n++
			}
		}
		most = max(most, n)
	}
	return most
}

// Q returns q(b, c): how many registers of class b a single register of
// class c can make unusable in the worst case. The set must be finalized.
func (s *Set) Q(b, c Class) int {
	s.mustBeFinal("Q")
	s.checkClass(b)
	s.checkClass(c)
	return s.q[b][c]
}

// Geometry returns a copy of the K×K q matrix, indexed [b][c].
// The set must be finalized.
func (s *Set) Geometry() [][]int {
	s.mustBeFinal("Geometry")
	out := make([][]int, len(s.q))
	for b, row := range s.q {
		out[b] = append([]int(nil), row...)
	}
	return out
}

func (s *Set) mustBeFinal(op string) {
	if !s.finalized {
		panic("regset: " + op + " before Finalize")
	}
}
