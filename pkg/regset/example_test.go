package regset_test

import (
	"fmt"

	"github.com/matzehuels/regalloc/pkg/regset"
)

func ExampleSet_Finalize() {
	// Two scalar registers and one pair register that aliases both.
	s := regset.New(3)
	s.AddConflict(2, 0)
	s.AddConflict(2, 1)

	scalar := s.AllocClass()
	s.ClassAddReg(scalar, 0)
	s.ClassAddReg(scalar, 1)
	pair := s.AllocClass()
	s.ClassAddReg(pair, 2)
	s.Finalize()

	fmt.Println("p(scalar):", s.P(scalar))
	fmt.Println("q(scalar, pair):", s.Q(scalar, pair))
	fmt.Println("q(pair, scalar):", s.Q(pair, scalar))
	// Output:
	// p(scalar): 2
	// q(scalar, pair): 2
	// q(pair, scalar): 1
}
