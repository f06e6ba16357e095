package gomc

import "fmt"

// StrandKind tags which region of the strand space a Strand lives in.
type StrandKind byte

const (
	Transverse StrandKind = 't' // free strand, not routed through the permutation
	PermDir    StrandKind = 'p' // a copy of one of the permutation's strands
)

// Strand is one element of the strand space of a (perm, m, n) surgery.
//
// For a Transverse strand only Index is used (0 <= Index < n).
// For a PermDir strand, Index is the permutation index j (0 <= j < L) and Copy is the copy index k (0 <= k < m).
type Strand struct {
	Kind  StrandKind
	Index int
	Copy  int
}

// NewStrand forms a Strand from a kind tag ('t' or 'p') and its indices.
// A Transverse strand ignores b.
func NewStrand(kind rune, a, b int) (Strand, error) {
	switch StrandKind(kind) {
	case Transverse:
		return TransverseStrand(a), nil
	case PermDir:
		return PermStrand(a, b), nil
	}
	return Strand{}, ErrInvalidStrandType
}

// TransverseStrand returns the i-th transverse strand.
func TransverseStrand(i int) Strand {
	return Strand{Kind: Transverse, Index: i}
}

// PermStrand returns copy k of the permutation's j-th strand.
func PermStrand(j, k int) Strand {
	return Strand{Kind: PermDir, Index: j, Copy: k}
}

// IsTransverse returns true if s is not routed through the permutation.
func (s Strand) IsTransverse() bool {
	return s.Kind == Transverse
}

// CompareStrands orders all Transverse strands before all PermDir strands, and otherwise orders lexicographically on (Index, Copy).
func CompareStrands(a, b Strand) int {
	if a.Kind != b.Kind {
		if a.Kind == Transverse {
			return -1
		}
		return 1
	}
	if d := a.Index - b.Index; d != 0 {
		return d
	}
	return a.Copy - b.Copy
}

func (s Strand) String() string {
	if s.IsTransverse() {
		return fmt.Sprintf("Transverse(%d)", s.Index)
	}
	return fmt.Sprintf("PermutationDirection(%d, %d)", s.Index, s.Copy)
}
