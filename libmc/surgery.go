package libmc

import (
	"github.com/2x3systems/multicurve/gomc"
	"github.com/pkg/errors"
)

// Surgery fixes a signed permutation, a copy count m, and a transverse count n, and defines the
// transition rule on the resulting strand space of L*m + n strands.
//
// Strands are densely indexed in CompareStrands order: Transverse(i) is i and PermDir(j,k) is n + m*j + k.
type Surgery struct {
	perm *SignedPerm
	m    int
	n    int
	lm   int // L*m, the number of PermDir strands
}

// NewSurgery returns the transition rule for (perm, m, n).
//
// m == 0 is unsupported (ErrNoCopies) since the PermDir region would be empty.
func NewSurgery(perm *SignedPerm, m, n int) (*Surgery, error) {
	if perm == nil || m < 0 || n < 0 {
		return nil, errors.Wrapf(gomc.ErrBadParam, "m=%d n=%d", m, n)
	}
	if m == 0 {
		return nil, gomc.ErrNoCopies
	}
	return &Surgery{
		perm: perm,
		m:    m,
		n:    n,
		lm:   perm.Len() * m,
	}, nil
}

// Perm returns the signed permutation this surgery was formed from.
func (sur *Surgery) Perm() *SignedPerm {
	return sur.perm
}

// Pair returns the (m,n) of this surgery.
func (sur *Surgery) Pair() gomc.Pair {
	return gomc.Pair{M: sur.m, N: sur.n}
}

// Size returns the number of strands in the strand space.
func (sur *Surgery) Size() int {
	return sur.lm + sur.n
}

// Contains returns true if s is a valid strand of this strand space.
func (sur *Surgery) Contains(s gomc.Strand) bool {
	switch s.Kind {
	case gomc.Transverse:
		return s.Index >= 0 && s.Index < sur.n
	case gomc.PermDir:
		return s.Index >= 0 && s.Index < sur.perm.Len() && s.Copy >= 0 && s.Copy < sur.m
	}
	return false
}

// IndexOf returns the dense index of s.  s must be contained in this strand space.
func (sur *Surgery) IndexOf(s gomc.Strand) int {
	if s.IsTransverse() {
		return s.Index
	}
	return sur.n + sur.m*s.Index + s.Copy
}

// StrandAt is the inverse of IndexOf.
func (sur *Surgery) StrandAt(idx int) gomc.Strand {
	if idx < sur.n {
		return gomc.TransverseStrand(idx)
	}
	abs := idx - sur.n
	return gomc.PermStrand(abs/sur.m, abs%sur.m)
}

// Next returns the successor of s and whether the step reversed orientation.
//
// s must be contained in this strand space.
func (sur *Surgery) Next(s gomc.Strand) (gomc.Strand, gomc.Flip) {
	m, n := sur.m, sur.n

	switch s.Kind {
	case gomc.PermDir:
		j, k := s.Index, s.Copy
		flip := gomc.Flip(0)
		if sur.perm.IsFlipped(j) {
			k = m - k - 1
			flip = 1
		}
		abs := m*sur.perm.images[j] + k
		if abs+n < sur.lm {
			abs += n
			return gomc.PermStrand(abs/m, abs%m), flip
		}
		return gomc.TransverseStrand(sur.lm - abs - 1), flip

	default:
		i := s.Index
		if i+sur.lm < n {
			return gomc.TransverseStrand(i + sur.lm), 0
		}
		abs := n - i - 1
		return gomc.PermStrand(abs/m, abs%m), 0
	}
}

// VerifyBijection checks that every strand has exactly one predecessor under Next.
func (sur *Surgery) VerifyBijection() error {
	size := sur.Size()
	hits := make([]bool, size)
	for idx := 0; idx < size; idx++ {
		s := sur.StrandAt(idx)
		next, _ := sur.Next(s)
		if !sur.Contains(next) {
			return errors.Wrapf(gomc.ErrNotBijective, "%v -> %v leaves the strand space", s, next)
		}
		ni := sur.IndexOf(next)
		if hits[ni] {
			return errors.Wrapf(gomc.ErrNotBijective, "%v has more than one predecessor", next)
		}
		hits[ni] = true
	}
	return nil
}

// GetNextMajorStrand returns the successor of s for the (perm, m, n) surgery along with its flip bit.
func GetNextMajorStrand(perm *SignedPerm, m, n int, s gomc.Strand) (gomc.Strand, gomc.Flip, error) {
	sur, err := NewSurgery(perm, m, n)
	if err != nil {
		return gomc.Strand{}, 0, err
	}
	if !sur.Contains(s) {
		return gomc.Strand{}, 0, errors.Wrapf(gomc.ErrStrandOutOfRange, "%v for (m,n)=(%d,%d), L=%d", s, m, n, perm.Len())
	}
	next, flip := sur.Next(s)
	return next, flip, nil
}
