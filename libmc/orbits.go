package libmc

import (
	"github.com/2x3systems/multicurve/gomc"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
)

// Orbit is one cycle of the transition rule, corresponding to one connected curve component.
type Orbit struct {
	Origin gomc.Strand
	Length int
	Parity gomc.Flip
}

// TwoSided reports if the component is orientable (even number of flips around the orbit).
func (o Orbit) TwoSided() bool {
	return o.Parity == 0
}

// Walk follows the transition rule from origin until it returns, reporting the orbit's length and parity.
// A walk longer than Size() steps means the rule is not a bijection and returns ErrBrokenOrbit.
func (sur *Surgery) Walk(origin gomc.Strand) (Orbit, error) {
	return sur.walk(origin, nil)
}

// walk is Walk that also invokes onVisit with each strand reached after the origin.
// If onVisit returns false the orbit is inconsistent and the walk fails.
func (sur *Surgery) walk(origin gomc.Strand, onVisit func(s gomc.Strand) bool) (Orbit, error) {
	orbit := Orbit{
		Origin: origin,
		Length: 1,
	}
	maxLen := sur.Size()

	next, parity := sur.Next(origin)
	for next != origin {
		if orbit.Length >= maxLen || (onVisit != nil && !onVisit(next)) {
			return orbit, errors.Wrapf(gomc.ErrBrokenOrbit, "%v %v: walk from %v revisited %v after %d steps", sur.Perm(), sur.Pair(), origin, next, orbit.Length)
		}
		var flip gomc.Flip
		next, flip = sur.Next(next)
		parity = parity.Add(flip)
		orbit.Length++
	}
	orbit.Parity = parity
	return orbit, nil
}

// HasOneComponent walks the orbit of Transverse(0) and reports if it covers the entire strand space, along with the orbit's parity.
//
// n must be at least 1 (ErrNoTransverse) since otherwise there is no Transverse(0) to start from.
func (sur *Surgery) HasOneComponent() (bool, gomc.Flip, error) {
	if sur.n < 1 {
		return false, 0, gomc.ErrNoTransverse
	}
	orbit, err := sur.Walk(gomc.TransverseStrand(0))
	if err != nil {
		return false, 0, err
	}
	return orbit.Length == sur.Size(), orbit.Parity, nil
}

func strandComparator(a, b interface{}) int {
	return gomc.CompareStrands(a.(gomc.Strand), b.(gomc.Strand))
}

// Orbits partitions the strand space into orbits.
//
// Each orbit's origin is the first still-unvisited strand in origins, or once origins is exhausted, the
// least unvisited strand.  The set of orbits found does not depend on the origin order, only the order
// they are returned in and which strand represents each.
func (sur *Surgery) Orbits(origins []gomc.Strand) ([]Orbit, error) {
	remain := redblacktree.NewWith(strandComparator)
	size := sur.Size()
	for idx := 0; idx < size; idx++ {
		remain.Put(sur.StrandAt(idx), nil)
	}

	onVisit := func(s gomc.Strand) bool {
		if _, found := remain.Get(s); !found {
			return false
		}
		remain.Remove(s)
		return true
	}

	var orbits []Orbit
	for !remain.Empty() {
		var origin gomc.Strand
		for len(origins) > 0 {
			if _, found := remain.Get(origins[0]); found {
				break
			}
			origins = origins[1:]
		}
		if len(origins) > 0 {
			origin = origins[0]
			origins = origins[1:]
		} else {
			origin = remain.Left().Key.(gomc.Strand)
		}
		remain.Remove(origin)

		orbit, err := sur.walk(origin, onVisit)
		if err != nil {
			return orbits, err
		}
		orbits = append(orbits, orbit)
	}

	return orbits, nil
}

// CountComponents decomposes the strand space into orbits and tallies them by sidedness.
func (sur *Surgery) CountComponents() (gomc.Tally, error) {
	var tally gomc.Tally

	orbits, err := sur.Orbits(nil)
	if err != nil {
		return tally, err
	}
	for _, orbit := range orbits {
		tally.AddOrbit(orbit.Parity)
	}
	return tally, nil
}

// HasOneComponent reports if the (perm, m, n) surgery yields a single curve, and that curve's parity.
func HasOneComponent(perm *SignedPerm, m, n int) (bool, gomc.Flip, error) {
	sur, err := NewSurgery(perm, m, n)
	if err != nil {
		return false, 0, err
	}
	return sur.HasOneComponent()
}

// CountComponentsWithOrientability returns the number of two-sided and one-sided components of the (perm, m, n) surgery.
func CountComponentsWithOrientability(perm *SignedPerm, m, n int) (gomc.Tally, error) {
	sur, err := NewSurgery(perm, m, n)
	if err != nil {
		return gomc.Tally{}, err
	}
	return sur.CountComponents()
}
