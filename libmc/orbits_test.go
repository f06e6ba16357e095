package libmc

import (
	"math/rand"
	"testing"

	"github.com/2x3systems/multicurve/gomc"
	"github.com/stretchr/testify/require"
)

func TestOneComponent(t *testing.T) {
	one, parity, err := HasOneComponent(mustPerm(t, []int{0, 1}), 1, 1)
	require.NoError(t, err)
	require.True(t, one)
	require.Equal(t, gomc.Flip(0), parity)

	one, parity, err = HasOneComponent(mustPerm(t, []int{0, 1}, 0), 1, 1)
	require.NoError(t, err)
	require.True(t, one)
	require.Equal(t, gomc.Flip(1), parity)

	// The swap splits into two curves at (1,1)
	one, _, err = HasOneComponent(mustPerm(t, []int{1, 0}), 1, 1)
	require.NoError(t, err)
	require.False(t, one)

	_, _, err = HasOneComponent(mustPerm(t, []int{0, 1}), 1, 0)
	require.ErrorIs(t, err, gomc.ErrNoTransverse)

	_, _, err = HasOneComponent(mustPerm(t, []int{0, 1}), 0, 1)
	require.ErrorIs(t, err, gomc.ErrNoCopies)
}

func TestWalk(t *testing.T) {
	sur, err := NewSurgery(mustPerm(t, []int{0, 1}, 0), 1, 1)
	require.NoError(t, err)

	for idx := 0; idx < sur.Size(); idx++ {
		orbit, err := sur.Walk(sur.StrandAt(idx))
		require.NoError(t, err)
		require.Equal(t, 3, orbit.Length)
		require.Equal(t, gomc.Flip(1), orbit.Parity)
		require.False(t, orbit.TwoSided())
	}
}

func TestCountComponents(t *testing.T) {
	cases := []struct {
		seq   []int
		flips []int
		m, n  int
		want  gomc.Tally
	}{
		{[]int{0, 1}, nil, 1, 1, gomc.Tally{TwoSided: 1}},
		{[]int{0, 1}, []int{0}, 1, 1, gomc.Tally{OneSided: 1}},
		{[]int{1, 0}, nil, 1, 1, gomc.Tally{TwoSided: 2}},
		{[]int{1, 0}, []int{0, 1}, 1, 1, gomc.Tally{OneSided: 2}},
		{[]int{1, 0}, []int{0, 1}, 3, 2, gomc.Tally{TwoSided: 3}},
		{[]int{1, 2, 0}, []int{1}, 1, 1, gomc.Tally{TwoSided: 2, OneSided: 1}},
		{[]int{1, 2, 0}, []int{1}, 4, 1, gomc.Tally{TwoSided: 1, OneSided: 2}},
		{[]int{1, 2, 0}, []int{1}, 2, 5, gomc.Tally{TwoSided: 2}},
		{[]int{1, 2, 0}, []int{1}, 6, 1, gomc.Tally{TwoSided: 2, OneSided: 2}},

		// n == 0 leaves only the permutation strands; an empty permutation leaves only transverse fixed points
		{[]int{0, 1}, nil, 1, 0, gomc.Tally{TwoSided: 2}},
		{nil, nil, 2, 3, gomc.Tally{TwoSided: 3}},
	}

	for _, tc := range cases {
		P := mustPerm(t, tc.seq, tc.flips...)
		tally, err := CountComponentsWithOrientability(P, tc.m, tc.n)
		require.NoError(t, err)
		require.Equal(t, tc.want, tally, "%v m=%d n=%d", P, tc.m, tc.n)
	}

	_, err := CountComponentsWithOrientability(mustPerm(t, []int{0}), 0, 3)
	require.ErrorIs(t, err, gomc.ErrNoCopies)
}

func TestOrbitInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for _, P := range randomPerms(t, 5, 3) {
		for m := 1; m <= 4; m++ {
			for n := 0; n <= 4; n++ {
				sur, err := NewSurgery(P, m, n)
				require.NoError(t, err)

				orbits, err := sur.Orbits(nil)
				require.NoError(t, err)

				// Orbit lengths sum to the size of the strand space
				total := 0
				var tally gomc.Tally
				for _, orbit := range orbits {
					total += orbit.Length
					tally.AddOrbit(orbit.Parity)
				}
				require.Equal(t, sur.Size(), total)

				counted, err := sur.CountComponents()
				require.NoError(t, err)
				require.Equal(t, tally, counted)

				// The tally does not depend on which strand starts each orbit
				origins := make([]gomc.Strand, sur.Size())
				for i, idx := range rng.Perm(sur.Size()) {
					origins[i] = sur.StrandAt(idx)
				}
				shuffled, err := sur.Orbits(origins)
				require.NoError(t, err)
				require.Len(t, shuffled, len(orbits))

				var shuffledTally gomc.Tally
				for _, orbit := range shuffled {
					shuffledTally.AddOrbit(orbit.Parity)
				}
				require.Equal(t, tally, shuffledTally)

				// A single origin's orbit has the same parity wherever it is entered
				for _, orbit := range orbits {
					walked, err := sur.Walk(orbit.Origin)
					require.NoError(t, err)
					require.Equal(t, orbit, walked)
				}

				// HasOneComponent agrees with the full decomposition
				if n > 0 {
					one, parity, err := sur.HasOneComponent()
					require.NoError(t, err)
					require.Equal(t, counted.Components() == 1, one)
					if one {
						require.Equal(t, counted.OneSided, int(parity))
					}
				}
			}
		}
	}
}

func TestOrbitsIdempotent(t *testing.T) {
	sur, err := NewSurgery(mustPerm(t, []int{3, 1, 4, 0, 2}, 1, 4), 5, 3)
	require.NoError(t, err)

	first, err := sur.Orbits(nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := sur.Orbits(nil)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	// Orbits are found in order of their least strand
	for i := 1; i < len(first); i++ {
		require.Negative(t, gomc.CompareStrands(first[i-1].Origin, first[i].Origin))
	}
}
